package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/internal/checkout"
	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/hostedpay"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/metrics"
	"github.com/giftlypk/giftly-backend/pkg/outbox"
	"github.com/giftlypk/giftly-backend/pkg/pagination"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

// Service exposes order placement and history.
type Service interface {
	PlaceOrder(ctx context.Context, actor types.Actor, input PlaceOrderInput) (*PlaceOrderResult, error)
	ListByActor(ctx context.Context, actor types.Actor, params pagination.Params) (*OrderListResult, error)
	FindByID(ctx context.Context, actor types.Actor, id uuid.UUID) (*OrderDTO, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quoter interface {
	QuoteEntries(ctx context.Context, entries []cart.Entry) (*checkout.Quote, []checkout.Line, error)
	ClearDraft(ctx context.Context, actor types.Actor) error
}

type cartAccess interface {
	List(ctx context.Context, actor types.Actor) ([]cart.Entry, error)
	ForActor(actor types.Actor) (cart.Store, error)
}

type paymentLinker interface {
	CreatePaymentLink(ctx context.Context, params hostedpay.PaymentLinkParams) (*hostedpay.PaymentLink, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     Repository
	tx       txRunner
	quotes   quoter
	carts    cartAccess
	payments paymentLinker
	events   eventEmitter
	metrics  *metrics.OrderMetrics
	cfg      config.CheckoutConfig
	logg     *logger.Logger
}

// NewService constructs an orders service instance.
func NewService(
	repo Repository,
	tx txRunner,
	quotes quoter,
	carts cartAccess,
	payments paymentLinker,
	events eventEmitter,
	orderMetrics *metrics.OrderMetrics,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		quotes:   quotes,
		carts:    carts,
		payments: payments,
		events:   events,
		metrics:  orderMetrics,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// PlaceOrder validates the submission and either commits a cash-on-delivery
// order or hands back a hosted-checkout redirect for prepaid payment. Nothing
// is persisted when validation fails, and the prepaid path leaves both the
// cart and the database untouched.
func (s *service) PlaceOrder(ctx context.Context, actor types.Actor, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if actor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no order identity on request")
	}
	mode := input.PaymentMode
	if mode == "" {
		mode = enums.PaymentModeCOD
	}
	if !mode.IsValid() {
		s.metrics.IncFailed("invalid_payment_mode")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment mode")
	}

	entries, err := s.orderEntries(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	quote, lines, err := s.quotes.QuoteEntries(ctx, entries)
	if err != nil {
		return nil, err
	}

	if failure := checkout.ValidateOrder(input.Details, lines, quote.Totals, input.AgreeToTerms, s.cfg.PhoneRegion); failure != nil {
		s.metrics.IncFailed(string(failure.Reason))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, failure.Error()).WithDetails(failure)
	}

	if mode != enums.PaymentModeCOD {
		return s.placePrepaid(ctx, quote, lines)
	}
	return s.placeCOD(ctx, actor, input, quote, lines)
}

func (s *service) orderEntries(ctx context.Context, actor types.Actor, input PlaceOrderInput) ([]cart.Entry, error) {
	if input.BuyNow != nil {
		if input.BuyNow.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		return []cart.Entry{entryFromBuyNow(input.BuyNow)}, nil
	}
	return s.carts.List(ctx, actor)
}

func (s *service) placePrepaid(ctx context.Context, quote *checkout.Quote, lines []checkout.Line) (*PlaceOrderResult, error) {
	link, err := s.payments.CreatePaymentLink(ctx, hostedpay.PaymentLinkParams{
		OrderID:     uuid.New(),
		Amount:      quote.Totals.Total,
		Description: fmt.Sprintf("Giftly order, %d item(s)", len(lines)),
	})
	if err != nil {
		s.metrics.IncFailed("payment_link")
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment link")
	}

	s.metrics.IncPlaced(string(enums.PaymentModePrepaid), quote.Totals.Total)
	s.logg.Info(ctx, "hosted checkout session created")
	return &PlaceOrderResult{
		RedirectURL:       &link.URL,
		DroppedProductIDs: quote.DroppedProductIDs,
	}, nil
}

func (s *service) placeCOD(ctx context.Context, actor types.Actor, input PlaceOrderInput, quote *checkout.Quote, lines []checkout.Line) (*PlaceOrderResult, error) {
	order := &models.Order{
		UserID:         actor.UserID,
		GuestSessionID: actor.GuestSessionID,
		PaymentMode:    enums.PaymentModeCOD,
		PaymentStatus:  enums.PaymentStatusUnpaid,
		Status:         enums.OrderStatusPending,
		Subtotal:       quote.Totals.Subtotal,
		Discount:       quote.Totals.Discount,
		ShippingFee:    quote.Totals.ShippingFee,
		Total:          quote.Totals.Total,
		ShippingAddress: types.ShippingAddress{
			FullName:     input.Details.FullName,
			Mobile:       input.Details.Mobile,
			AddressLine1: input.Details.AddressLine1,
			AddressLine2: input.Details.AddressLine2,
			Pincode:      input.Details.Pincode,
			City:         input.Details.City,
			State:        input.Details.State,
		},
		Lines: buildOrderLines(lines),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		for _, line := range lines {
			if err := txRepo.IncrementProductOrders(ctx, line.Product.ID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bump product orders")
			}
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         actorRef(actor),
			Data: map[string]any{
				"order_id":     created.ID.String(),
				"payment_mode": string(enums.PaymentModeCOD),
				"total":        created.Total,
				"line_count":   len(created.Lines),
			},
			Version: 1,
		})
	})
	if err != nil {
		s.metrics.IncFailed("persist")
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.metrics.IncPlaced(string(enums.PaymentModeCOD), order.Total)
	s.postPlacementCleanup(ctx, actor, input.BuyNow == nil)

	return &PlaceOrderResult{
		OrderID:           &order.ID,
		DroppedProductIDs: quote.DroppedProductIDs,
	}, nil
}

// postPlacementCleanup drains the cart and draft after the order committed.
// Failures here are logged, never surfaced: the order already exists.
func (s *service) postPlacementCleanup(ctx context.Context, actor types.Actor, clearCart bool) {
	if clearCart {
		if store, err := s.carts.ForActor(actor); err == nil {
			if err := store.Clear(ctx); err != nil {
				s.logg.Warn(ctx, "clearing cart after order placement failed")
			}
		}
	}
	if err := s.quotes.ClearDraft(ctx, actor); err != nil {
		s.logg.Warn(ctx, "clearing checkout draft after order placement failed")
	}
}

// ListByActor returns one cursor page of the actor's order history.
func (s *service) ListByActor(ctx context.Context, actor types.Actor, params pagination.Params) (*OrderListResult, error) {
	if actor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no order identity on request")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	orders, err := s.repo.ListByActor(ctx, actor, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(orders))}
	page := orders
	if len(orders) > limit {
		page = orders[:limit]
		last := page[len(page)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &cursor
	}
	for i := range page {
		result.Orders = append(result.Orders, *NewOrderDTO(&page[i]))
	}
	return result, nil
}

// FindByID loads one order, scoped to the requesting actor.
func (s *service) FindByID(ctx context.Context, actor types.Actor, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if !orderBelongsTo(order, actor) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(order), nil
}

// AdvanceStatus moves an order along the fulfilment pipeline. Terminal orders
// never change again.
func (s *service) AdvanceStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeConflict, "order is already in a terminal state")
	}
	if order.Status == status {
		return nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateStatus(ctx, id, string(status)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		eventType := enums.EventOrderStatusChanged
		if status == enums.OrderStatusCancelled {
			eventType = enums.EventOrderCancelled
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Data: map[string]any{
				"order_id": id.String(),
				"from":     string(order.Status),
				"to":       string(status),
			},
			Version: 1,
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
	}
	return nil
}

func buildOrderLines(lines []checkout.Line) []models.OrderLine {
	rows := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		var image *string
		if len(line.Product.ImageURLs) > 0 {
			image = &line.Product.ImageURLs[0]
		}
		discount := line.Product.DiscountPerUnit() * line.Quantity
		rows = append(rows, models.OrderLine{
			ProductID:     line.Product.ID,
			Title:         line.Product.Title,
			ImageURL:      image,
			UnitPrice:     line.Product.Price,
			UnitSalePrice: line.Product.SalePrice,
			Quantity:      line.Quantity,
			Color:         line.Color,
			Size:          line.Size,
			LineSubtotal:  line.Product.Price * line.Quantity,
			LineDiscount:  discount,
			LineTotal:     line.Product.SalePrice * line.Quantity,
		})
	}
	return rows
}

func actorRef(actor types.Actor) *outbox.ActorRef {
	if actor.IsZero() {
		return nil
	}
	return &outbox.ActorRef{
		UserID:         actor.UserID,
		GuestSessionID: actor.GuestSessionID,
	}
}

func orderBelongsTo(order *models.Order, actor types.Actor) bool {
	if actor.IsUser() {
		return order.UserID != nil && *order.UserID == *actor.UserID
	}
	if actor.GuestSessionID != nil && *actor.GuestSessionID != "" {
		return order.GuestSessionID != nil && *order.GuestSessionID == *actor.GuestSessionID
	}
	return false
}
