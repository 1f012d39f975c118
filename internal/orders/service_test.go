package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/internal/checkout"
	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/hostedpay"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/outbox"
	"github.com/giftlypk/giftly-backend/pkg/pagination"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

type stubOrdersRepo struct {
	created      *models.Order
	bumped       map[uuid.UUID]int
	statusByID   map[uuid.UUID]string
	findByID     func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listByActor  func(ctx context.Context, actor types.Actor, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	createErr    error
	incrementErr error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	return order, nil
}

func (s *stubOrdersRepo) IncrementProductOrders(ctx context.Context, productID uuid.UUID, quantity int) error {
	if s.incrementErr != nil {
		return s.incrementErr
	}
	if s.bumped == nil {
		s.bumped = map[uuid.UUID]int{}
	}
	s.bumped[productID] += quantity
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListByActor(ctx context.Context, actor types.Actor, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	if s.listByActor != nil {
		return s.listByActor(ctx, actor, cursor, limit)
	}
	return nil, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if s.statusByID == nil {
		s.statusByID = map[uuid.UUID]string{}
	}
	s.statusByID[id] = status
	return nil
}

type stubTxRunner struct {
	runs int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.runs++
	return fn(&gorm.DB{})
}

type stubQuoter struct {
	quote         *checkout.Quote
	lines         []checkout.Line
	draftsCleared int
}

func (s *stubQuoter) QuoteEntries(ctx context.Context, entries []cart.Entry) (*checkout.Quote, []checkout.Line, error) {
	return s.quote, s.lines, nil
}

func (s *stubQuoter) ClearDraft(ctx context.Context, actor types.Actor) error {
	s.draftsCleared++
	return nil
}

type stubCartStore struct {
	cleared int
}

func (s *stubCartStore) Add(ctx context.Context, entry cart.Entry) (bool, error) { return true, nil }
func (s *stubCartStore) Remove(ctx context.Context, productID uuid.UUID) error   { return nil }
func (s *stubCartStore) Has(ctx context.Context, productID uuid.UUID) (bool, error) {
	return false, nil
}
func (s *stubCartStore) List(ctx context.Context) ([]cart.Entry, error) { return nil, nil }
func (s *stubCartStore) Clear(ctx context.Context) error {
	s.cleared++
	return nil
}

type stubCartAccess struct {
	entries []cart.Entry
	store   *stubCartStore
}

func (s *stubCartAccess) List(ctx context.Context, actor types.Actor) ([]cart.Entry, error) {
	return s.entries, nil
}

func (s *stubCartAccess) ForActor(actor types.Actor) (cart.Store, error) {
	return s.store, nil
}

type stubPayments struct {
	link  *hostedpay.PaymentLink
	err   error
	calls int
}

func (s *stubPayments) CreatePaymentLink(ctx context.Context, params hostedpay.PaymentLinkParams) (*hostedpay.PaymentLink, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.link, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type orderFixture struct {
	svc      Service
	repo     *stubOrdersRepo
	tx       *stubTxRunner
	quotes   *stubQuoter
	carts    *stubCartAccess
	payments *stubPayments
	emitter  *stubEmitter
}

func testProduct(price, salePrice int) models.Product {
	return models.Product{
		ID:        uuid.New(),
		Title:     "anime pack",
		Price:     price,
		SalePrice: salePrice,
		Stock:     10,
		IsActive:  true,
	}
}

func newOrderFixture(t *testing.T, lines []checkout.Line) *orderFixture {
	t.Helper()

	totals := checkout.ComputeTotals(lines, 0)
	quote := &checkout.Quote{Totals: totals}
	for range lines {
		quote.Lines = append(quote.Lines, checkout.QuoteLine{})
	}

	f := &orderFixture{
		repo:     &stubOrdersRepo{},
		tx:       &stubTxRunner{},
		quotes:   &stubQuoter{quote: quote, lines: lines},
		carts:    &stubCartAccess{store: &stubCartStore{}},
		payments: &stubPayments{link: &hostedpay.PaymentLink{ID: "pl-1", URL: "https://square.link/abc"}},
		emitter:  &stubEmitter{},
	}
	logg := logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(
		f.repo, f.tx, f.quotes, f.carts, f.payments, f.emitter,
		nil, config.CheckoutConfig{PhoneRegion: "PK"}, logg,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func validInput(mode enums.PaymentMode) PlaceOrderInput {
	return PlaceOrderInput{
		Details: checkout.OrderDraft{
			FullName:     "Ayesha Khan",
			Mobile:       "03001234567",
			AddressLine1: "House 12, Street 4",
			Pincode:      "54000",
			City:         "Lahore",
			State:        "Punjab",
		},
		PaymentMode:  mode,
		AgreeToTerms: true,
	}
}

func TestPlaceOrderCOD(t *testing.T) {
	p := testProduct(1000, 800)
	lines := []checkout.Line{{Product: p, Quantity: 2}}
	f := newOrderFixture(t, lines)
	actor := types.GuestActor("sess-1")

	result, err := f.svc.PlaceOrder(context.Background(), actor, validInput(enums.PaymentModeCOD))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if result.OrderID == nil {
		t.Fatal("expected order id for cod")
	}
	if result.RedirectURL != nil {
		t.Fatal("expected no redirect for cod")
	}

	order := f.repo.created
	if order == nil {
		t.Fatal("expected order persisted")
	}
	if order.Total != 1600 || order.Subtotal != 2000 || order.Discount != 400 {
		t.Fatalf("unexpected totals: %+v", order)
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid || order.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected initial state: %s/%s", order.PaymentStatus, order.Status)
	}
	if len(order.Lines) != 1 || order.Lines[0].LineTotal != 1600 {
		t.Fatalf("unexpected lines: %+v", order.Lines)
	}
	if order.GuestSessionID == nil || *order.GuestSessionID != "sess-1" {
		t.Fatal("expected guest session recorded")
	}
	if f.repo.bumped[p.ID] != 2 {
		t.Fatalf("expected product orders bumped by 2, got %d", f.repo.bumped[p.ID])
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventOrderPlaced {
		t.Fatalf("expected order placed event, got %v", f.emitter.events)
	}
	if f.carts.store.cleared != 1 {
		t.Fatal("expected cart cleared after placement")
	}
	if f.quotes.draftsCleared != 1 {
		t.Fatal("expected checkout draft cleared after placement")
	}
}

func TestPlaceOrderTermsNotAcceptedWritesNothing(t *testing.T) {
	lines := []checkout.Line{{Product: testProduct(1000, 800), Quantity: 1}}
	f := newOrderFixture(t, lines)

	input := validInput(enums.PaymentModeCOD)
	input.AgreeToTerms = false

	_, err := f.svc.PlaceOrder(context.Background(), types.GuestActor("sess-1"), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	failure, ok := typed.Details().(*checkout.ValidationFailure)
	if !ok || failure.Reason != checkout.ReasonTermsNotAccepted {
		t.Fatalf("expected terms failure detail, got %v", typed.Details())
	}
	if f.tx.runs != 0 || f.repo.created != nil {
		t.Fatal("expected zero writes on validation failure")
	}
	if f.carts.store.cleared != 0 {
		t.Fatal("expected cart untouched on validation failure")
	}
}

func TestPlaceOrderPrepaidRedirects(t *testing.T) {
	lines := []checkout.Line{{Product: testProduct(1000, 800), Quantity: 1}}
	f := newOrderFixture(t, lines)

	result, err := f.svc.PlaceOrder(context.Background(), types.GuestActor("sess-1"), validInput(enums.PaymentModePrepaid))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if result.OrderID != nil {
		t.Fatal("expected no order row on prepaid path")
	}
	if result.RedirectURL == nil || *result.RedirectURL != "https://square.link/abc" {
		t.Fatalf("expected redirect url, got %v", result.RedirectURL)
	}
	if f.payments.calls != 1 {
		t.Fatalf("expected one payment link call, got %d", f.payments.calls)
	}
	if f.tx.runs != 0 || f.repo.created != nil {
		t.Fatal("expected database untouched on prepaid path")
	}
	if f.carts.store.cleared != 0 {
		t.Fatal("expected cart untouched on prepaid path")
	}
}

func TestPlaceOrderPaymentLinkFailure(t *testing.T) {
	lines := []checkout.Line{{Product: testProduct(1000, 800), Quantity: 1}}
	f := newOrderFixture(t, lines)
	f.payments.err = pkgerrors.New(pkgerrors.CodeDependency, "square unavailable")

	_, err := f.svc.PlaceOrder(context.Background(), types.GuestActor("sess-1"), validInput(enums.PaymentModePrepaid))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestPlaceOrderBuyNowLeavesCartAlone(t *testing.T) {
	p := testProduct(500, 450)
	lines := []checkout.Line{{Product: p, Quantity: 1}}
	f := newOrderFixture(t, lines)

	input := validInput(enums.PaymentModeCOD)
	input.BuyNow = &BuyNowInput{ProductID: p.ID}

	result, err := f.svc.PlaceOrder(context.Background(), types.UserActor(uuid.New()), input)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if result.OrderID == nil {
		t.Fatal("expected order id")
	}
	if f.carts.store.cleared != 0 {
		t.Fatal("expected cart untouched on buy-now")
	}
	if f.quotes.draftsCleared != 1 {
		t.Fatal("expected draft cleared on buy-now")
	}
}

func TestFindByIDScopedToActor(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	f := newOrderFixture(t, nil)
	f.repo.findByID = func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
		return &models.Order{ID: orderID, UserID: &owner}, nil
	}

	if _, err := f.svc.FindByID(context.Background(), types.UserActor(owner), orderID); err != nil {
		t.Fatalf("expected owner lookup to succeed, got %v", err)
	}

	_, err := f.svc.FindByID(context.Background(), types.UserActor(uuid.New()), orderID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for stranger, got %v", err)
	}
}

func TestAdvanceStatusTerminalConflict(t *testing.T) {
	orderID := uuid.New()
	f := newOrderFixture(t, nil)
	f.repo.findByID = func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
		return &models.Order{ID: orderID, Status: enums.OrderStatusDelivered}, nil
	}

	err := f.svc.AdvanceStatus(context.Background(), orderID, enums.OrderStatusCancelled)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on terminal order, got %v", err)
	}
}

func TestAdvanceStatusEmitsEvent(t *testing.T) {
	orderID := uuid.New()
	f := newOrderFixture(t, nil)
	f.repo.findByID = func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
		return &models.Order{ID: orderID, Status: enums.OrderStatusPending}, nil
	}

	if err := f.svc.AdvanceStatus(context.Background(), orderID, enums.OrderStatusPacked); err != nil {
		t.Fatalf("advance status: %v", err)
	}
	if f.repo.statusByID[orderID] != string(enums.OrderStatusPacked) {
		t.Fatalf("expected status updated, got %q", f.repo.statusByID[orderID])
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("expected status change event, got %v", f.emitter.events)
	}
}
