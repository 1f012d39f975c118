package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/pkg/config"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

// QuoteLine is one priced line of a quote.
type QuoteLine struct {
	ProductID  uuid.UUID `json:"product_id"`
	Title      string    `json:"title"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Price      int       `json:"price"`
	SalePrice  int       `json:"sale_price"`
	Quantity   int       `json:"quantity"`
	Color      *string   `json:"color,omitempty"`
	Size       *string   `json:"size,omitempty"`
	LineTotal  int       `json:"line_total"`
	OutOfStock bool      `json:"out_of_stock"`
}

// Quote is a priced-out cart plus the ids that no longer resolve.
type Quote struct {
	Lines             []QuoteLine `json:"lines"`
	Totals            Totals      `json:"totals"`
	DroppedProductIDs []uuid.UUID `json:"dropped_product_ids,omitempty"`
}

// Service exposes quoting and draft persistence for the checkout page.
type Service interface {
	QuoteCart(ctx context.Context, actor types.Actor) (*Quote, error)
	QuoteEntries(ctx context.Context, entries []cart.Entry) (*Quote, []Line, error)
	BuyNowQuote(ctx context.Context, productID uuid.UUID, color, size *string) (*Quote, error)
	GetDraft(ctx context.Context, actor types.Actor) (*OrderDraft, error)
	SaveDraft(ctx context.Context, actor types.Actor, draft OrderDraft) error
	ClearDraft(ctx context.Context, actor types.Actor) error
}

type draftKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	GuestDraftKey(subject string) string
}

type cartLister interface {
	List(ctx context.Context, actor types.Actor) ([]cart.Entry, error)
}

type service struct {
	lookup productLookup
	carts  cartLister
	kv     draftKV
	cfg    config.CheckoutConfig
}

// NewService constructs a checkout service instance.
func NewService(lookup productLookup, carts cartLister, kv draftKV, cfg config.CheckoutConfig) (Service, error) {
	if lookup == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &service{lookup: lookup, carts: carts, kv: kv, cfg: cfg}, nil
}

// QuoteCart prices the actor's active cart.
func (s *service) QuoteCart(ctx context.Context, actor types.Actor) (*Quote, error) {
	entries, err := s.carts.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	quote, _, err := s.QuoteEntries(ctx, entries)
	return quote, err
}

// QuoteEntries resolves and prices the given entries. The resolved lines are
// returned alongside the quote so order placement can reuse them.
func (s *service) QuoteEntries(ctx context.Context, entries []cart.Entry) (*Quote, []Line, error) {
	lines, dropped, err := Resolve(ctx, entries, s.lookup)
	if err != nil {
		return nil, nil, err
	}
	totals := ComputeTotals(lines, s.cfg.FlatShippingFee)

	quote := &Quote{
		Lines:             make([]QuoteLine, 0, len(lines)),
		Totals:            totals,
		DroppedProductIDs: dropped,
	}
	for _, line := range lines {
		quote.Lines = append(quote.Lines, newQuoteLine(line))
	}
	return quote, lines, nil
}

// BuyNowQuote prices a single product at quantity one, skipping the cart.
func (s *service) BuyNowQuote(ctx context.Context, productID uuid.UUID, color, size *string) (*Quote, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	entry := cart.Entry{ProductID: productID, Quantity: 1, Color: color, Size: size}
	quote, _, err := s.QuoteEntries(ctx, []cart.Entry{entry})
	if err != nil {
		return nil, err
	}
	if len(quote.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return quote, nil
}

// GetDraft loads the actor's saved shipping form, empty if none exists.
func (s *service) GetDraft(ctx context.Context, actor types.Actor) (*OrderDraft, error) {
	subject := actor.Subject()
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no checkout identity on request")
	}
	raw, err := s.kv.Get(ctx, s.kv.GuestDraftKey(subject))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &OrderDraft{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load checkout draft")
	}
	var draft OrderDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout draft")
	}
	return &draft, nil
}

// SaveDraft persists the shipping form with the configured TTL.
func (s *service) SaveDraft(ctx context.Context, actor types.Actor, draft OrderDraft) error {
	subject := actor.Subject()
	if subject == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no checkout identity on request")
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout draft")
	}
	if err := s.kv.Set(ctx, s.kv.GuestDraftKey(subject), payload, s.cfg.GuestDraftTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save checkout draft")
	}
	return nil
}

// ClearDraft drops the saved shipping form.
func (s *service) ClearDraft(ctx context.Context, actor types.Actor) error {
	subject := actor.Subject()
	if subject == "" {
		return nil
	}
	if err := s.kv.Del(ctx, s.kv.GuestDraftKey(subject)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: clear checkout draft")
	}
	return nil
}

func newQuoteLine(line Line) QuoteLine {
	var image *string
	if len(line.Product.ImageURLs) > 0 {
		image = &line.Product.ImageURLs[0]
	}
	return QuoteLine{
		ProductID:  line.Product.ID,
		Title:      line.Product.Title,
		ImageURL:   image,
		Price:      line.Product.Price,
		SalePrice:  line.Product.SalePrice,
		Quantity:   line.Quantity,
		Color:      line.Color,
		Size:       line.Size,
		LineTotal:  line.Product.SalePrice * line.Quantity,
		OutOfStock: line.Product.OutOfStock(),
	}
}
