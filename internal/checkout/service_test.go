package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

type stubDraftKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newStubDraftKV() *stubDraftKV {
	return &stubDraftKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubDraftKV) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubDraftKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	s.ttls[key] = ttl
	return nil
}

func (s *stubDraftKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *stubDraftKV) GuestDraftKey(subject string) string {
	return "gf:guest_draft:" + subject
}

type stubCarts struct {
	entries []cart.Entry
}

func (s *stubCarts) List(ctx context.Context, actor types.Actor) ([]cart.Entry, error) {
	return s.entries, nil
}

func newCheckoutService(t *testing.T, lookup productLookup, carts cartLister, kv draftKV) Service {
	t.Helper()
	cfg := config.CheckoutConfig{
		PhoneRegion:   "PK",
		GuestDraftTTL: time.Hour,
	}
	svc, err := NewService(lookup, carts, kv, cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestQuoteCartSurfacesDroppedIDs(t *testing.T) {
	kept := product(1000, 800)
	gone := uuid.New()
	lookup := &stubLookup{products: []models.Product{kept}}
	carts := &stubCarts{entries: []cart.Entry{
		{ProductID: kept.ID, Quantity: 2},
		{ProductID: gone, Quantity: 1},
	}}
	svc := newCheckoutService(t, lookup, carts, newStubDraftKV())

	quote, err := svc.QuoteCart(context.Background(), types.GuestActor("sess-1"))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(quote.Lines))
	}
	if quote.Totals.Total != 1600 {
		t.Fatalf("expected total 1600, got %d", quote.Totals.Total)
	}
	if len(quote.DroppedProductIDs) != 1 || quote.DroppedProductIDs[0] != gone {
		t.Fatalf("expected dropped id surfaced, got %v", quote.DroppedProductIDs)
	}
}

func TestBuyNowQuoteSingleUnit(t *testing.T) {
	p := product(500, 450)
	lookup := &stubLookup{products: []models.Product{p}}
	svc := newCheckoutService(t, lookup, &stubCarts{}, newStubDraftKV())

	quote, err := svc.BuyNowQuote(context.Background(), p.ID, nil, nil)
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	if len(quote.Lines) != 1 || quote.Lines[0].Quantity != 1 {
		t.Fatalf("expected single unit line, got %v", quote.Lines)
	}
	if quote.Totals.Total != 450 {
		t.Fatalf("expected total 450, got %d", quote.Totals.Total)
	}
}

func TestBuyNowQuoteUnknownProduct(t *testing.T) {
	svc := newCheckoutService(t, &stubLookup{}, &stubCarts{}, newStubDraftKV())

	_, err := svc.BuyNowQuote(context.Background(), uuid.New(), nil, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	kv := newStubDraftKV()
	svc := newCheckoutService(t, &stubLookup{}, &stubCarts{}, kv)
	ctx := context.Background()
	actor := types.GuestActor("sess-1")

	empty, err := svc.GetDraft(ctx, actor)
	if err != nil {
		t.Fatalf("get empty draft: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("expected zero draft, got %+v", empty)
	}

	draft := OrderDraft{
		FullName:     "Ayesha Khan",
		Mobile:       "03001234567",
		AddressLine1: "House 12",
		Pincode:      "54000",
		City:         "Lahore",
		State:        "Punjab",
	}
	if err := svc.SaveDraft(ctx, actor, draft); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if kv.ttls[kv.GuestDraftKey("sess-1")] != time.Hour {
		t.Fatal("expected draft ttl applied")
	}

	loaded, err := svc.GetDraft(ctx, actor)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if loaded.FullName != draft.FullName || loaded.City != draft.City {
		t.Fatalf("draft did not round trip: %+v", loaded)
	}

	if err := svc.ClearDraft(ctx, actor); err != nil {
		t.Fatalf("clear draft: %v", err)
	}
	cleared, err := svc.GetDraft(ctx, actor)
	if err != nil {
		t.Fatalf("get cleared draft: %v", err)
	}
	if !cleared.IsZero() {
		t.Fatalf("expected cleared draft, got %+v", cleared)
	}
}
