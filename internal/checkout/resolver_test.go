package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
)

type stubLookup struct {
	products []models.Product
	calls    int
}

func (s *stubLookup) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.calls++
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []models.Product
	for _, p := range s.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func product(price, salePrice int) models.Product {
	return models.Product{
		ID:        uuid.New(),
		Title:     "p",
		Price:     price,
		SalePrice: salePrice,
		Stock:     10,
		IsActive:  true,
	}
}

func TestResolvePreservesEntryOrder(t *testing.T) {
	first := product(1000, 800)
	second := product(500, 500)
	lookup := &stubLookup{products: []models.Product{second, first}}

	entries := []cart.Entry{
		{ProductID: first.ID, Quantity: 1},
		{ProductID: second.ID, Quantity: 2},
	}
	lines, dropped, err := Resolve(context.Background(), entries, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("expected nothing dropped, got %v", dropped)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Product.ID != first.ID || lines[1].Product.ID != second.ID {
		t.Fatal("expected entry order preserved")
	}
	if lines[1].Quantity != 2 {
		t.Fatalf("expected quantity carried, got %d", lines[1].Quantity)
	}
}

func TestResolveDropsMissingProducts(t *testing.T) {
	kept := product(1000, 800)
	lookup := &stubLookup{products: []models.Product{kept}}
	gone := uuid.New()

	entries := []cart.Entry{
		{ProductID: gone, Quantity: 1},
		{ProductID: kept.ID, Quantity: 1},
	}
	lines, dropped, err := Resolve(context.Background(), entries, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(lines) != 1 || lines[0].Product.ID != kept.ID {
		t.Fatalf("expected only the surviving line, got %v", lines)
	}
	if len(dropped) != 1 || dropped[0] != gone {
		t.Fatalf("expected dropped id surfaced, got %v", dropped)
	}
}

func TestResolveEmptyInputSkipsLookup(t *testing.T) {
	lookup := &stubLookup{}
	lines, dropped, err := Resolve(context.Background(), nil, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(lines) != 0 || dropped != nil {
		t.Fatalf("expected empty result, got %v %v", lines, dropped)
	}
	if lookup.calls != 0 {
		t.Fatalf("expected no lookup call, got %d", lookup.calls)
	}
}

func TestResolveIdempotent(t *testing.T) {
	p := product(1000, 800)
	lookup := &stubLookup{products: []models.Product{p}}
	entries := []cart.Entry{{ProductID: p.ID, Quantity: 3}}

	first, _, err := Resolve(context.Background(), entries, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, _, err := Resolve(context.Background(), entries, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(first) != len(second) {
		t.Fatal("expected identical results across calls")
	}
	for i := range first {
		if first[i].Product.ID != second[i].Product.ID || first[i].Quantity != second[i].Quantity {
			t.Fatalf("result diverged at line %d", i)
		}
	}
}

func TestResolveDropsUnknownVariants(t *testing.T) {
	p := product(1000, 800)
	p.Colors = []string{"red", "blue"}
	p.Sizes = []string{"s", "m"}
	plain := product(500, 500)
	lookup := &stubLookup{products: []models.Product{p, plain}}

	badColor := "neon"
	badSize := "xxl"
	goodColor := "red"
	entries := []cart.Entry{
		{ProductID: p.ID, Quantity: 1, Color: &badColor},
		{ProductID: p.ID, Quantity: 1, Size: &badSize},
		{ProductID: plain.ID, Quantity: 1, Color: &goodColor},
		{ProductID: p.ID, Quantity: 1, Color: &goodColor},
	}
	lines, dropped, err := Resolve(context.Background(), entries, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(dropped) != 3 {
		t.Fatalf("expected 3 dropped entries, got %v", dropped)
	}
	if len(lines) != 1 || lines[0].Color == nil || *lines[0].Color != "red" {
		t.Fatalf("expected only the red line to survive, got %v", lines)
	}
}

func TestResolveKeepsUnsetVariantChoice(t *testing.T) {
	p := product(1000, 800)
	p.Colors = []string{"red"}
	lookup := &stubLookup{products: []models.Product{p}}

	lines, dropped, err := Resolve(context.Background(), []cart.Entry{{ProductID: p.ID, Quantity: 1}}, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(dropped) != 0 || len(lines) != 1 {
		t.Fatalf("expected no variant choice to pass, got lines=%v dropped=%v", lines, dropped)
	}
}

func TestResolveClampsQuantity(t *testing.T) {
	p := product(1000, 800)
	lookup := &stubLookup{products: []models.Product{p}}

	lines, _, err := Resolve(context.Background(), []cart.Entry{{ProductID: p.ID, Quantity: 0}}, lookup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if lines[0].Quantity != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", lines[0].Quantity)
	}
}
