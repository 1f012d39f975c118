package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
)

// Line is a cart entry joined with its live product row.
type Line struct {
	Product  models.Product
	Quantity int
	Color    *string
	Size     *string
}

type productLookup interface {
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Resolve joins cart entries with their products in a single batch lookup.
// Entry order is preserved; entries whose product no longer resolves, or
// whose chosen color/size the product no longer offers, are dropped and
// their ids returned so callers can tell the customer. An empty cart never
// hits the lookup.
func Resolve(ctx context.Context, entries []cart.Entry, lookup productLookup) ([]Line, []uuid.UUID, error) {
	if len(entries) == 0 {
		return []Line{}, nil, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	products, err := lookup.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart products")
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]Line, 0, len(entries))
	var dropped []uuid.UUID
	for _, entry := range entries {
		product, ok := byID[entry.ProductID]
		if !ok {
			dropped = append(dropped, entry.ProductID)
			continue
		}
		if !variantOffered(entry.Color, product.Colors) || !variantOffered(entry.Size, product.Sizes) {
			dropped = append(dropped, entry.ProductID)
			continue
		}
		quantity := entry.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lines = append(lines, Line{
			Product:  *product,
			Quantity: quantity,
			Color:    entry.Color,
			Size:     entry.Size,
		})
	}
	return lines, dropped, nil
}

// variantOffered reports whether the chosen variant is one the product still
// sells. An unset choice always passes.
func variantOffered(choice *string, offered []string) bool {
	if choice == nil || *choice == "" {
		return true
	}
	for _, option := range offered {
		if option == *choice {
			return true
		}
	}
	return false
}
