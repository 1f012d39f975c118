package cart

import (
	"context"

	"github.com/google/uuid"
)

// Store is the cart persistence contract shared by the guest and account
// backends. Add reports false when the product is already present; the
// existing entry is kept untouched.
type Store interface {
	Add(ctx context.Context, entry Entry) (bool, error)
	Remove(ctx context.Context, productID uuid.UUID) error
	Has(ctx context.Context, productID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}
