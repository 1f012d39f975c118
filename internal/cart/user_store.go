package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/pkg/db/models"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
)

type cartRows interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindByUserProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	Insert(ctx context.Context, item *models.CartItem) error
	DeleteByUserProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// UserStore keeps an account cart in cart_items rows. The unique
// (user_id, product_id) index backs the add-once contract.
type UserStore struct {
	rows   cartRows
	userID uuid.UUID
}

// NewUserStore builds an account cart store bound to one user.
func NewUserStore(rows cartRows, userID uuid.UUID) (*UserStore, error) {
	if rows == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	return &UserStore{rows: rows, userID: userID}, nil
}

// Add inserts a row unless the product is already in the cart.
func (s *UserStore) Add(ctx context.Context, entry Entry) (bool, error) {
	_, err := s.rows.FindByUserProduct(ctx, s.userID, entry.ProductID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}

	quantity := entry.Quantity
	if quantity < 1 {
		quantity = 1
	}
	item := &models.CartItem{
		UserID:    s.userID,
		ProductID: entry.ProductID,
		Quantity:  quantity,
		Color:     entry.Color,
		Size:      entry.Size,
	}
	if err := s.rows.Insert(ctx, item); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart item")
	}
	return true, nil
}

// Remove drops the product's row if present.
func (s *UserStore) Remove(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.rows.DeleteByUserProduct(ctx, s.userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	return nil
}

// Has reports whether the product sits in the cart.
func (s *UserStore) Has(ctx context.Context, productID uuid.UUID) (bool, error) {
	_, err := s.rows.FindByUserProduct(ctx, s.userID, productID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
}

// List returns every entry in insertion order.
func (s *UserStore) List(ctx context.Context) ([]Entry, error) {
	items, err := s.rows.ListByUser(ctx, s.userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart items")
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Color:     item.Color,
			Size:      item.Size,
			AddedAt:   item.CreatedAt,
		})
	}
	return entries, nil
}

// Clear drains the account cart.
func (s *UserStore) Clear(ctx context.Context) error {
	if err := s.rows.DeleteAllForUser(ctx, s.userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}
