package cart

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one product in a cart, backend-agnostic. Guest carts persist it as
// JSON in redis; account carts map it onto cart_items rows.
type Entry struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Color     *string   `json:"color,omitempty"`
	Size      *string   `json:"size,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}
