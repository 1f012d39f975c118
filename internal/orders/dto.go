package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/internal/cart"
	"github.com/giftlypk/giftly-backend/internal/checkout"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
)

// BuyNowInput requests a single-product checkout that skips the cart.
type BuyNowInput struct {
	ProductID uuid.UUID
	Color     *string
	Size      *string
}

// PlaceOrderInput is the validated order submission.
type PlaceOrderInput struct {
	Details      checkout.OrderDraft
	PaymentMode  enums.PaymentMode
	AgreeToTerms bool
	BuyNow       *BuyNowInput
}

// PlaceOrderResult is either a committed order id (cash on delivery) or a
// hosted-checkout redirect (prepaid).
type PlaceOrderResult struct {
	OrderID           *uuid.UUID  `json:"order_id,omitempty"`
	RedirectURL       *string     `json:"redirect_url,omitempty"`
	DroppedProductIDs []uuid.UUID `json:"dropped_product_ids,omitempty"`
}

// OrderLineDTO is the read shape of a snapshot line.
type OrderLineDTO struct {
	ProductID     uuid.UUID `json:"product_id"`
	Title         string    `json:"title"`
	ImageURL      *string   `json:"image_url,omitempty"`
	UnitPrice     int       `json:"unit_price"`
	UnitSalePrice int       `json:"unit_sale_price"`
	Quantity      int       `json:"quantity"`
	Color         *string   `json:"color,omitempty"`
	Size          *string   `json:"size,omitempty"`
	LineTotal     int       `json:"line_total"`
}

// OrderDTO is the read shape of a placed order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	PaymentMode   enums.PaymentMode   `json:"payment_mode"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Status        enums.OrderStatus   `json:"status"`
	Subtotal      int                 `json:"subtotal"`
	Discount      int                 `json:"discount"`
	ShippingFee   int                 `json:"shipping_fee"`
	Total         int                 `json:"total"`
	FullName      string              `json:"full_name"`
	Mobile        string              `json:"mobile"`
	AddressLine1  string              `json:"address_line1"`
	AddressLine2  string              `json:"address_line2,omitempty"`
	Pincode       string              `json:"pincode"`
	City          string              `json:"city"`
	State         string              `json:"state"`
	Lines         []OrderLineDTO      `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderListResult is one cursor page of an actor's order history.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// NewOrderDTO maps a persisted order into its read shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:            order.ID,
		PaymentMode:   order.PaymentMode,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		ShippingFee:   order.ShippingFee,
		Total:         order.Total,
		FullName:      order.ShippingAddress.FullName,
		Mobile:        order.ShippingAddress.Mobile,
		AddressLine1:  order.ShippingAddress.AddressLine1,
		AddressLine2:  order.ShippingAddress.AddressLine2,
		Pincode:       order.ShippingAddress.Pincode,
		City:          order.ShippingAddress.City,
		State:         order.ShippingAddress.State,
		Lines:         make([]OrderLineDTO, 0, len(order.Lines)),
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ProductID:     line.ProductID,
			Title:         line.Title,
			ImageURL:      line.ImageURL,
			UnitPrice:     line.UnitPrice,
			UnitSalePrice: line.UnitSalePrice,
			Quantity:      line.Quantity,
			Color:         line.Color,
			Size:          line.Size,
			LineTotal:     line.LineTotal,
		})
	}
	return dto
}

func entryFromBuyNow(input *BuyNowInput) cart.Entry {
	return cart.Entry{
		ProductID: input.ProductID,
		Quantity:  1,
		Color:     input.Color,
		Size:      input.Size,
	}
}
