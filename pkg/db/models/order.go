package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/enums"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

// Order is a placed checkout. Exactly one of UserID or GuestSessionID is set.
// All amounts are whole rupees.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          *uuid.UUID            `gorm:"column:user_id;type:uuid;index"`
	GuestSessionID  *string               `gorm:"column:guest_session_id;index"`
	PaymentMode     enums.PaymentMode     `gorm:"column:payment_mode;type:text;not null"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	Subtotal        int                   `gorm:"column:subtotal;not null"`
	Discount        int                   `gorm:"column:discount;not null"`
	ShippingFee     int                   `gorm:"column:shipping_fee;not null"`
	Total           int                   `gorm:"column:total;not null"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Lines           []OrderLine           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine snapshots one product at placement time so later catalog edits do
// not change what the customer bought.
type OrderLine struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Title         string    `gorm:"column:title;not null"`
	ImageURL      *string   `gorm:"column:image_url"`
	UnitPrice     int       `gorm:"column:unit_price;not null"`
	UnitSalePrice int       `gorm:"column:unit_sale_price;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	Color         *string   `gorm:"column:color"`
	Size          *string   `gorm:"column:size"`
	LineSubtotal  int       `gorm:"column:line_subtotal;not null"`
	LineDiscount  int       `gorm:"column:line_discount;not null"`
	LineTotal     int       `gorm:"column:line_total;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
