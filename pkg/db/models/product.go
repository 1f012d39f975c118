package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a storefront listing. Prices are whole rupees; SalePrice
// is the effective selling price and Price the list price it is struck from.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null;index"`
	Title       string         `gorm:"column:title;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description *string        `gorm:"column:description"`
	ImageURLs   pq.StringArray `gorm:"column:image_urls;type:text[];not null;default:ARRAY[]::text[]"`
	Colors      pq.StringArray `gorm:"column:colors;type:text[];not null;default:ARRAY[]::text[]"`
	Sizes       pq.StringArray `gorm:"column:sizes;type:text[];not null;default:ARRAY[]::text[]"`
	Price       int            `gorm:"column:price;not null"`
	SalePrice   int            `gorm:"column:sale_price;not null"`
	Stock       int            `gorm:"column:stock;not null;default:0"`
	Orders      int            `gorm:"column:orders;not null;default:0"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool           `gorm:"column:is_featured;not null;default:false"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// OutOfStock reports whether cumulative orders have consumed the stock.
func (p Product) OutOfStock() bool {
	return p.Stock <= p.Orders
}

// Remaining returns the sellable units left, never negative.
func (p Product) Remaining() int {
	if left := p.Stock - p.Orders; left > 0 {
		return left
	}
	return 0
}

// DiscountPerUnit returns the per-unit markdown from the list price.
func (p Product) DiscountPerUnit() int {
	if p.Price > p.SalePrice {
		return p.Price - p.SalePrice
	}
	return 0
}
