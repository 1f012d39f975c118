package catalog

import (
	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/db/models"
)

// CategoryNode is one node of the rendered category tree. The storefront
// renders at most two levels, so children never carry grandchildren.
type CategoryNode struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	ImageURL *string        `json:"image_url,omitempty"`
	Children []CategoryNode `json:"children"`
}

// CategoryWithCount pairs a category with its active product count.
type CategoryWithCount struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	ProductCount int        `json:"product_count"`
}

// ProductDTO is the storefront read shape of a listing.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURLs   []string  `json:"image_urls"`
	Colors      []string  `json:"colors"`
	Sizes       []string  `json:"sizes"`
	Price       int       `json:"price"`
	SalePrice   int       `json:"sale_price"`
	OutOfStock  bool      `json:"out_of_stock"`
	IsFeatured  bool      `json:"is_featured"`
}

// ProductListResult is one cursor page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// NewProductDTO maps a persisted product into its read shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		CategoryID:  product.CategoryID,
		Title:       product.Title,
		Slug:        product.Slug,
		Description: product.Description,
		ImageURLs:   append([]string{}, product.ImageURLs...),
		Colors:      append([]string{}, product.Colors...),
		Sizes:       append([]string{}, product.Sizes...),
		Price:       product.Price,
		SalePrice:   product.SalePrice,
		OutOfStock:  product.OutOfStock(),
		IsFeatured:  product.IsFeatured,
	}
}

func newProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
