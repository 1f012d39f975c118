package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/pagination"
)

// Repository wires together catalog read persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListActiveCategories returns every active category in display order.
func (r *Repository) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// CountActiveProductsByCategory returns active product counts keyed by category id.
func (r *Repository) CountActiveProductsByCategory(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		CategoryID uuid.UUID
		Count      int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

// ListProductsByCategory returns one cursor page of active products for a category,
// newest first.
func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true)
	query = applyCursor(query, cursor)

	var products []models.Product
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListFeatured returns active featured products, newest first.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListTopSellers returns active products ranked by committed order count.
func (r *Repository) ListTopSellers(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("orders DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProducts matches active products whose title contains the term,
// case-insensitively, newest first.
func (r *Repository) SearchProducts(ctx context.Context, term string, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	query := r.db.WithContext(ctx).
		Where("is_active = ? AND LOWER(title) LIKE ?", true, pattern)
	query = applyCursor(query, cursor)

	var products []models.Product
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindProductByID loads a single active product.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs loads the active products among ids in one query. Missing
// or inactive ids are simply absent from the result.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func applyCursor(query *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return query
	}
	return query.Where(
		"created_at < ? OR (created_at = ? AND id < ?)",
		cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
	)
}
