package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/pagination"
)

// Service exposes storefront catalog read operations.
type Service interface {
	CategoryTree(ctx context.Context) ([]CategoryNode, error)
	CategoriesWithCounts(ctx context.Context) ([]CategoryWithCount, error)
	ListCategoryProducts(ctx context.Context, categoryID uuid.UUID, params pagination.Params) (*ProductListResult, error)
	ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error)
	ListTopSellers(ctx context.Context, limit int) ([]ProductDTO, error)
	Search(ctx context.Context, subject, term string, params pagination.Params) (*ProductListResult, error)
	RecentSearches(ctx context.Context, subject string) ([]string, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetProductsBatch(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error)
}

type repository interface {
	ListActiveCategories(ctx context.Context) ([]models.Category, error)
	CountActiveProductsByCategory(ctx context.Context) (map[uuid.UUID]int, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	ListTopSellers(ctx context.Context, limit int) ([]models.Product, error)
	SearchProducts(ctx context.Context, term string, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type searchStore interface {
	PushRecent(ctx context.Context, key, value string, limit int64, ttl time.Duration) error
	ListRecent(ctx context.Context, key string) ([]string, error)
	RecentSearchesKey(subject string) string
}

type service struct {
	repo     repository
	searches searchStore
	cfg      config.CheckoutConfig
}

// NewService constructs a catalog service instance.
func NewService(repo repository, searches searchStore, cfg config.CheckoutConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if searches == nil {
		return nil, fmt.Errorf("search store required")
	}
	return &service{repo: repo, searches: searches, cfg: cfg}, nil
}

// CategoryTree loads active categories and assembles the display tree.
func (s *service) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	categories, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return BuildTree(categories), nil
}

// CategoriesWithCounts returns the flat category listing with product counts.
func (s *service) CategoriesWithCounts(ctx context.Context) ([]CategoryWithCount, error) {
	categories, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	counts, err := s.repo.CountActiveProductsByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		result = append(result, CategoryWithCount{
			ID:           category.ID,
			Name:         category.Name,
			Slug:         category.Slug,
			ParentID:     category.ParentID,
			ImageURL:     category.ImageURL,
			ProductCount: counts[category.ID],
		})
	}
	return result, nil
}

// ListCategoryProducts returns one cursor page of a category's products.
func (s *service) ListCategoryProducts(ctx context.Context, categoryID uuid.UUID, params pagination.Params) (*ProductListResult, error) {
	if categoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	products, err := s.repo.ListProductsByCategory(ctx, categoryID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list category products")
	}
	return buildPage(products, limit), nil
}

// ListFeatured returns featured products for the storefront rails.
func (s *service) ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error) {
	products, err := s.repo.ListFeatured(ctx, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list featured")
	}
	return newProductDTOs(products), nil
}

// ListTopSellers returns products ranked by committed orders.
func (s *service) ListTopSellers(ctx context.Context, limit int) ([]ProductDTO, error) {
	products, err := s.repo.ListTopSellers(ctx, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list top sellers")
	}
	return newProductDTOs(products), nil
}

// Search runs a title search and records the term against the subject's
// recent-search list. A failed recording never fails the search.
func (s *service) Search(ctx context.Context, subject, term string, params pagination.Params) (*ProductListResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	products, err := s.repo.SearchProducts(ctx, term, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search products")
	}

	if subject != "" {
		key := s.searches.RecentSearchesKey(subject)
		_ = s.searches.PushRecent(ctx, key, term, int64(s.cfg.RecentSearchLimit), s.cfg.RecentSearchTTL)
	}
	return buildPage(products, limit), nil
}

// RecentSearches returns the subject's recorded search terms, newest first.
func (s *service) RecentSearches(ctx context.Context, subject string) ([]string, error) {
	if subject == "" {
		return []string{}, nil
	}
	terms, err := s.searches.ListRecent(ctx, s.searches.RecentSearchesKey(subject))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: list recent searches")
	}
	return terms, nil
}

// GetProduct loads a single product detail.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// GetProductsBatch loads several products at once, keeping the requested order
// and silently skipping ids that no longer resolve.
func (s *service) GetProductsBatch(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error) {
	if len(ids) == 0 {
		return []ProductDTO{}, nil
	}
	products, err := s.repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products")
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	dtos := make([]ProductDTO, 0, len(ids))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			dtos = append(dtos, *NewProductDTO(product))
		}
	}
	return dtos, nil
}

func buildPage(products []models.Product, limit int) *ProductListResult {
	result := &ProductListResult{Products: newProductDTOs(products)}
	if len(products) > limit {
		result.Products = result.Products[:limit]
		last := products[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &cursor
	}
	return result
}
