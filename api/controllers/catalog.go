package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/api/middleware"
	"github.com/giftlypk/giftly-backend/api/responses"
	"github.com/giftlypk/giftly-backend/api/validators"
	"github.com/giftlypk/giftly-backend/internal/catalog"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/pagination"
)

const maxBatchProducts = 100

// Categories returns the storefront category tree.
func Categories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if withCounts(r) {
			result, err := svc.CategoriesWithCounts(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		tree, err := svc.CategoryTree(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tree)
	}
}

func withCounts(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("counts")), "true")
}

// CategoryProducts lists the active products under one category.
func CategoryProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListCategoryProducts(r.Context(), categoryID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Products serves the combined product listing surface: `q` searches (and
// records the term), `sort=top-sellers` ranks by order count, anything else
// returns the featured set.
func Products(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
			subject := middleware.ActorFromContext(r.Context()).Subject()
			result, err := svc.Search(r.Context(), subject, term, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		limit := pagination.NormalizeLimit(params.Limit)
		if strings.EqualFold(r.URL.Query().Get("sort"), "top-sellers") {
			result, err := svc.ListTopSellers(r.Context(), limit)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		result, err := svc.ListFeatured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// RecentSearches returns the caller's recorded search terms, newest first.
func RecentSearches(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := middleware.ActorFromContext(r.Context()).Subject()
		terms, err := svc.RecentSearches(r.Context(), subject)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"terms": terms})
	}
}

// Product returns one active product by id.
func Product(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type productsBatchRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// ProductsBatch resolves several products at once, request order preserved
// and unknown ids silently absent.
func ProductsBatch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body productsBatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(body.IDs) > maxBatchProducts {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many product ids"))
			return
		}

		products, err := svc.GetProductsBatch(r.Context(), body.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
