package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/api/middleware"
	"github.com/giftlypk/giftly-backend/api/responses"
	"github.com/giftlypk/giftly-backend/api/validators"
	"github.com/giftlypk/giftly-backend/internal/checkout"
	"github.com/giftlypk/giftly-backend/internal/orders"
	"github.com/giftlypk/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/logger"
)

type buyNowRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     *string   `json:"color,omitempty"`
	Size      *string   `json:"size,omitempty"`
}

type quoteRequest struct {
	BuyNow *buyNowRequest `json:"buy_now,omitempty"`
}

// CheckoutQuote prices the caller's cart, or a single buy-now product when one
// is supplied instead.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var (
			quote *checkout.Quote
			err   error
		)
		if body.BuyNow != nil {
			quote, err = svc.BuyNowQuote(r.Context(), body.BuyNow.ProductID, body.BuyNow.Color, body.BuyNow.Size)
		} else {
			actor := middleware.ActorFromContext(r.Context())
			quote, err = svc.QuoteCart(r.Context(), actor)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutDraftGet returns the caller's saved shipping draft, or an empty one
// when nothing was saved yet.
func CheckoutDraftGet(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		draft, err := svc.GetDraft(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutDraftPut saves the shipping form as typed so far.
func CheckoutDraftPut(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft checkout.OrderDraft
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if err := svc.SaveDraft(r.Context(), actor, draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

type submitOrderRequest struct {
	Details      checkout.OrderDraft `json:"details"`
	PaymentMode  enums.PaymentMode   `json:"payment_mode" validate:"required"`
	AgreeToTerms bool                `json:"agree_to_terms"`
	BuyNow       *buyNowRequest      `json:"buy_now,omitempty"`
}

// CheckoutSubmit places the order. Cash-on-delivery commits immediately and
// answers 201 with the order id; prepaid answers with a hosted-checkout
// redirect URL.
func CheckoutSubmit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body submitOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !body.PaymentMode.IsValid() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown payment mode"))
			return
		}

		input := orders.PlaceOrderInput{
			Details:      body.Details,
			PaymentMode:  body.PaymentMode,
			AgreeToTerms: body.AgreeToTerms,
		}
		if body.BuyNow != nil {
			input.BuyNow = &orders.BuyNowInput{
				ProductID: body.BuyNow.ProductID,
				Color:     body.BuyNow.Color,
				Size:      body.BuyNow.Size,
			}
		}

		actor := middleware.ActorFromContext(r.Context())
		result, err := svc.PlaceOrder(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.OrderID != nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
