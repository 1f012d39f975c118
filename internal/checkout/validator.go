package checkout

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Reason classifies why an order submission was rejected.
type Reason string

const (
	ReasonZeroTotal        Reason = "zero_total"
	ReasonMissingField     Reason = "missing_field"
	ReasonInvalidPhone     Reason = "invalid_phone"
	ReasonEmptyCart        Reason = "empty_cart"
	ReasonTermsNotAccepted Reason = "terms_not_accepted"
)

// ValidationFailure is the first check an order submission failed. Field is
// set only for missing-field failures.
type ValidationFailure struct {
	Reason Reason `json:"reason"`
	Field  string `json:"field,omitempty"`
}

func (f *ValidationFailure) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("order validation failed: %s (%s)", f.Reason, f.Field)
	}
	return fmt.Sprintf("order validation failed: %s", f.Reason)
}

// ValidateOrder checks a submission in a fixed order and stops at the first
// failure: payable total, shipping fields one by one (phone validity right
// after phone presence), then a non-empty cart, then terms. A nil return means
// the order may be placed.
func ValidateOrder(draft OrderDraft, lines []Line, totals Totals, agreedToTerms bool, region string) *ValidationFailure {
	if totals.Total <= 0 {
		return &ValidationFailure{Reason: ReasonZeroTotal}
	}
	if isBlank(draft.FullName) {
		return &ValidationFailure{Reason: ReasonMissingField, Field: "fullName"}
	}
	if isBlank(draft.Mobile) {
		return &ValidationFailure{Reason: ReasonMissingField, Field: "mobile"}
	}
	if !validPhone(draft.Mobile, region) {
		return &ValidationFailure{Reason: ReasonInvalidPhone}
	}
	if isBlank(draft.AddressLine1) {
		return &ValidationFailure{Reason: ReasonMissingField, Field: "addressLine1"}
	}
	if isBlank(draft.Pincode) {
		return &ValidationFailure{Reason: ReasonMissingField, Field: "pincode"}
	}
	if isBlank(draft.City) {
		return &ValidationFailure{Reason: ReasonMissingField, Field: "city"}
	}
	if isBlank(draft.State) {
		return &ValidationFailure{Reason: ReasonMissingField, Field: "state"}
	}
	if len(lines) == 0 {
		return &ValidationFailure{Reason: ReasonEmptyCart}
	}
	if !agreedToTerms {
		return &ValidationFailure{Reason: ReasonTermsNotAccepted}
	}
	return nil
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func validPhone(raw, region string) bool {
	number, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumberForRegion(number, region)
}
