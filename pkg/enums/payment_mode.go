package enums

import "fmt"

// PaymentMode selects how a checkout is settled.
type PaymentMode string

const (
	PaymentModeCOD     PaymentMode = "cod"
	PaymentModePrepaid PaymentMode = "prepaid"
)

var validPaymentModes = []PaymentMode{
	PaymentModeCOD,
	PaymentModePrepaid,
}

// String implements fmt.Stringer.
func (p PaymentMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMode.
func (p PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMode converts raw input into a PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
