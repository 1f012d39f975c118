package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is the delivery destination captured at checkout. It is
// persisted on orders as a JSON column so the snapshot survives later edits
// to the customer's saved details.
type ShippingAddress struct {
	FullName     string `json:"full_name"`
	Mobile       string `json:"mobile"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Pincode      string `json:"pincode"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Value marshals the address into its JSON column representation.
func (a ShippingAddress) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("shipping address: marshal %w", err)
	}
	return string(raw), nil
}

// Scan decodes the JSON column representation.
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("shipping address: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*a = ShippingAddress{}
		return nil
	}

	return json.Unmarshal(raw, a)
}

// IsZero reports whether no field of the address has been set.
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// SingleLine renders the address for labels and notification payloads.
func (a ShippingAddress) SingleLine() string {
	parts := []string{a.AddressLine1}
	if strings.TrimSpace(a.AddressLine2) != "" {
		parts = append(parts, a.AddressLine2)
	}
	parts = append(parts, a.City, a.State, a.Pincode)
	return strings.Join(parts, ", ")
}
