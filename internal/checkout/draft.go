package checkout

import "strings"

// OrderDraft is the shipping form saved as the customer types. It persists in
// redis per actor so a half-finished checkout survives a page reload.
type OrderDraft struct {
	FullName     string `json:"full_name"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Pincode      string `json:"pincode"`
	City         string `json:"city"`
	State        string `json:"state"`
	OrderNote    string `json:"order_note,omitempty"`
}

// IsZero reports whether no field carries a value.
func (d OrderDraft) IsZero() bool {
	return strings.TrimSpace(d.FullName) == "" &&
		strings.TrimSpace(d.Mobile) == "" &&
		strings.TrimSpace(d.Email) == "" &&
		strings.TrimSpace(d.AddressLine1) == "" &&
		strings.TrimSpace(d.AddressLine2) == "" &&
		strings.TrimSpace(d.Pincode) == "" &&
		strings.TrimSpace(d.City) == "" &&
		strings.TrimSpace(d.State) == "" &&
		strings.TrimSpace(d.OrderNote) == ""
}
