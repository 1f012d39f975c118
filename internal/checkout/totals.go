package checkout

// Totals holds the priced-out cart in whole rupees.
type Totals struct {
	Subtotal    int `json:"subtotal"`
	Discount    int `json:"discount"`
	ShippingFee int `json:"shipping_fee"`
	Total       int `json:"total"`
}

// ComputeTotals prices the resolved lines. Subtotal accumulates at list price,
// discount is the markdown to sale price, and the total is computed directly
// from sale prices rather than subtracting, so the three stay consistent under
// integer arithmetic. An empty cart is all zeros, shipping included.
func ComputeTotals(lines []Line, shippingFee int) Totals {
	if len(lines) == 0 {
		return Totals{}
	}

	var totals Totals
	for _, line := range lines {
		totals.Subtotal += line.Product.Price * line.Quantity
		totals.Discount += line.Product.DiscountPerUnit() * line.Quantity
		totals.Total += line.Product.SalePrice * line.Quantity
	}
	totals.ShippingFee = shippingFee
	totals.Total += shippingFee
	return totals
}
