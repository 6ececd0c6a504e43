package fees

import "math"

// Role identifies the acting marketplace user for fee purposes.
type Role string

// Marketplace roles.
const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// Group is the fee-classification bucket a line item falls into.
type Group string

// Fee groups.
const (
	GroupCrop     Group = "crop"
	GroupFruitVeg Group = "fruitveg"
	GroupMasala   Group = "masala"
)

// Direction controls whether fees are added on top of the subtotal
// (purchaser pays gross) or deducted from it (seller receives net).
type Direction int

const (
	// Additive produces gross totals: subtotal + tax + commission.
	Additive Direction = iota
	// Subtractive produces net totals: subtotal - commission - tax.
	Subtractive
)

// LineItem is one cart or deal entry. All numeric fields are defensively
// coerced: negative, NaN or infinite values contribute zero instead of
// failing the computation.
type LineItem struct {
	ID                string
	CropName          string
	Category          string
	QuantityAvailable float64
	QuantityOrdered   float64
	PricePerUnit      float64
}

// LineResult is the per-item fee breakdown exposed to the cart, deal and
// invoice layers.
type LineResult struct {
	ID               string  `json:"id"`
	Group            Group   `json:"group"`
	TaxRate          float64 `json:"taxRate"`
	CommissionRate   float64 `json:"commissionRate"`
	TaxAmount        float64 `json:"taxAmount"`
	CommissionAmount float64 `json:"commissionAmount"`
	LineSubtotal     float64 `json:"lineSubtotal"`
	ItemTotal        float64 `json:"itemTotal"`
}

// Summary aggregates fee results across a whole cart.
type Summary struct {
	Subtotal        float64 `json:"subtotal"`
	TaxTotal        float64 `json:"taxTotal"`
	CommissionTotal float64 `json:"commissionTotal"`
	GrandTotal      float64 `json:"grandTotal"`
}

// Breakdown couples per-line results with the cart level summary.
type Breakdown struct {
	Lines   []LineResult `json:"lines"`
	Summary Summary      `json:"summary"`
}

// round2 rounds a monetary amount to two decimal places, half away from
// zero. Amounts in this package are never negative.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sanitize coerces absent or malformed numeric input to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
