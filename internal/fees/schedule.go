package fees

// GroupRates holds the flat commission and item-level GST percentages for a
// fee group.
type GroupRates struct {
	Commission float64
	GST        float64
}

// Band is one bracket of a tiered commission schedule. Upto is the
// exclusive upper bound on the cumulative group total; zero means the band
// is open-ended.
type Band struct {
	Upto float64
	Rate float64
}

// Schedule parametrizes the fee calculator. A schedule either carries flat
// per-group rates or tiered bands keyed on per-group cart totals, plus the
// direction in which fees apply.
type Schedule struct {
	Name          string
	Direction     Direction
	BuyerExempt   bool
	RoundEachStep bool
	// FeeGSTRate is the GST percentage levied on the commission itself,
	// independent of any item-level GST.
	FeeGSTRate float64
	// Flat holds per-group rates. Ignored when Tiers is set.
	Flat map[Group]GroupRates
	// Tiers holds banded commission rates keyed on the cumulative subtotal
	// of all items in the same group across the whole cart.
	Tiers map[Group][]Band
	// CommissionCap limits the commission charged on a single line item.
	// Zero means uncapped.
	CommissionCap float64
}

// PurchaseSchedule is the buyer-facing cart schedule: flat per-group rates,
// fees added on top of the subtotal, buyers themselves fully exempt.
// Intermediate amounts stay unrounded; display rounds.
func PurchaseSchedule() Schedule {
	return Schedule{
		Name:        "purchase",
		Direction:   Additive,
		BuyerExempt: true,
		FeeGSTRate:  18,
		Flat: map[Group]GroupRates{
			GroupMasala:   {Commission: 12, GST: 5},
			GroupFruitVeg: {Commission: 9},
			GroupCrop:     {Commission: 7},
		},
	}
}

// SaleSchedule is the farmer-facing outgoing-sale schedule: tiered
// commission banded on cumulative per-group spend, fees deducted from the
// subtotal, every monetary step rounded to two decimals, commission capped
// per line item. GST applies to the platform fee only.
func SaleSchedule() Schedule {
	return Schedule{
		Name:          "sale",
		Direction:     Subtractive,
		RoundEachStep: true,
		FeeGSTRate:    18,
		CommissionCap: 100000,
		Tiers: map[Group][]Band{
			GroupCrop: {
				{Upto: 200001, Rate: 2.0},
				{Upto: 600001, Rate: 2.5},
				{Upto: 1000001, Rate: 3.0},
				{Rate: 3.4},
			},
			GroupFruitVeg: {
				{Upto: 200001, Rate: 2.5},
				{Upto: 600001, Rate: 3.0},
				{Upto: 1000001, Rate: 3.4},
				{Rate: 4.0},
			},
			GroupMasala: {
				{Upto: 200001, Rate: 3.0},
				{Upto: 600001, Rate: 3.4},
				{Upto: 1000001, Rate: 4.0},
				{Rate: 4.4},
			},
		},
	}
}

// PreviewSchedule mirrors the notification drawer's quick net estimate:
// purchase rates applied subtractively, without the fee GST compounding.
func PreviewSchedule() Schedule {
	s := PurchaseSchedule()
	s.Name = "preview"
	s.Direction = Subtractive
	s.BuyerExempt = false
	s.FeeGSTRate = 0
	return s
}

// rateFor resolves the commission and item GST rates for a group given the
// cumulative total of that group across the cart.
func (s Schedule) rateFor(group Group, groupTotal float64) (commission, gst float64) {
	if s.Tiers != nil {
		bands, ok := s.Tiers[group]
		if !ok {
			bands = s.Tiers[GroupCrop]
		}
		for _, b := range bands {
			if b.Upto == 0 || groupTotal < b.Upto {
				return b.Rate, 0
			}
		}
		return 0, 0
	}
	rates, ok := s.Flat[group]
	if !ok {
		rates = s.Flat[GroupCrop]
	}
	return rates.Commission, rates.GST
}
