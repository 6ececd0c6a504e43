package fees

import (
	"math"
	"testing"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: expected %v, got %v", name, want, got)
	}
}

func TestPurchaseMasalaFarmer(t *testing.T) {
	calc := NewCalculator(PurchaseSchedule())
	items := []LineItem{{ID: "1", Category: "Masalas", QuantityOrdered: 10, PricePerUnit: 100}}
	out := calc.Compute(items, RoleFarmer)
	line := out.Lines[0]
	approx(t, "subtotal", line.LineSubtotal, 1000)
	approx(t, "commission rate", line.CommissionRate, 12)
	approx(t, "commission", line.CommissionAmount, 120)
	approx(t, "tax rate", line.TaxRate, 5)
	approx(t, "tax", line.TaxAmount, 71.6)
	approx(t, "item total", line.ItemTotal, 1191.6)
	approx(t, "grand total", out.Summary.GrandTotal, 1191.6)
}

func TestPurchaseBuyerExempt(t *testing.T) {
	calc := NewCalculator(PurchaseSchedule())
	items := []LineItem{{ID: "1", Category: "Masalas", QuantityOrdered: 10, PricePerUnit: 100}}
	out := calc.Compute(items, RoleBuyer)
	line := out.Lines[0]
	if line.TaxRate != 0 || line.CommissionRate != 0 {
		t.Fatalf("buyer must see zero rates, got tax %v commission %v", line.TaxRate, line.CommissionRate)
	}
	approx(t, "tax", line.TaxAmount, 0)
	approx(t, "commission", line.CommissionAmount, 0)
	approx(t, "item total", line.ItemTotal, 1000)
}

func TestPurchaseFeesAdditive(t *testing.T) {
	calc := NewCalculator(PurchaseSchedule())
	items := []LineItem{
		{ID: "1", Category: "Fruits and Vegetables", QuantityOrdered: 3, PricePerUnit: 40},
		{ID: "2", CropName: "Wheat crop", QuantityOrdered: 5, PricePerUnit: 22},
	}
	out := calc.Compute(items, RoleFarmer)
	for _, line := range out.Lines {
		approx(t, "additive invariant "+line.ID, line.ItemTotal, line.LineSubtotal+line.TaxAmount+line.CommissionAmount)
	}
	s := out.Summary
	approx(t, "grand total", s.GrandTotal, s.Subtotal+s.TaxTotal+s.CommissionTotal)
}

func TestSaleSingleCropItem(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	items := []LineItem{{ID: "1", Category: "Food Crops", QuantityOrdered: 100, PricePerUnit: 50}}
	out := calc.Compute(items, RoleFarmer)
	line := out.Lines[0]
	approx(t, "subtotal", line.LineSubtotal, 5000)
	approx(t, "commission rate", line.CommissionRate, 2.0)
	approx(t, "commission", line.CommissionAmount, 100)
	approx(t, "tax", line.TaxAmount, 18)
	approx(t, "net total", line.ItemTotal, 4882)
	approx(t, "grand total", out.Summary.GrandTotal, 4882)
}

func TestSaleTierBandOnGroupTotal(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	items := []LineItem{
		{ID: "1", Category: "Food Crops", QuantityOrdered: 1000, PricePerUnit: 150},
		{ID: "2", Category: "Food Crops", QuantityOrdered: 1000, PricePerUnit: 100},
	}
	// Group total 250,000 crosses the first band: both lines use 2.5%.
	out := calc.Compute(items, RoleFarmer)
	for _, line := range out.Lines {
		approx(t, "band rate "+line.ID, line.CommissionRate, 2.5)
	}
}

func TestSaleBandBoundary(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	atBoundary := []LineItem{{ID: "1", Category: "Food Crops", QuantityOrdered: 1000, PricePerUnit: 200}}
	out := calc.Compute(atBoundary, RoleFarmer)
	approx(t, "rate at 200000", out.Lines[0].CommissionRate, 2.0)

	pastBoundary := []LineItem{{ID: "1", Category: "Food Crops", QuantityOrdered: 1, PricePerUnit: 200001}}
	out = calc.Compute(pastBoundary, RoleFarmer)
	approx(t, "rate at 200001", out.Lines[0].CommissionRate, 2.5)
}

func TestSaleMasalaBands(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	cases := []struct {
		total float64
		rate  float64
	}{
		{100_000, 3.0},
		{500_000, 3.4},
		{900_000, 4.0},
		{1_500_000, 4.4},
	}
	for _, tc := range cases {
		items := []LineItem{{ID: "1", Category: "Masalas", QuantityOrdered: 1, PricePerUnit: tc.total}}
		out := calc.Compute(items, RoleFarmer)
		approx(t, "masala band", out.Lines[0].CommissionRate, tc.rate)
	}
}

func TestSaleCommissionCap(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	items := []LineItem{{ID: "1", Category: "Masalas", QuantityOrdered: 1000, PricePerUnit: 10_000}}
	out := calc.Compute(items, RoleFarmer)
	line := out.Lines[0]
	approx(t, "capped commission", line.CommissionAmount, 100000)
	approx(t, "tax on capped fee", line.TaxAmount, 18000)
	approx(t, "net", line.ItemTotal, 10_000_000-100000-18000)
}

func TestSaleFeesSubtractive(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	items := []LineItem{
		{ID: "1", Category: "Fruits and Vegetables", QuantityOrdered: 12, PricePerUnit: 33.33},
		{ID: "2", Category: "Masalas", QuantityOrdered: 7, PricePerUnit: 149.99},
	}
	out := calc.Compute(items, RoleFarmer)
	for _, line := range out.Lines {
		approx(t, "subtractive invariant "+line.ID, line.ItemTotal,
			round2(line.LineSubtotal-line.CommissionAmount-line.TaxAmount))
		if line.CommissionAmount > 100000 {
			t.Fatalf("commission %v exceeds cap", line.CommissionAmount)
		}
	}
}

func TestSaleRoundsEachStep(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	items := []LineItem{{ID: "1", Category: "Food Crops", QuantityOrdered: 3, PricePerUnit: 33.333}}
	out := calc.Compute(items, RoleFarmer)
	line := out.Lines[0]
	approx(t, "rounded subtotal", line.LineSubtotal, 100.00)
	approx(t, "rounded commission", line.CommissionAmount, 2.00)
	approx(t, "rounded tax", line.TaxAmount, 0.36)
	approx(t, "rounded net", line.ItemTotal, 97.64)
}

func TestQuantityClampedToAvailable(t *testing.T) {
	calc := NewCalculator(PurchaseSchedule())
	items := []LineItem{{ID: "1", Category: "Food Crops", QuantityAvailable: 5, QuantityOrdered: 9, PricePerUnit: 10}}
	out := calc.Compute(items, RoleBuyer)
	approx(t, "clamped subtotal", out.Lines[0].LineSubtotal, 50)
}

func TestMalformedInputDegradesToZero(t *testing.T) {
	calc := NewCalculator(PurchaseSchedule())
	items := []LineItem{
		{ID: "1", Category: "Masalas", QuantityOrdered: -4, PricePerUnit: 100},
		{ID: "2", Category: "Masalas", QuantityOrdered: 3, PricePerUnit: math.NaN()},
		{ID: "3", Category: "Masalas", QuantityOrdered: math.Inf(1), PricePerUnit: 10},
	}
	out := calc.Compute(items, RoleFarmer)
	approx(t, "subtotal", out.Summary.Subtotal, 0)
	approx(t, "grand total", out.Summary.GrandTotal, 0)
}

func TestComputeIdempotent(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	items := []LineItem{
		{ID: "1", Category: "Food Crops", QuantityOrdered: 100, PricePerUnit: 50},
		{ID: "2", Category: "Masalas", QuantityOrdered: 40, PricePerUnit: 80},
	}
	first := calc.Compute(items, RoleFarmer)
	second := calc.Compute(items, RoleFarmer)
	if first.Summary != second.Summary {
		t.Fatalf("recompute diverged: %+v vs %+v", first.Summary, second.Summary)
	}
	for i := range first.Lines {
		if first.Lines[i] != second.Lines[i] {
			t.Fatalf("line %d diverged", i)
		}
	}
}

func TestPreviewScheduleNet(t *testing.T) {
	calc := NewCalculator(PreviewSchedule())
	items := []LineItem{{ID: "1", Category: "Masalas", QuantityOrdered: 10, PricePerUnit: 100}}
	out := calc.Compute(items, RoleFarmer)
	line := out.Lines[0]
	// Flat masala rates applied subtractively, no GST compounding on the fee.
	approx(t, "commission", line.CommissionAmount, 120)
	approx(t, "tax", line.TaxAmount, 50)
	approx(t, "net", line.ItemTotal, 830)
}

func TestAddingItemMovesWholeGroupBand(t *testing.T) {
	calc := NewCalculator(SaleSchedule())
	base := []LineItem{{ID: "1", Category: "Food Crops", QuantityOrdered: 1000, PricePerUnit: 150}}
	out := calc.Compute(base, RoleFarmer)
	approx(t, "rate before", out.Lines[0].CommissionRate, 2.0)

	grown := append(base, LineItem{ID: "2", Category: "Food Crops", QuantityOrdered: 1000, PricePerUnit: 100})
	out = calc.Compute(grown, RoleFarmer)
	approx(t, "rate after", out.Lines[0].CommissionRate, 2.5)
}
