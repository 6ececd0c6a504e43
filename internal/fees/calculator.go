package fees

// Calculator computes per-line fees and cart totals under one schedule.
// It holds no mutable state: every call works from the full line list, so
// a quantity edit that moves a group across a tier band is reflected on
// every other line in that group.
type Calculator struct {
	Schedule   Schedule
	Classifier *Classifier
}

// NewCalculator returns a calculator for the given schedule with the
// default classifier.
func NewCalculator(s Schedule) Calculator {
	return Calculator{Schedule: s, Classifier: DefaultClassifier()}
}

// Compute folds the fee schedule over all line items and returns the
// per-line breakdown plus aggregated totals. It never fails: malformed
// quantities and prices contribute zero to the aggregate.
func (c Calculator) Compute(items []LineItem, role Role) Breakdown {
	lines := make([]LineResult, 0, len(items))
	groupTotals := c.groupTotals(items)
	var sum Summary
	for _, it := range items {
		line := c.computeLine(it, role, groupTotals)
		lines = append(lines, line)
		sum.Subtotal += line.LineSubtotal
		sum.TaxTotal += line.TaxAmount
		sum.CommissionTotal += line.CommissionAmount
	}
	switch c.Schedule.Direction {
	case Subtractive:
		total := sum.Subtotal - sum.CommissionTotal - sum.TaxTotal
		if c.Schedule.RoundEachStep {
			total = round2(total)
		}
		sum.GrandTotal = total
	default:
		sum.GrandTotal = sum.Subtotal + sum.TaxTotal + sum.CommissionTotal
	}
	return Breakdown{Lines: lines, Summary: sum}
}

// ComputeLine evaluates a single item in the context of the full cart.
// Callers that only need one line still pass every item so tiered rates
// see the complete group totals.
func (c Calculator) ComputeLine(item LineItem, items []LineItem, role Role) LineResult {
	return c.computeLine(item, role, c.groupTotals(items))
}

func (c Calculator) computeLine(item LineItem, role Role, groupTotals map[Group]float64) LineResult {
	group := c.Classifier.Classify(item.Category, item.CropName)
	subtotal := c.lineSubtotal(item)
	result := LineResult{
		ID:           item.ID,
		Group:        group,
		LineSubtotal: subtotal,
		ItemTotal:    subtotal,
	}
	if role == RoleBuyer && c.Schedule.BuyerExempt {
		return result
	}

	commissionRate, gstRate := c.Schedule.rateFor(group, groupTotals[group])
	commission := subtotal * commissionRate / 100
	if c.Schedule.RoundEachStep {
		commission = round2(commission)
	}
	if limit := c.Schedule.CommissionCap; limit > 0 && commission > limit {
		commission = limit
	}

	itemTax := subtotal * gstRate / 100
	feeTax := commission * c.Schedule.FeeGSTRate / 100
	if c.Schedule.RoundEachStep {
		feeTax = round2(feeTax)
	}
	tax := itemTax + feeTax

	result.CommissionRate = commissionRate
	result.CommissionAmount = commission
	result.TaxAmount = tax
	if c.Schedule.Tiers != nil {
		result.TaxRate = c.Schedule.FeeGSTRate
	} else {
		result.TaxRate = gstRate
	}

	switch c.Schedule.Direction {
	case Subtractive:
		total := subtotal - commission - tax
		if c.Schedule.RoundEachStep {
			total = round2(total)
		}
		result.ItemTotal = total
	default:
		result.ItemTotal = subtotal + tax + commission
	}
	return result
}

// lineSubtotal applies the input coercion rules: malformed numbers become
// zero and the ordered quantity never exceeds the available quantity.
func (c Calculator) lineSubtotal(item LineItem) float64 {
	qty := sanitize(item.QuantityOrdered)
	if avail := sanitize(item.QuantityAvailable); avail > 0 && qty > avail {
		qty = avail
	}
	subtotal := qty * sanitize(item.PricePerUnit)
	if c.Schedule.RoundEachStep {
		subtotal = round2(subtotal)
	}
	return subtotal
}

// groupTotals sums line subtotals per fee group across the whole cart.
// Tier bands key on these cumulative totals, not on individual lines.
func (c Calculator) groupTotals(items []LineItem) map[Group]float64 {
	totals := make(map[Group]float64, 3)
	if c.Schedule.Tiers == nil {
		return totals
	}
	for _, it := range items {
		group := c.Classifier.Classify(it.Category, it.CropName)
		totals[group] += c.lineSubtotal(it)
	}
	return totals
}
