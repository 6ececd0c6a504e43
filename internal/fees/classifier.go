package fees

import "strings"

// keywordRule maps a set of lowercase substrings to a fee group. Rules are
// evaluated in order; the first match wins.
type keywordRule struct {
	Keywords []string
	Group    Group
}

// Classifier resolves a line item's fee group from its category, falling
// back to the crop name. Exact category matches take priority over keyword
// scanning so that canonical catalog categories never depend on substring
// luck. Keyword lists carry Hindi and Tamil transliterations alongside the
// English terms because crop names arrive in whatever language the farmer
// typed them in.
type Classifier struct {
	Exact    map[string]Group
	Category []keywordRule
	Name     []keywordRule
	Fallback Group
}

// DefaultClassifier returns the classifier used by both fee schedules.
func DefaultClassifier() *Classifier {
	masala := []string{"masala", "masalas", "spice", "spices", "masale", "vasanai"}
	fruitVeg := []string{
		"fruit", "fruits", "vegetable", "vegetables", "veg",
		"phal", "sabzi", "sabji", "pazham", "kaaikari", "kaai",
	}
	crop := []string{
		"food", "crop", "crops", "grain", "grains",
		"anaj", "fasal", "dhanya", "payir", "thaniyam",
	}
	rules := []keywordRule{
		{Keywords: masala, Group: GroupMasala},
		{Keywords: fruitVeg, Group: GroupFruitVeg},
		{Keywords: crop, Group: GroupCrop},
	}
	return &Classifier{
		Exact: map[string]Group{
			"food crops":            GroupCrop,
			"fruits and vegetables": GroupFruitVeg,
			"masalas":               GroupMasala,
		},
		Category: rules,
		Name:     rules,
		Fallback: GroupCrop,
	}
}

// Classify returns the fee group for the given category and crop name.
// Matching is case-insensitive and never fails: unrecognized input lands in
// the fallback group.
func (c *Classifier) Classify(category, cropName string) Group {
	if c == nil {
		return GroupCrop
	}
	cat := strings.ToLower(strings.TrimSpace(category))
	if g, ok := c.Exact[cat]; ok {
		return g
	}
	if g, ok := matchKeywords(c.Category, cat); ok {
		return g
	}
	name := strings.ToLower(strings.TrimSpace(cropName))
	if g, ok := matchKeywords(c.Name, name); ok {
		return g
	}
	return c.Fallback
}

func matchKeywords(rules []keywordRule, value string) (Group, bool) {
	if value == "" {
		return "", false
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(value, kw) {
				return rule.Group, true
			}
		}
	}
	return "", false
}
