package fees

import "testing"

func TestClassifyExactCategory(t *testing.T) {
	c := DefaultClassifier()
	cases := map[string]Group{
		"Food Crops":            GroupCrop,
		"Fruits and Vegetables": GroupFruitVeg,
		"Masalas":               GroupMasala,
		"  masalas ":            GroupMasala,
	}
	for category, want := range cases {
		if got := c.Classify(category, ""); got != want {
			t.Fatalf("category %q: expected %s, got %s", category, want, got)
		}
	}
}

func TestClassifyCategoryKeywords(t *testing.T) {
	c := DefaultClassifier()
	if got := c.Classify("Garam Masala Mix", ""); got != GroupMasala {
		t.Fatalf("expected masala, got %s", got)
	}
	if got := c.Classify("Fresh Vegetables", ""); got != GroupFruitVeg {
		t.Fatalf("expected fruitveg, got %s", got)
	}
	if got := c.Classify("Cash Crops", ""); got != GroupCrop {
		t.Fatalf("expected crop, got %s", got)
	}
}

func TestClassifyCropNameFallback(t *testing.T) {
	c := DefaultClassifier()
	if got := c.Classify("", "Mango fruit"); got != GroupFruitVeg {
		t.Fatalf("expected fruitveg from crop name, got %s", got)
	}
	if got := c.Classify("Miscellaneous", "Turmeric masala"); got != GroupMasala {
		t.Fatalf("expected masala from crop name, got %s", got)
	}
}

func TestClassifyTransliteratedKeywords(t *testing.T) {
	c := DefaultClassifier()
	cases := map[string]Group{
		"sabzi":  GroupFruitVeg,
		"pazham": GroupFruitVeg,
		"masale": GroupMasala,
		"fasal":  GroupCrop,
		"payir":  GroupCrop,
	}
	for name, want := range cases {
		if got := c.Classify("", name); got != want {
			t.Fatalf("name %q: expected %s, got %s", name, want, got)
		}
	}
}

func TestClassifyDefaultsToCrop(t *testing.T) {
	c := DefaultClassifier()
	if got := c.Classify("", ""); got != GroupCrop {
		t.Fatalf("expected crop fallback, got %s", got)
	}
	if got := c.Classify("Unknown", "Widget"); got != GroupCrop {
		t.Fatalf("expected crop fallback, got %s", got)
	}
}
