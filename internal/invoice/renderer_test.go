package invoice

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agriai/backend-mandi/internal/deal"
	"github.com/agriai/backend-mandi/internal/fees"
	"github.com/agriai/backend-mandi/internal/repo"
)

func saleDealFixture(t *testing.T) (repo.Deal, []deal.Line) {
	t.Helper()
	lines := []deal.Line{{
		CropID:           "crop-1",
		CropName:         "Wheat",
		Category:         "crop",
		Group:            fees.GroupCrop,
		QuantityOrdered:  100,
		PricePerUnit:     50,
		TaxRate:          18,
		CommissionRate:   2.0,
		TaxAmount:        18,
		CommissionAmount: 100,
		LineSubtotal:     5000,
		ItemTotal:        4882,
	}}
	encoded, err := json.Marshal(lines)
	require.NoError(t, err)
	return repo.Deal{
		ID:              "deal-1",
		UserID:          "u1",
		Role:            "farmer",
		Direction:       "sale",
		Status:          repo.DealStatusAccepted,
		Subtotal:        5000,
		TaxTotal:        18,
		CommissionTotal: 100,
		GrandTotal:      4882,
		Lines:           encoded,
		CreatedAt:       time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
	}, lines
}

func TestRenderSaleInvoice(t *testing.T) {
	d, lines := saleDealFixture(t)
	html, err := NewRenderer("en-IN").Render(d, lines)
	require.NoError(t, err)

	require.Contains(t, html, "deal-1")
	require.Contains(t, html, "Wheat")
	require.Contains(t, html, "2.0%")
	require.Contains(t, html, "Net receivable")
	require.Contains(t, html, "14 Mar 2025")
	require.Contains(t, html, "₹4,882.00")
}

func TestRenderPurchaseInvoiceLabel(t *testing.T) {
	d, lines := saleDealFixture(t)
	d.Direction = "purchase"
	html, err := NewRenderer("en-IN").Render(d, lines)
	require.NoError(t, err)
	require.Contains(t, html, "Grand total payable")
}

func TestRenderIndianDigitGrouping(t *testing.T) {
	d, lines := saleDealFixture(t)
	d.Subtotal = 1250000
	html, err := NewRenderer("en-IN").Render(d, lines)
	require.NoError(t, err)
	// en-IN groups by lakh: 12,50,000.
	require.Contains(t, html, "12,50,000.00")
}

func TestRenderFallsBackOnBadLocale(t *testing.T) {
	d, lines := saleDealFixture(t)
	html, err := NewRenderer("not a locale").Render(d, lines)
	require.NoError(t, err)
	require.Contains(t, html, "deal-1")
}
