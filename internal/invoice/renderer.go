package invoice

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/agriai/backend-mandi/internal/deal"
	"github.com/agriai/backend-mandi/internal/repo"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.Deal.ID}}</title></head>
<body>
<h1>Mandi invoice</h1>
<p>Deal {{.Deal.ID}} ({{.Deal.Direction}}, {{.Deal.Status}}), issued {{.IssuedAt}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Crop</th><th>Group</th><th>Qty</th><th>Unit price</th><th>Subtotal</th><th>Commission</th><th>GST</th><th>Line total</th></tr>
{{range .Lines}}
<tr>
<td>{{.CropName}}</td>
<td>{{.Group}}</td>
<td>{{.Quantity}}</td>
<td>{{.UnitPrice}}</td>
<td>{{.Subtotal}}</td>
<td>{{.Commission}} ({{.CommissionRate}})</td>
<td>{{.Tax}}</td>
<td>{{.Total}}</td>
</tr>
{{end}}
</table>
<h2>Summary</h2>
<p>Subtotal: {{.Subtotal}}</p>
<p>Commission: {{.Commission}}</p>
<p>GST: {{.Tax}}</p>
<p><strong>{{.TotalLabel}}: {{.GrandTotal}}</strong></p>
</body>
</html>
`))

// Renderer produces a printable HTML invoice from a frozen deal snapshot.
// Amounts are formatted for the configured locale, which controls digit
// grouping (lakh/crore style under en-IN).
type Renderer struct {
	printer *message.Printer
}

// NewRenderer builds a renderer for the given BCP 47 locale tag. Unparsable
// tags fall back to en-IN.
func NewRenderer(locale string) *Renderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse("en-IN")
	}
	return &Renderer{printer: message.NewPrinter(tag)}
}

type lineView struct {
	CropName       string
	Group          string
	Quantity       string
	UnitPrice      string
	Subtotal       string
	Commission     string
	CommissionRate string
	Tax            string
	Total          string
}

type invoiceView struct {
	Deal       repo.Deal
	IssuedAt   string
	Lines      []lineView
	Subtotal   string
	Commission string
	Tax        string
	GrandTotal string
	TotalLabel string
}

// Render produces the invoice HTML for a deal and its decoded lines.
func (r *Renderer) Render(d repo.Deal, lines []deal.Line) (string, error) {
	if r == nil || r.printer == nil {
		r = NewRenderer("en-IN")
	}
	view := invoiceView{
		Deal:       d,
		IssuedAt:   d.CreatedAt.Format("02 Jan 2006"),
		Subtotal:   r.money(d.Subtotal),
		Commission: r.money(d.CommissionTotal),
		Tax:        r.money(d.TaxTotal),
		GrandTotal: r.money(d.GrandTotal),
		TotalLabel: totalLabel(d.Direction),
	}
	for _, ln := range lines {
		view.Lines = append(view.Lines, lineView{
			CropName:       ln.CropName,
			Group:          string(ln.Group),
			Quantity:       r.printer.Sprint(number.Decimal(ln.QuantityOrdered)),
			UnitPrice:      r.money(ln.PricePerUnit),
			Subtotal:       r.money(ln.LineSubtotal),
			Commission:     r.money(ln.CommissionAmount),
			CommissionRate: fmt.Sprintf("%.1f%%", ln.CommissionRate),
			Tax:            r.money(ln.TaxAmount),
			Total:          r.money(ln.ItemTotal),
		})
	}
	var buf strings.Builder
	if err := invoiceTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("invoice: render: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) money(v float64) string {
	return r.printer.Sprintf("₹%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func totalLabel(direction string) string {
	if direction == "sale" {
		return "Net receivable"
	}
	return "Grand total payable"
}
