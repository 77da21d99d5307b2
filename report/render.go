package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/hcp-erp/hcp-erp/internal/billing"
	"github.com/hcp-erp/hcp-erp/internal/reports"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Renderer builds the export documents and hands them to Gotenberg.
// It satisfies the renderer interfaces of the billing and reports
// modules.
type Renderer struct {
	client *Client
}

// NewRenderer constructs a Renderer.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client}
}

var templateFuncs = template.FuncMap{
	"sar":  shared.FormatSAR,
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html dir="ltr">
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #111; }
h1 { font-size: 22px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; font-size: 13px; }
th { background: #f3f4f6; }
.totals { margin-top: 20px; font-size: 14px; }
.totals div { margin: 4px 0; }
.status { text-transform: uppercase; letter-spacing: 1px; }
</style>
</head>
<body>
<h1>HCP Paints — Invoice {{.ID}}</h1>
<p>Order {{.OrderID}} · {{.Customer}}</p>
<p>Issued {{date .IssueDate}} · Due {{date .DueDate}} · <span class="status">{{.Status}}</span></p>
<table>
<tr><th>Date</th><th>Amount</th><th>Method</th><th>Reference</th></tr>
{{range .Payments}}<tr><td>{{date .Date}}</td><td>{{sar .Amount}}</td><td>{{.Method}}</td><td>{{.Reference}}</td></tr>
{{else}}<tr><td colspan="4">No payments recorded</td></tr>
{{end}}</table>
<div class="totals">
<div>Total: {{sar .Amount}}</div>
<div>Paid: {{sar .PaidAmount}}</div>
<div>Remaining: {{sar .Remaining}}</div>
</div>
</body>
</html>`))

var summaryTemplate = template.Must(template.New("summary").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html dir="ltr">
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #111; }
h1 { font-size: 22px; }
h2 { font-size: 16px; margin-top: 28px; }
table { width: 100%; border-collapse: collapse; margin-top: 8px; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; font-size: 13px; }
th { background: #f3f4f6; }
</style>
</head>
<body>
<h1>HCP Paints — Business Report</h1>
<p>Period {{.From}} to {{.To}}</p>

<h2>Monthly sales</h2>
<table>
<tr><th>Month</th><th>Sales</th><th>Orders</th><th>Customers</th></tr>
{{range .MonthlySales}}<tr><td>{{.Month}}</td><td>{{sar .Sales}}</td><td>{{.Orders}}</td><td>{{.Customers}}</td></tr>
{{end}}</table>

<h2>Sales by category</h2>
<table>
<tr><th>Category</th><th>Share</th><th>Sales</th></tr>
{{range .CategoryShares}}<tr><td>{{.Name}}</td><td>{{.Value}}%</td><td>{{sar .Sales}}</td></tr>
{{end}}</table>

<h2>Payment methods</h2>
<table>
<tr><th>Method</th><th>Amount</th><th>Share</th></tr>
{{range .PaymentMethods}}<tr><td>{{.Method}}</td><td>{{sar .Amount}}</td><td>{{.Percentage}}%</td></tr>
{{end}}</table>

<h2>Customer segments</h2>
<table>
<tr><th>Segment</th><th>Customers</th><th>Revenue</th><th>Avg order</th></tr>
{{range .CustomerSegments}}<tr><td>{{.Segment}}</td><td>{{.Count}}</td><td>{{sar .Revenue}}</td><td>{{sar .AvgOrder}}</td></tr>
{{end}}</table>

<h2>Daily sales</h2>
<table>
<tr><th>Date</th><th>Sales</th><th>Orders</th></tr>
{{range .DailySales}}<tr><td>{{.Date}}</td><td>{{sar .Sales}}</td><td>{{.Orders}}</td></tr>
{{end}}</table>
</body>
</html>`))

// RenderInvoice builds the invoice document and converts it to PDF.
func (r *Renderer) RenderInvoice(ctx context.Context, invoice billing.InvoiceView) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoice); err != nil {
		return nil, fmt.Errorf("report: build invoice html: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}

// RenderSummary builds the business report document and converts it to
// PDF.
func (r *Renderer) RenderSummary(ctx context.Context, summary reports.Summary) ([]byte, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, summary); err != nil {
		return nil, fmt.Errorf("report: build summary html: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}

var _ billing.InvoiceRenderer = (*Renderer)(nil)
var _ reports.SummaryRenderer = (*Renderer)(nil)
