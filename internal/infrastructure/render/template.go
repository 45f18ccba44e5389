package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/rentroll/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// invoiceFuncMap holds the formatting helpers the invoice template uses
var invoiceFuncMap = template.FuncMap{
	"formatMoney": formatMoney,
	"formatDate":  formatDate,
	"formatMonth": formatMonth,
}

// formatMoney renders a decimal as $1,234.56
func formatMoney(d decimal.Decimal) string {
	negative := d.IsNegative()
	s := d.Abs().StringFixed(2)

	// Insert thousands separators into the integer part
	dot := len(s) - 3
	intPart := s[:dot]
	var buf bytes.Buffer
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			buf.WriteByte(',')
		}
		buf.WriteRune(ch)
	}

	out := "$" + buf.String() + s[dot:]
	if negative {
		out = "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func formatMonth(t time.Time) string {
	return t.Format("January 2006")
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(invoiceFuncMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Snapshot.LotCode}} {{formatMonth .StatementDate}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  .header { display: flex; justify-content: space-between; margin-bottom: 24px; }
  .business { font-size: 14px; font-weight: bold; }
  .address { white-space: pre-line; color: #555; }
  h1 { font-size: 18px; margin: 0 0 4px 0; }
  table.charges { width: 100%; border-collapse: collapse; margin: 16px 0; }
  table.charges th { text-align: left; border-bottom: 2px solid #222; padding: 6px 4px; }
  table.charges td { border-bottom: 1px solid #ddd; padding: 6px 4px; }
  td.amount, th.amount { text-align: right; }
  table.summary { margin-left: auto; border-collapse: collapse; }
  table.summary td { padding: 4px 8px; }
  table.summary tr.total td { border-top: 2px solid #222; font-weight: bold; font-size: 14px; }
  .dates { margin-top: 16px; }
  .notes { margin-top: 24px; color: #555; font-size: 11px; }
</style>
</head>
<body>
<div class="header">
  <div>
    <div class="business">{{.Snapshot.BusinessName}}</div>
    <div class="address">{{.Snapshot.BusinessAddress}}</div>
  </div>
  <div>
    <h1>Statement for {{formatMonth .StatementDate}}</h1>
    <div>Invoice date: {{formatDate .InvoiceDate}}</div>
  </div>
</div>

<div>
  <strong>{{.Snapshot.TenantName}}</strong><br>
  Lot {{.Snapshot.LotCode}}{{if .Snapshot.LotAddress}}<br>{{.Snapshot.LotAddress}}{{end}}
</div>

<table class="charges">
  <tr><th>Charge</th><th class="amount">Amount</th></tr>
  {{range .Snapshot.Lines}}
  <tr><td>{{.Description}}</td><td class="amount">{{formatMoney .Amount}}</td></tr>
  {{end}}
</table>

<table class="summary">
  <tr><td>Current charges</td><td class="amount">{{formatMoney .Snapshot.CurrentCharges}}</td></tr>
  <tr><td>Previous balance</td><td class="amount">{{formatMoney .Snapshot.PreviousBalance}}</td></tr>
  <tr class="total"><td>Total due</td><td class="amount">{{formatMoney .Snapshot.TotalDue}}</td></tr>
</table>

<div class="dates">
  Payment due by <strong>{{formatDate .Snapshot.DueDate}}</strong>.
  A late fee applies to balances unpaid after {{formatDate .Snapshot.OverdueDate}}.
</div>

{{if .Snapshot.Notes}}
<div class="notes">
  {{range .Snapshot.Notes}}<div>{{.}}</div>{{end}}
</div>
{{end}}
</body>
</html>
`))

// buildInvoiceHTML renders the statement document for one invoice
func buildInvoiceHTML(invoice *invoicing.Invoice) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoice); err != nil {
		return "", err
	}
	return buf.String(), nil
}
