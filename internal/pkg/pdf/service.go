// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service generates order invoices. The invoice renders from the
// order's snapshot fields only, so a regenerated invoice always shows
// what the customer actually bought.
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	CompanyName   string
	Order         *order.Order
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderCode),
		InvoiceDate:   time.Now().Format("January 2, 2006"),
		CompanyName:   s.config.App.CompanyName,
		Order:         o,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) generateHTML(data InvoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; color: #333; margin: 40px; }
  h1 { font-size: 22px; }
  .meta { margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th, td { border-bottom: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background: #f5f5f5; }
  .amount { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 4px 8px; }
  .grand { font-weight: bold; border-top: 2px solid #333; }
</style>
</head>
<body>
  <h1>{{.CompanyName}}</h1>
  <div class="meta">
    <p><strong>Invoice:</strong> {{.InvoiceNumber}}<br>
       <strong>Date:</strong> {{.InvoiceDate}}<br>
       <strong>Order:</strong> {{.Order.OrderCode}}</p>
    <p><strong>Bill to:</strong><br>
       {{.Order.CustomerName}}<br>
       {{.Order.ShippingAddress}}<br>
       {{.Order.CustomerEmail}}</p>
  </div>
  <table>
    <tr><th>SKU</th><th>Item</th><th class="amount">Unit price</th><th class="amount">Qty</th><th class="amount">Total</th></tr>
    {{range .Order.Items}}
    <tr>
      <td>{{.SKU}}</td>
      <td>{{.ProductName}} {{.VariantName}}</td>
      <td class="amount">{{.UnitPrice}}</td>
      <td class="amount">{{.Quantity}}</td>
      <td class="amount">{{.LineTotal}}</td>
    </tr>
    {{end}}
  </table>
  <table class="totals">
    <tr><td>Subtotal</td><td class="amount">{{.Order.Subtotal}}</td></tr>
    <tr><td>Discount</td><td class="amount">-{{.Order.DiscountTotal}}</td></tr>
    <tr><td>Shipping</td><td class="amount">{{.Order.ShippingFee}}</td></tr>
    <tr class="grand"><td>Grand total</td><td class="amount">{{.Order.GrandTotal}}</td></tr>
  </table>
</body>
</html>`
