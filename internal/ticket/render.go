package ticket

import (
	"html/template"
	"io"
)

const receiptHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Receipt</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 20px;
        }
        .receipt-container {
            max-width: 600px;
            margin: 0 auto;
            border: 1px solid #ddd;
            padding: 20px;
            border-radius: 8px;
        }
        .receipt-header, .receipt-footer {
            text-align: center;
            margin-bottom: 20px;
        }
        .receipt-header h2, .receipt-footer h3 {
            margin: 0;
        }
        .receipt-details {
            margin-bottom: 20px;
        }
        .receipt-details p {
            margin: 5px 0;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 20px;
        }
        .items-table th, .items-table td {
            border: 1px solid #ddd;
            padding: 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f2f2f2;
        }
        .total-summary {
            margin-top: 20px;
            text-align: right;
        }
        .total-summary p {
            margin: 5px 0;
        }
    </style>
</head>
<body>
    <div class="receipt-container">
        <div class="receipt-header">
            <h2>{{.Merchant.Name}}</h2>
            <p>{{.Merchant.Address}}</p>
            {{if .Merchant.Contact}}<p>Contact: {{.Merchant.Contact}}</p>{{end}}
            {{if .Merchant.Email}}<p>Email: {{.Merchant.Email}}</p>{{end}}
            {{if .Merchant.GSTRegistration}}<p>GST Registration: {{.Merchant.GSTRegistration}}</p>{{end}}
        </div>

        <div class="receipt-details">
            <p><strong>Date:</strong> {{.Date}}</p>
            <p><strong>Time:</strong> {{.Time}}</p>
            <p><strong>Invoice Number:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
            <p><strong>Currency:</strong> {{.Currency}}</p>
        </div>

        <table class="items-table">
            <thead>
                <tr>
                    <th>Item</th>
                    <th>Category</th>
                    <th>Quantity</th>
                    <th>Unit Price</th>
                    <th>Discount</th>
                    <th>Total Price</th>
                </tr>
            </thead>
            <tbody>
{{range .Items}}                <tr>
                    <td>{{.Item}}</td>
                    <td>{{.Category}}</td>
                    <td>{{.Quantity}}</td>
                    <td>{{.UnitPrice}}</td>
                    <td>{{.Discount}}</td>
                    <td>{{.Price}}</td>
                </tr>
{{end}}            </tbody>
        </table>

        <div class="total-summary">
            <p><strong>Subtotal (Before Tax):</strong> {{.TotalPrice.SubtotalBeforeTax}}</p>
            <p><strong>Discount:</strong> {{.TotalPrice.Discount}}</p>
            <p><strong>GST:</strong> {{.TotalPrice.GST}}</p>
            <p><strong>Total (After Tax):</strong> {{.TotalPrice.TotalAfterTax}}</p>
            {{if .Payment.RoundingAdjustment}}<p><strong>Rounding Adjustment:</strong> {{.Payment.RoundingAdjustment}}</p>{{end}}
            <p><strong>Total Paid Amount:</strong> {{.Payment.TotalPaidAmount}}</p>
            <p><strong>Payment Method:</strong> {{.Payment.PaymentMethod}}</p>
        </div>

        <div class="gst-summary">
            {{if .GSTSummary}}{{if .GSTSummary.TaxRate}}<p><strong>GST Rate:</strong> {{.GSTSummary.TaxRate}}%</p>{{end}}{{if .GSTSummary.AmountBeforeGST}}<p><strong>Amount Before GST:</strong> {{.GSTSummary.AmountBeforeGST}}</p>{{end}}{{end}}
        </div>

        <div class="receipt-footer">
            <h3>Thank you for your purchase!</h3>
        </div>
    </div>
</body>
</html>
`

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptHTML))

// Render writes the receipt as a standalone HTML page.
func Render(w io.Writer, r Receipt) error {
	return receiptTmpl.Execute(w, r)
}
