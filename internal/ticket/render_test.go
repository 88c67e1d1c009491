package ticket

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() Receipt {
	return Receipt{
		Merchant: Merchant{
			Name:    "Corner Cafe",
			Address: "12 Rue Haute",
		},
		Date:          "2024-11-02",
		Time:          "12:45",
		InvoiceNumber: "INV-42",
		Currency:      "EUR",
		Items: []Item{
			{Item: "Coffee", Quantity: 1, UnitPrice: 3.5, Price: 3.5, Category: "Drinks"},
			{Item: "Cake", Quantity: 2, UnitPrice: 4, Price: 8, Category: "Food"},
		},
		TotalPrice: TotalPrice{SubtotalBeforeTax: 11.5, GST: 0.7, TotalAfterTax: 12.2},
		Payment:    Payment{TotalPaidAmount: 12.2, PaymentMethod: "card"},
	}
}

func TestRenderReceipt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReceipt()))
	out := buf.String()

	assert.Contains(t, out, "<h2>Corner Cafe</h2>")
	assert.Contains(t, out, "12 Rue Haute")
	assert.Contains(t, out, "<strong>Invoice Number:</strong> INV-42")
	assert.Contains(t, out, "<td>Coffee</td>")
	assert.Contains(t, out, "<td>Cake</td>")
	assert.Contains(t, out, "<strong>Total (After Tax):</strong> 12.2")
	assert.Contains(t, out, "Thank you for your purchase!")
}

func TestRenderSkipsEmptyOptionalLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReceipt()))
	out := buf.String()

	assert.NotContains(t, out, "Contact:")
	assert.NotContains(t, out, "GST Registration:")
	assert.NotContains(t, out, "Rounding Adjustment:")
	assert.NotContains(t, out, "GST Rate:")
}

func TestRenderOptionalLines(t *testing.T) {
	r := sampleReceipt()
	r.Merchant.Contact = "+32 2 555 0101"
	r.Merchant.Email = "hello@corner.cafe"
	r.Payment.RoundingAdjustment = 0.05
	rate := 6.0
	before := 11.5
	r.GSTSummary = &GSTSummary{TaxRate: &rate, AmountBeforeGST: &before}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Contact: +32 2 555 0101")
	assert.Contains(t, out, "Email: hello@corner.cafe")
	assert.Contains(t, out, "<strong>Rounding Adjustment:</strong> 0.05")
	assert.Contains(t, out, "<strong>GST Rate:</strong> 6%")
	assert.Contains(t, out, "<strong>Amount Before GST:</strong> 11.5")
}

func TestRenderZeroRateStillShows(t *testing.T) {
	r := sampleReceipt()
	rate := 0.0
	r.GSTSummary = &GSTSummary{TaxRate: &rate}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))

	// a present zero rate is not the same as no rate
	assert.Contains(t, buf.String(), "<strong>GST Rate:</strong> 0%")
}

func TestRenderEscapesMarkup(t *testing.T) {
	r := sampleReceipt()
	r.Merchant.Name = `<script>alert("x")</script>`

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.True(t, strings.Contains(out, "&lt;script&gt;"))
}
