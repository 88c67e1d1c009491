package ticket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultUnmarshal(t *testing.T) {
	payload := `[{"output": {
		"merchant": {"name": "Corner Cafe", "gst_registration": "GST-123"},
		"date": "2024-11-02",
		"currency": "EUR",
		"items_list": [
			{"item": "Coffee", "price": 3.5, "category": "Drinks"},
			{"item": "Cake", "quantity": 2, "unit_price": 4.0, "price": 8.0, "category": "Food"}
		],
		"total_price": {"subtotal_before_tax": 11.5, "total_after_tax": 12.2},
		"payment": {"total_paid_amount": 12.2, "payment_method": "card"}
	}}]`

	var results []Result
	require.NoError(t, json.Unmarshal([]byte(payload), &results))
	require.Len(t, results, 1)

	r := results[0].Output
	assert.Equal(t, "Corner Cafe", r.Merchant.Name)
	assert.Equal(t, "GST-123", r.Merchant.GSTRegistration)
	require.Len(t, r.Items, 2)
	assert.Equal(t, 1, r.Items[0].Quantity, "quantity defaults to 1 when absent")
	assert.Equal(t, 2, r.Items[1].Quantity)
	assert.Equal(t, 12.2, r.Payment.TotalPaidAmount)
	assert.Nil(t, r.GSTSummary)
}

func TestGSTSummaryDistinguishesAbsentFromZero(t *testing.T) {
	var withZero Receipt
	require.NoError(t, json.Unmarshal([]byte(`{
		"merchant": {"name": "x"},
		"items_list": [],
		"total_price": {"subtotal_before_tax": 0, "total_after_tax": 0},
		"payment": {"total_paid_amount": 0},
		"gst_summary": {"tax_rate": 0}
	}`), &withZero))
	require.NotNil(t, withZero.GSTSummary)
	require.NotNil(t, withZero.GSTSummary.TaxRate)
	assert.Equal(t, 0.0, *withZero.GSTSummary.TaxRate)
	assert.Nil(t, withZero.GSTSummary.AmountBeforeGST)
}
