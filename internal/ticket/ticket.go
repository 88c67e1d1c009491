// Package ticket renders receipt HTML from the structured data the
// workflow engine extracts out of uploaded ticket scans, and relays new
// scans back to the engine's webhook.
package ticket

import "encoding/json"

// Result is one element of the extraction payload posted by the workflow
// engine: a single receipt wrapped in an output envelope.
type Result struct {
	Output Receipt `json:"output"`
}

// Receipt is the structured content of one ticket.
type Receipt struct {
	Merchant      Merchant    `json:"merchant"`
	Date          string      `json:"date,omitempty"`
	Time          string      `json:"time,omitempty"`
	InvoiceNumber string      `json:"invoice_number,omitempty"`
	OrderNumber   string      `json:"order_number,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	Items         []Item      `json:"items_list"`
	TotalPrice    TotalPrice  `json:"total_price"`
	Payment       Payment     `json:"payment"`
	GSTSummary    *GSTSummary `json:"gst_summary,omitempty"`
}

type Merchant struct {
	Name            string `json:"name"`
	Address         string `json:"address,omitempty"`
	Contact         string `json:"contact,omitempty"`
	Email           string `json:"email,omitempty"`
	GSTRegistration string `json:"gst_registration,omitempty"`
}

type Item struct {
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
}

// UnmarshalJSON applies the quantity default of 1 when the field is absent.
func (i *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	tmp := alias{Quantity: 1}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*i = Item(tmp)
	return nil
}

type TotalPrice struct {
	SubtotalBeforeTax float64 `json:"subtotal_before_tax"`
	Discount          float64 `json:"discount"`
	GST               float64 `json:"gst"`
	TotalAfterTax     float64 `json:"total_after_tax"`
}

type Payment struct {
	RoundingAdjustment float64 `json:"rounding_adjustment"`
	TotalPaidAmount    float64 `json:"total_paid_amount"`
	PaymentMethod      string  `json:"payment_method,omitempty"`
}

// GSTSummary fields are pointers: absent and zero mean different things on
// the rendered receipt.
type GSTSummary struct {
	TaxRate         *float64 `json:"tax_rate,omitempty"`
	AmountBeforeGST *float64 `json:"amount_before_gst,omitempty"`
}
