package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `ACME INDUSTRIES PVT LTD
Invoice No: INV-2024-0042
Invoice Date: 15-03-2024
Seller GSTIN: 27ABCDE1234F1Z5
Buyer GSTIN: 29FGHIJ5678K2Z3
Widget A - 2 x 150.00 = 300.00
Widget B - 1 x 200.00 = 200.00
Subtotal: 500.00
CGST 9%: 45.00
SGST 9%: 45.00
Total: 590.00
`

func TestParseInvoice(t *testing.T) {
	inv := ParseInvoice(sampleInvoice)

	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "INV-2024-0042", inv.InvoiceNumber.Value)
	assert.InDelta(t, 0.9, inv.InvoiceNumber.Confidence, 0.001)

	require.NotNil(t, inv.Date)
	assert.Equal(t, "2024-03-15", inv.Date.Value)

	assert.Equal(t, "27ABCDE1234F1Z5", inv.Seller.GSTIN)
	assert.Equal(t, "29FGHIJ5678K2Z3", inv.Buyer.GSTIN)

	// No usable subtotal label match, so it comes from the line items.
	require.NotNil(t, inv.Subtotal)
	assert.InDelta(t, 500.0, *inv.Subtotal, 0.001)
	require.NotNil(t, inv.Total)
	assert.InDelta(t, 590.0, *inv.Total, 0.001)

	require.Len(t, inv.Taxes, 2)
	assert.Equal(t, "CGST", inv.Taxes[0].Type)
	assert.InDelta(t, 9.0, inv.Taxes[0].Rate, 0.001)
	assert.InDelta(t, 45.0, inv.Taxes[0].Amount, 0.001)

	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, "Widget A", inv.LineItems[0].Desc)
	assert.InDelta(t, 2.0, inv.LineItems[0].Qty, 0.001)
	assert.InDelta(t, 300.0, inv.LineItems[0].Amount, 0.001)
}

func TestParseInvoiceBackfills(t *testing.T) {
	t.Run("subtotal from line items", func(t *testing.T) {
		inv := ParseInvoice("Invoice No: INV-777\nItem A - 1 x 100.00 = 100.00\nItem B - 2 x 50.00 = 100.00\n")
		require.NotNil(t, inv.Subtotal)
		assert.InDelta(t, 200.0, *inv.Subtotal, 0.001)
	})

	t.Run("total from subtotal plus taxes", func(t *testing.T) {
		inv := ParseInvoice("Invoice No: INV-778\nItem A - 1 x 1000.00 = 1000.00\nIGST 18%: 180.00\n")
		require.NotNil(t, inv.Total)
		assert.InDelta(t, 1180.0, *inv.Total, 0.001)
	})

	t.Run("alpha-only invoice number flagged", func(t *testing.T) {
		inv := ParseInvoice("Invoice No: DRAFT\nTotal: 100.00\n")
		assert.Nil(t, inv.InvoiceNumber)
		assert.Contains(t, inv.Warnings, "invoice_number_low_confidence")
	})
}

func TestApplyInvoiceFallbacks(t *testing.T) {
	raw := `ACME SUPPLIES
Tax Invoice
Invoice Number
INV/2024/99
Bill Date
15 March 2024
Grand Total 1180.00
`
	inv := ParseInvoice(raw)
	require.Nil(t, inv.InvoiceNumber)
	ApplyInvoiceFallbacks(inv, raw)

	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "INV/2024/99", inv.InvoiceNumber.Value)
	assert.InDelta(t, 0.55, inv.InvoiceNumber.Confidence, 0.001)
	assert.Contains(t, inv.Warnings, "invoice_number_from_fallback_regex")

	require.NotNil(t, inv.Date)
	assert.Equal(t, "2024-03-15", inv.Date.Value)
	assert.Contains(t, inv.Warnings, "invoice_date_from_fallback_regex")

	require.NotNil(t, inv.Total)
	assert.InDelta(t, 1180.0, *inv.Total, 0.001)
	assert.Contains(t, inv.Warnings, "total_from_fallback_regex")
}

func TestEvaluateInvoiceQuality(t *testing.T) {
	t.Run("complete invoice is usable", func(t *testing.T) {
		inv := ParseInvoice(sampleInvoice)
		q := EvaluateInvoiceQuality(inv)
		assert.Equal(t, 8, q.Score)
		assert.True(t, q.IsUsable)
		assert.Empty(t, q.Issues)
	})

	t.Run("empty invoice lists everything missing", func(t *testing.T) {
		q := EvaluateInvoiceQuality(&Invoice{})
		assert.Zero(t, q.Score)
		assert.False(t, q.IsUsable)
		assert.Contains(t, q.Issues, "missing_invoice_number")
		assert.Contains(t, q.Issues, "missing_date")
		assert.Contains(t, q.Issues, "missing_totals")
	})
}

func TestParseGSTInvoice(t *testing.T) {
	inv := ParseGSTInvoice(sampleInvoice)
	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "INV-2024-0042", inv.InvoiceNumber.Value)
	assert.Equal(t, "27ABCDE1234F1Z5", inv.Seller.GSTIN)
	assert.NotContains(t, inv.Warnings, "GSTIN not found")

	t.Run("missing gstin warned", func(t *testing.T) {
		inv := ParseGSTInvoice("Invoice No: INV-55-2024\nTotal: 100.00\n")
		assert.Contains(t, inv.Warnings, "GSTIN not found")
	})
}
