package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGstr(t *testing.T) {
	text := `FORM GSTR-3B
Period: 03-2024
Legal Name: Acme Traders
GSTIN: 27ABCDE1234F1Z5
Turnover: 5,00,000.00
Taxable Value: 450000.00
IGST: 40000.00
CGST: 20000.00
SGST: 20000.00
HSN: 8471
Place of Supply: 27
Reverse Charge: No
`
	g := ParseGstr(text)

	require.NotNil(t, g.GstrForm)
	assert.Equal(t, "GSTR-3B", g.GstrForm.Value)
	require.NotNil(t, g.Period)
	assert.Equal(t, "03-2024", g.Period.Value)
	require.NotNil(t, g.GSTIN)
	assert.Equal(t, "27ABCDE1234F1Z5", g.GSTIN.Value)
	require.NotNil(t, g.TaxableValue)

	require.Len(t, g.Taxes, 3)
	assert.Equal(t, "IGST", g.Taxes[0].Type)
	assert.InDelta(t, 40000.0, g.Taxes[0].Amount, 0.001)

	assert.Equal(t, []string{"8471"}, g.HSNCodes)
	require.NotNil(t, g.PlaceOfSupply)
	assert.Equal(t, "27", g.PlaceOfSupply.Value)
	require.NotNil(t, g.ReverseCharge)
	assert.Equal(t, "NO", g.ReverseCharge.Value)
}

func TestCleanInvoiceRefs(t *testing.T) {
	refs := []GstrInvoiceRef{
		{InvoiceNumber: "INV-001"},
		{InvoiceNumber: "In1"},            // too short
		{InvoiceNumber: "Invoice"},        // captured label
		{InvoiceNumber: "TaxInvoice"},     // OCR smear, keep the tail
		{InvoiceNumber: "INV-001"},        // duplicate
		{InvoiceNumber: "INV-002"},
	}
	cleaned := cleanInvoiceRefs(refs)
	require.Len(t, cleaned, 3)
	assert.Equal(t, "INV-001", cleaned[0].InvoiceNumber)
	assert.Equal(t, "nvoice", cleaned[1].InvoiceNumber)
	assert.Equal(t, "INV-002", cleaned[2].InvoiceNumber)
}

func TestGstrQualityScore(t *testing.T) {
	t.Run("rich parse", func(t *testing.T) {
		g := &Gstr{
			GstrForm:     &Field{Value: "GSTR-1"},
			Period:       &Field{Value: "03-2024"},
			Turnover:     &Field{Value: "500000"},
			TaxableValue: &Field{Value: "450000"},
			Taxes:        []TaxLine{{Type: "IGST", Amount: 1}, {Type: "CGST", Amount: 2}},
			Invoices:     []GstrInvoiceRef{{InvoiceNumber: "INV-001"}},
		}
		assert.Equal(t, 9, GstrQualityScore(g))
	})

	t.Run("empty parse", func(t *testing.T) {
		assert.Zero(t, GstrQualityScore(&Gstr{}))
	})
}

func TestGstrInvoiceRefsJSONKey(t *testing.T) {
	g := Gstr{Invoices: []GstrInvoiceRef{{InvoiceNumber: "INV-9"}}}

	data, err := json.Marshal(g)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"invoices":[{"invoice_number":"INV-9"}]`)
	assert.NotContains(t, string(data), `"Invoices"`)
}
