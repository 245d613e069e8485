package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGstr1 = `FORM GSTR-1
Details of outward supplies of goods or services
GSTIN: 27ABCDE1234F2Z5
Legal Name: ABC TRADERS PRIVATE LIMITED
Trade Name: ABC TRADERS
For the Month of: November 2025

4A. B2B Invoices - Supplies to registered persons
GSTIN of Recipient  Invoice Number  Invoice Date  Invoice Value  Place of Supply
29FGHIJ5678K2Z3  INV-001  05-11-2025  118000.00
27-Maharashtra  N  REGULAR
100000.00  18000.00  0.00  0.00  0.00
29LMNOP9012Q3Z4  INV-002  12-11-2025  70800.00
29-Karnataka  N  REGULAR
60000.00  0.00  5400.00  5400.00  0.00
5. B2C (Large) Invoices
`

func TestParseGstr1(t *testing.T) {
	g := ParseGstr1(sampleGstr1)

	assert.Equal(t, "27ABCDE1234F2Z5", g.GSTIN)
	assert.Equal(t, "ABC TRADERS PRIVATE LIMITED", g.LegalName)
	assert.Equal(t, 11, g.Period.Month)
	assert.Equal(t, 2025, g.Period.Year)
	assert.Equal(t, "November 2025", g.Period.Label)

	require.Len(t, g.B2BInvoices, 2)

	first := g.B2BInvoices[0]
	assert.Equal(t, "INV-001", first.InvoiceNumber)
	assert.Equal(t, "2025-11-05", first.InvoiceDate)
	assert.Equal(t, "29FGHIJ5678K2Z3", first.CounterpartyGSTIN)
	assert.Equal(t, "27-Maharashtra", first.PlaceOfSupply)
	assert.False(t, first.ReverseCharge)
	assert.Equal(t, "REGULAR", first.InvoiceType)
	assert.InDelta(t, 100000.0, first.TaxableValue, 0.001)
	assert.InDelta(t, 18000.0, first.IGST, 0.001)

	second := g.B2BInvoices[1]
	assert.Equal(t, "INV-002", second.InvoiceNumber)
	assert.InDelta(t, 60000.0, second.TaxableValue, 0.001)
	assert.InDelta(t, 5400.0, second.CGST, 0.001)
	assert.InDelta(t, 5400.0, second.SGST, 0.001)

	assert.InDelta(t, 160000.0, Gstr1OutwardTotal(g), 0.001)
	assert.Empty(t, g.Warnings)
}

func TestParseGstr1MissingB2B(t *testing.T) {
	g := ParseGstr1("GSTIN: 27ABCDE1234F2Z5\nFor the Month of: March 2024\nNothing else here\n")
	assert.Contains(t, g.Warnings, "b2b_section_not_found")
	assert.Empty(t, g.B2BInvoices)
}

func TestParseGstr1PartialNumbers(t *testing.T) {
	text := `GSTIN: 27ABCDE1234F2Z5
For the Month of: March 2024
4A. B2B Invoices
GSTIN of Recipient  Invoice Number  Invoice Date
29FGHIJ5678K2Z3  INV-009  01-03-2024
`
	g := ParseGstr1(text)
	require.Len(t, g.B2BInvoices, 1)
	assert.Equal(t, "INV-009", g.B2BInvoices[0].InvoiceNumber)
	assert.Zero(t, g.B2BInvoices[0].TaxableValue)

	found := false
	for _, w := range g.Warnings {
		if len(w) > 26 && w[:26] == "b2b_numeric_partial_parse:" {
			found = true
		}
	}
	assert.True(t, found, "expected partial-parse warning, got %v", g.Warnings)
}
