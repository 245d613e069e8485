package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGstr2bJSON = `{
  "doc_type": "gstr2b",
  "gstin": "27ABCDE1234F2Z5",
  "legal_name": "ABC TRADERS PRIVATE LIMITED",
  "trade_name": "ABC TRADERS",
  "period": {"month": 11, "year": 2025, "label": "November 2025"},
  "summary": {
    "total_taxable_value": 160000.0,
    "total_igst": 9000.0,
    "total_cgst": 9900.0,
    "total_sgst": 9900.0,
    "total_cess": 0.0
  },
  "b2b": [
    {
      "supplier_gstin": "29FGHIJ5678K2Z3",
      "supplier_name": "Mega Suppliers Ltd",
      "invoice_number": "PINV-881",
      "invoice_date": "2025-11-03",
      "invoice_value": 109000.0,
      "place_of_supply": "29-Karnataka",
      "taxable_value": 100000.0,
      "igst": 9000.0,
      "cgst": 0.0,
      "sgst": 0.0,
      "cess": 0.0,
      "itc_availability": "Y"
    }
  ],
  "warnings": [],
  "meta": {"parser_version": "gstr2b_v1"}
}`

func TestDecodeGstr2b(t *testing.T) {
	g, err := DecodeGstr2b([]byte(sampleGstr2bJSON))
	require.NoError(t, err)

	assert.Equal(t, "27ABCDE1234F2Z5", g.GSTIN)
	assert.Equal(t, "November 2025", g.Period.Label)
	assert.InDelta(t, 160000.0, g.Summary.TotalTaxableValue, 0.001)

	require.Len(t, g.B2B, 1)
	row := g.B2B[0]
	assert.Equal(t, "PINV-881", row.InvoiceNumber)
	assert.Equal(t, "29FGHIJ5678K2Z3", row.SupplierGSTIN)
	assert.InDelta(t, 100000.0, row.TaxableValue, 0.001)
	assert.Equal(t, "gstr2b_v1", g.Meta.ParserVersion)
}

func TestDecodeGstr2bBackfills(t *testing.T) {
	payload := `{
	  "doc_type": "gstr2b",
	  "gstin": "27ABCDE1234F2Z5",
	  "period": {"month": 3, "year": 2024},
	  "b2b": [
	    {"invoice_number": "A-1", "taxable_value": 100.0, "igst": 18.0},
	    {"invoice_number": "A-2", "taxable_value": 200.0, "cgst": 18.0, "sgst": 18.0}
	  ]
	}`
	g, err := DecodeGstr2b([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "March 2024", g.Period.Label)
	assert.InDelta(t, 300.0, g.Summary.TotalTaxableValue, 0.001)
	assert.InDelta(t, 18.0, g.Summary.TotalIGST, 0.001)
	assert.InDelta(t, 18.0, g.Summary.TotalCGST, 0.001)
	assert.Equal(t, "gstr2b_v1", g.Meta.ParserVersion)
	assert.NotNil(t, g.Warnings)
}

func TestDecodeGstr2bRejects(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		_, err := DecodeGstr2b([]byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("wrong doc type", func(t *testing.T) {
		_, err := DecodeGstr2b([]byte(`{"doc_type": "gstr3b"}`))
		assert.Error(t, err)
	})
}
