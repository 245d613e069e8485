package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleGstr3b = `FORM GSTR-3B
GSTIN: 27ABCDE1234F2Z5
Legal Name: ABC TRADERS PRIVATE LIMITED
Trade Name: ABC TRADERS
For the Month of: November 2025

3.1 Details of Outward Supplies and inward supplies liable to reverse charge
(a) Outward taxable supplies  500000.00  25000.00  5000.00  5000.00  0.00
(d) Inward supplies liable to reverse charge  20000.00  0.00  1800.00  1800.00  0.00

4. Eligible ITC
ITC Available (import of goods/services)  1000.00  0.00  0.00  0.00
ITC from ISD  0.00  0.00  0.00  0.00
ITC on inward supplies (other than RCM)  9000.00  9900.00  9900.00  0.00
ITC on inward supplies liable to RCM  0.00  1800.00  1800.00  0.00
Total ITC Available  10000.00  11700.00  11700.00  0.00

5. Exempt, nil and non-GST inward supplies
Exempt Supplies 15000.00
Nil-Rated Supplies 5000.00
Non-GST Supplies 2000.00

6.1 Payment of tax
Tax Payable  25000.00  5000.00  5000.00  0.00
Tax Paid through ITC  20000.00  4000.00  4000.00  0.00
Tax Paid in Cash  5000.00  1000.00  1000.00  0.00

Verification
Name: Ramesh Kumar
Designation: Director
Date: 10-12-2025
Place: Mumbai
`

func TestParseGstr3b(t *testing.T) {
	g := ParseGstr3b(sampleGstr3b)

	assert.Equal(t, "27ABCDE1234F2Z5", g.GSTIN)
	assert.Equal(t, "ABC TRADERS PRIVATE LIMITED", g.LegalName)
	assert.Equal(t, "ABC TRADERS", g.TradeName)
	assert.Equal(t, 11, g.Period.Month)
	assert.Equal(t, 2025, g.Period.Year)
	assert.Equal(t, "November 2025", g.Period.Label)

	assert.InDelta(t, 500000.0, g.OutwardSupplies.TaxableValue, 0.001)
	assert.InDelta(t, 25000.0, g.OutwardSupplies.IGST, 0.001)
	assert.InDelta(t, 5000.0, g.OutwardSupplies.CGST, 0.001)
	assert.InDelta(t, 20000.0, g.ReverseChargeInwardSupplies.TaxableValue, 0.001)

	assert.InDelta(t, 9000.0, g.InputTaxCredit.OnInwardSupplies.IGST, 0.001)
	assert.InDelta(t, 9900.0, g.InputTaxCredit.OnInwardSupplies.CGST, 0.001)
	assert.InDelta(t, 10000.0, g.InputTaxCredit.Total.IGST, 0.001)
	assert.InDelta(t, 11700.0, g.InputTaxCredit.Total.CGST, 0.001)

	assert.InDelta(t, 15000.0, g.ExemptNilNonGSTSupplies.Exempt, 0.001)
	assert.InDelta(t, 5000.0, g.ExemptNilNonGSTSupplies.NilRated, 0.001)
	assert.InDelta(t, 2000.0, g.ExemptNilNonGSTSupplies.NonGST, 0.001)

	assert.InDelta(t, 5000.0, g.TaxPayable.CGST, 0.001)
	assert.InDelta(t, 20000.0, g.TaxPaid.ThroughITC.IGST, 0.001)
	assert.InDelta(t, 1000.0, g.TaxPaid.InCash.CGST, 0.001)

	assert.Equal(t, "Ramesh Kumar", g.Verification.Name)
	assert.Equal(t, "Director", g.Verification.Designation)
	assert.Equal(t, "2025-12-10", g.Verification.Date)
	assert.Equal(t, "Mumbai", g.Verification.Place)

	assert.Empty(t, g.Warnings)
	assert.Equal(t, "gstr3b_v1", g.ParserVersion)
}

func TestParseGstr3bWrappedNumbers(t *testing.T) {
	// Text extraction sometimes pushes the row's numbers onto their own
	// line; they must fold back onto the label.
	text := `GSTIN: 27ABCDE1234F2Z5
For the Month of: March 2024
(a) Outward taxable supplies
160000.00 9000.00 9900.00 9900.00 0.00
`
	g := ParseGstr3b(text)
	assert.InDelta(t, 160000.0, g.OutwardSupplies.TaxableValue, 0.001)
	assert.InDelta(t, 9000.0, g.OutwardSupplies.IGST, 0.001)
	assert.InDelta(t, 9900.0, g.OutwardSupplies.SGST, 0.001)
}

func TestParseGstr3bMissingSections(t *testing.T) {
	g := ParseGstr3b("Some unrelated text\n")
	assert.Contains(t, g.Warnings, "period_not_found")
	assert.Contains(t, g.Warnings, "gstin_missing")
	assert.Contains(t, g.Warnings, "period_incomplete")
	assert.Contains(t, g.Warnings, "(a) Outward taxable supplies_not_found")
	assert.Zero(t, g.OutwardSupplies.TaxableValue)
}
