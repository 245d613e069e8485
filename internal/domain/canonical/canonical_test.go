package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

func f64(v float64) *float64 { return &v }

func TestFromInvoice(t *testing.T) {
	inv := &parse.Invoice{
		InvoiceNumber: &parse.Field{Value: "INV-2024/0042", Confidence: 0.9},
		Date:          &parse.Field{Value: "2024-03-15", Confidence: 0.9},
		Seller:        parse.Party{Name: "Acme Industries", GSTIN: "27AAACA1234A1Z5"},
		Buyer:         parse.Party{Name: "Bharat Traders", GSTIN: "29AAACB5678B1Z4"},
		Subtotal:      f64(500),
		Total:         f64(590),
		Taxes: []parse.TaxLine{
			{Type: "CGST", Rate: 9, Amount: 45},
			{Type: "SGST", Rate: 9, Amount: 45},
		},
		LineItems: []parse.LineItem{
			{Desc: "Widget A", Qty: 2, UnitPrice: 150, Amount: 300},
		},
		Warnings: []string{},
	}

	doc := FromInvoice(inv, "invoice")

	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "invoice", doc.DocType)
	assert.Equal(t, "invoice-inv-2024-0042", doc.DocID)
	assert.Equal(t, "2024-03-15", doc.DocDate)
	assert.Equal(t, "27", doc.Business.StateCode)
	require.NotNil(t, doc.Parties.Counterparty)
	assert.Equal(t, "29", doc.Parties.Counterparty.StateCode)

	assert.Equal(t, "INR", doc.Financials.Currency)
	assert.Equal(t, 500.0, doc.Financials.Subtotal)
	assert.Equal(t, 45.0, doc.Financials.TaxBreakup.CGST)
	assert.Equal(t, 45.0, doc.Financials.TaxBreakup.SGST)
	assert.Equal(t, 90.0, doc.Financials.TaxTotal)
	assert.Equal(t, 590.0, doc.Financials.GrandTotal)

	require.Len(t, doc.Entries, 1)
	entry := doc.Entries[0]
	assert.Equal(t, "main-invoice", entry.EntryID)
	assert.Equal(t, "invoice", entry.EntryType)
	assert.Equal(t, "INV-2024/0042", entry.EntryNumber)
	assert.Equal(t, 500.0, entry.Amounts.TaxableValue)
	assert.Equal(t, 590.0, entry.Amounts.Total)
	require.Len(t, entry.LineItems, 1)
	assert.Equal(t, "Widget A", entry.LineItems[0].Description)
}

func purchaseRegisterFixture() *parse.Register {
	return &parse.Register{
		Kind:          parse.PurchaseRegister,
		BusinessGSTIN: "27ABCDE1234F2Z5",
		Period:        &parse.Period{Month: 3, Year: 2024, Label: "March 2024"},
		Entries: []parse.RegisterEntry{
			{InvoiceNumber: "PINV-881", InvoiceDate: "2024-03-02", PartyName: "Mega Suppliers Ltd",
				PartyGSTIN: "29AAACM1234A1Z5", TaxableValue: 100000, CGST: 9000, SGST: 9000, TotalValue: 118000},
			{InvoiceNumber: "PINV-882", InvoiceDate: "2024-03-09", PartyName: "Mega Suppliers Ltd",
				PartyGSTIN: "29AAACM1234A1Z5", TaxableValue: 50000, IGST: 9000, TotalValue: 59000},
			{InvoiceNumber: "PINV-883", InvoiceDate: "2024-03-21", PartyName: "Karnataka Mills",
				PartyGSTIN: "29AAACK9876B1Z3", TaxableValue: 10000, CGST: 900, SGST: 900, TotalValue: 11800},
		},
		Warnings:      []string{},
		ParserVersion: "purchase_register_v1",
	}
}

func TestFromRegisterPurchase(t *testing.T) {
	doc := FromRegister(purchaseRegisterFixture())

	assert.Equal(t, "purchase_register", doc.DocType)
	assert.Equal(t, "purchase_register-march-2024", doc.DocID)
	assert.Equal(t, "March 2024", doc.Period)
	assert.Equal(t, "27", doc.Business.StateCode)

	assert.Equal(t, 160000.0, doc.Financials.Subtotal)
	assert.Equal(t, 9900.0, doc.Financials.TaxBreakup.CGST)
	assert.Equal(t, 9900.0, doc.Financials.TaxBreakup.SGST)
	assert.Equal(t, 9000.0, doc.Financials.TaxBreakup.IGST)
	assert.Equal(t, 28800.0, doc.Financials.TaxTotal)
	assert.Equal(t, 188800.0, doc.Financials.GrandTotal)

	require.Len(t, doc.Entries, 3)
	assert.Equal(t, "entry-1", doc.Entries[0].EntryID)
	assert.Equal(t, "register_entry", doc.Entries[0].EntryType)
	require.NotNil(t, doc.Entries[0].Party)
	assert.Equal(t, "Mega Suppliers Ltd", doc.Entries[0].Party.Name)
	assert.Equal(t, "29", doc.Entries[0].Party.StateCode)
	assert.Equal(t, "REGULAR", doc.Entries[0].DocSpecific.InvoiceType)

	details, ok := doc.DocSpecific.(*RegisterDetails)
	require.True(t, ok)
	assert.Equal(t, 3, details.TotalInvoices)
	assert.Equal(t, 2, details.TotalParties)
}

func TestFromGstr3b(t *testing.T) {
	g := &parse.Gstr3b{
		GSTIN:     "27ABCDE1234F2Z5",
		LegalName: "ABC TRADERS PRIVATE LIMITED",
		Period:    parse.Period{Month: 11, Year: 2025, Label: "November 2025"},
		OutwardSupplies: parse.SupplyBlock{
			TaxableValue: 500000, IGST: 25000, CGST: 5000, SGST: 5000,
		},
		ReverseChargeInwardSupplies: parse.SupplyBlock{
			TaxableValue: 20000, CGST: 1800, SGST: 1800,
		},
		InputTaxCredit: parse.InputTaxCredit{
			Total: parse.TaxBreakup{IGST: 10000, CGST: 11700, SGST: 11700},
		},
		TaxPayable:    parse.TaxBreakup{IGST: 25000, CGST: 5000, SGST: 5000},
		Warnings:      []string{},
		ParserVersion: "gstr3b_v1",
	}

	doc := FromGstr3b(g)

	assert.Equal(t, "gstr3b", doc.DocType)
	assert.Equal(t, "gstr3b-november-2025", doc.DocID)
	assert.Equal(t, "November 2025", doc.Period)
	assert.Equal(t, "ABC TRADERS PRIVATE LIMITED", doc.Business.Name)

	assert.Equal(t, 520000.0, doc.Financials.Subtotal)
	assert.Equal(t, 6800.0, doc.Financials.TaxBreakup.CGST)
	assert.Equal(t, 25000.0, doc.Financials.TaxBreakup.IGST)
	assert.Equal(t, 38600.0, doc.Financials.TaxTotal)
	assert.Equal(t, 558600.0, doc.Financials.GrandTotal)

	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "gstr3b-outward-supplies", doc.Entries[0].EntryID)
	assert.Equal(t, "OUTWARD", doc.Entries[0].EntryNumber)
	assert.Equal(t, "outward_taxable", doc.Entries[0].DocSpecific.SupplyType)
	assert.Equal(t, 535000.0, doc.Entries[0].Amounts.Total)
	assert.Equal(t, "gstr3b-reverse-charge", doc.Entries[1].EntryID)
	assert.Equal(t, "REVERSE_CHARGE", doc.Entries[1].EntryNumber)

	details, ok := doc.DocSpecific.(*Gstr3bDetails)
	require.True(t, ok)
	assert.Equal(t, "GSTR-3B", details.GstrForm)
	assert.Equal(t, 10000.0, details.InputTaxCredit.Total.IGST)
}

func TestFromGstr1(t *testing.T) {
	g := &parse.Gstr1{
		GSTIN:     "27ABCDE1234F2Z5",
		LegalName: "ABC TRADERS PRIVATE LIMITED",
		Period:    parse.Period{Month: 3, Year: 2024, Label: "March 2024"},
		B2BInvoices: []parse.B2BInvoice{
			{InvoiceNumber: "INV-001", InvoiceDate: "2024-03-02", CounterpartyGSTIN: "29AAACM1234A1Z5",
				InvoiceType: "REGULAR", TaxableValue: 100000, IGST: 18000},
			{InvoiceNumber: "INV-002", InvoiceDate: "2024-03-12", CounterpartyGSTIN: "27AAACB5678B1Z4",
				InvoiceType: "REGULAR", TaxableValue: 60000, CGST: 5400, SGST: 5400},
		},
		Warnings:      []string{},
		ParserVersion: "gstr1_v1",
	}

	doc := FromGstr1(g)

	assert.Equal(t, "gstr1", doc.DocType)
	assert.Equal(t, 160000.0, doc.Financials.Subtotal)
	assert.Equal(t, 28800.0, doc.Financials.TaxTotal)

	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "gstr-entry-1", doc.Entries[0].EntryID)
	assert.Equal(t, "INV-001", doc.Entries[0].EntryNumber)
	assert.Equal(t, 118000.0, doc.Entries[0].Amounts.Total)

	details, ok := doc.DocSpecific.(*Gstr1Details)
	require.True(t, ok)
	assert.Equal(t, "GSTR-1", details.GstrForm)
	assert.Equal(t, 2, details.B2BCount)
}

func TestFromGstr2b(t *testing.T) {
	g := &parse.Gstr2b{
		DocType:   "gstr2b",
		GSTIN:     "27ABCDE1234F2Z5",
		LegalName: "ABC TRADERS PRIVATE LIMITED",
		Period:    parse.Period{Month: 11, Year: 2025, Label: "November 2025"},
		Summary: parse.Gstr2bSummary{
			TotalTaxableValue: 300000, TotalIGST: 10000, TotalCGST: 11700, TotalSGST: 11700,
		},
		B2B: []parse.Gstr2bRow{
			{SupplierGSTIN: "29AAACM1234A1Z5", SupplierName: "Mega Suppliers Ltd",
				InvoiceNumber: "PINV-881", InvoiceDate: "2025-11-02",
				TaxableValue: 300000, IGST: 10000, CGST: 11700, SGST: 11700,
				ITCAvailability: "Y"},
		},
		Warnings: []string{},
	}
	g.Meta.ParserVersion = "gstr2b_v1"

	doc := FromGstr2b(g)

	assert.Equal(t, "gstr2b", doc.DocType)
	assert.Equal(t, "gstr2b-november-2025", doc.DocID)
	assert.Equal(t, "November 2025", doc.Period)
	assert.Equal(t, 300000.0, doc.Financials.Subtotal)
	assert.Equal(t, 33400.0, doc.Financials.TaxTotal)

	require.Len(t, doc.Entries, 1)
	entry := doc.Entries[0]
	assert.Equal(t, "gstr2b-entry-1", entry.EntryID)
	assert.Equal(t, "gstr2b_invoice", entry.EntryType)
	// no invoice_value in the row, so total is reconstructed
	assert.Equal(t, 333400.0, entry.Amounts.Total)
	assert.Equal(t, "b2b", entry.DocSpecific.Section)
	assert.Equal(t, "Y", entry.DocSpecific.ITCAvailability)
}

func TestFromFallback(t *testing.T) {
	stmt := &parse.BankStatement{
		BankName: "FIRST NATIONAL BANK",
		Warnings: []string{"Parsed fewer than 10 transactions"},
	}

	doc := Normalize("bank_statement", stmt)

	assert.Equal(t, "bank_statement", doc.DocType)
	assert.Equal(t, "bank_statement", doc.Metadata.SourceFormat)
	assert.Contains(t, doc.Metadata.Warnings, "fallback_canonical_format")
	assert.Contains(t, doc.Metadata.Warnings, "Parsed fewer than 10 transactions")
	assert.Empty(t, doc.Entries)
	assert.Equal(t, stmt, doc.DocSpecific)

	// deterministic doc id for identical input
	again := Normalize("bank_statement", stmt)
	assert.Equal(t, doc.DocID, again.DocID)
}

func TestNormalizeRouting(t *testing.T) {
	t.Run("register by kind", func(t *testing.T) {
		doc := Normalize("purchase_register", purchaseRegisterFixture())
		assert.Equal(t, "purchase_register", doc.DocType)
		assert.Len(t, doc.Entries, 3)
	})

	t.Run("mismatched record falls back", func(t *testing.T) {
		doc := Normalize("gstr3b", &parse.Invoice{})
		assert.Equal(t, "gstr3b", doc.DocType)
		assert.Contains(t, doc.Metadata.Warnings, "fallback_canonical_format")
	})

	t.Run("unknown type falls back", func(t *testing.T) {
		doc := Normalize("receipt", &parse.Receipt{Warnings: []string{}})
		assert.Equal(t, "receipt", doc.DocType)
		assert.Contains(t, doc.Metadata.Warnings, "fallback_canonical_format")
	})
}

func TestBreakupFromTaxes(t *testing.T) {
	b := breakupFromTaxes([]parse.TaxLine{
		{Type: "CGST 9%", Amount: 45},
		{Type: "SGST 9%", Amount: 45},
		{Type: "IGST", Rate: 18}, // amount absent, rate stands in
		{Type: "CESS", Amount: 5},
		{Type: "TDS", Amount: 10},
	})
	assert.Equal(t, 45.0, b.CGST)
	assert.Equal(t, 45.0, b.SGST)
	assert.Equal(t, 18.0, b.IGST)
	assert.Equal(t, 5.0, b.Cess)
	assert.Equal(t, 10.0, b.TDS)
	assert.Equal(t, 113.0, b.Sum()+b.TDS)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2024-03-15", normalizeDate("2024-03-15"))
	assert.Equal(t, "2024-03-15", normalizeDate("2024-03-15T00:00:00"))
	assert.Equal(t, "2024-03-15", normalizeDate("15-03-2024"))
	assert.Equal(t, "2024-03-15", normalizeDate("15/03/2024"))
	assert.Equal(t, "", normalizeDate(""))
	assert.Equal(t, "not-a-date", normalizeDate("not-a-date"))
}

func TestFromRegisterGenerated(t *testing.T) {
	gen := money.NewTestDataGenerator(7)
	rows := gen.RegisterRows(25, 2024, 3)

	reg := &parse.Register{
		Kind:          parse.SalesRegister,
		BusinessGSTIN: gen.GSTIN(),
		Entries:       make([]parse.RegisterEntry, len(rows)),
	}
	var taxables, taxes, grands []float64
	for i, r := range rows {
		reg.Entries[i] = parse.RegisterEntry{
			InvoiceNumber: r.InvoiceNumber,
			InvoiceDate:   r.InvoiceDate,
			PartyName:     r.PartyName,
			PartyGSTIN:    r.PartyGSTIN,
			TaxableValue:  r.TaxableValue,
			IGST:          r.IGST,
			CGST:          r.CGST,
			SGST:          r.SGST,
			TotalValue:    r.Total,
		}
		taxables = append(taxables, r.TaxableValue)
		taxes = append(taxes, r.IGST, r.CGST, r.SGST)
		grands = append(grands, r.Total)
	}

	doc := FromRegister(reg)

	require.Len(t, doc.Entries, 25)
	assert.InDelta(t, money.Sum2(taxables...), doc.Financials.Subtotal, 1e-9)
	assert.InDelta(t, money.Sum2(taxes...), doc.Financials.TaxTotal, 1e-9)
	assert.InDelta(t, money.Sum2(grands...), doc.Financials.GrandTotal, 1e-9)
	assert.Equal(t, 25, doc.DocSpecific.(*RegisterDetails).TotalInvoices)
}
