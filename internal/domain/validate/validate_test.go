package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot/docparse/internal/domain/canonical"
)

func registerDoc() *canonical.Document {
	return &canonical.Document{
		SchemaVersion: canonical.SchemaVersion,
		DocType:       "sales_register",
		Financials: canonical.Financials{
			Currency:   "INR",
			Subtotal:   160000,
			TaxBreakup: canonical.Breakup{CGST: 9900, SGST: 9900, IGST: 9000},
			TaxTotal:   28800,
			GrandTotal: 188800,
		},
		Entries: []canonical.Entry{
			{EntryID: "entry-1", Amounts: canonical.Amounts{
				TaxableValue: 100000,
				TaxBreakup:   canonical.Breakup{IGST: 9000},
				Total:        109000,
			}},
			{EntryID: "entry-2", Amounts: canonical.Amounts{
				TaxableValue: 60000,
				TaxBreakup:   canonical.Breakup{CGST: 9900, SGST: 9900},
				Total:        79800,
			}},
		},
	}
}

func TestSalesRegisterClean(t *testing.T) {
	assert.Empty(t, SalesRegister(registerDoc(), DefaultTolerance))
}

func TestSalesRegisterMismatches(t *testing.T) {
	doc := registerDoc()
	doc.Financials.Subtotal = 150000
	doc.Financials.TaxBreakup.CGST = 8000
	doc.Entries[0].Amounts.Total = 120000
	doc.Financials.GrandTotal = 200000

	issues := SalesRegister(doc, DefaultTolerance)

	codes := make([]string, 0, len(issues))
	for _, issue := range issues {
		assert.Equal(t, "warning", issue.Level)
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, "ENTRY_TOTAL_MISMATCH")
	assert.Contains(t, codes, "SUBTOTAL_MISMATCH")
	assert.Contains(t, codes, "CGST_TOTAL_MISMATCH")
	assert.Contains(t, codes, "GRAND_TOTAL_MISMATCH")

	for _, issue := range issues {
		if issue.Code == "ENTRY_TOTAL_MISMATCH" {
			assert.Equal(t, "entry-1", issue.Meta["entry_id"])
		}
	}
}

func TestGstr3bClean(t *testing.T) {
	doc := &canonical.Document{
		DocType: "gstr3b",
		Financials: canonical.Financials{
			Subtotal:   520000,
			TaxBreakup: canonical.Breakup{CGST: 6800, SGST: 6800, IGST: 25000},
			TaxTotal:   38600,
			GrandTotal: 558600,
		},
		Entries: []canonical.Entry{
			{EntryID: "gstr3b-outward-supplies", Amounts: canonical.Amounts{
				TaxableValue: 500000,
				TaxBreakup:   canonical.Breakup{CGST: 5000, SGST: 5000, IGST: 25000},
				Total:        535000,
			}},
			{EntryID: "gstr3b-reverse-charge", Amounts: canonical.Amounts{
				TaxableValue: 20000,
				TaxBreakup:   canonical.Breakup{CGST: 1800, SGST: 1800},
				Total:        23600,
			}},
		},
	}
	assert.Empty(t, Gstr3b(doc, DefaultTolerance))
}

func TestGstr3bTaxTotalMismatch(t *testing.T) {
	doc := &canonical.Document{
		DocType: "gstr3b",
		Financials: canonical.Financials{
			Subtotal: 1000,
			TaxTotal: 500,
			// grand total consistent with the (wrong) tax_total
			GrandTotal: 1500,
		},
		Entries: []canonical.Entry{
			{EntryID: "gstr3b-outward-supplies", Amounts: canonical.Amounts{
				TaxableValue: 1000,
				TaxBreakup:   canonical.Breakup{CGST: 90, SGST: 90},
				Total:        1180,
			}},
		},
	}

	issues := Gstr3b(doc, DefaultTolerance)
	require.Len(t, issues, 1)
	assert.Equal(t, "TAX_TOTAL_MISMATCH", issues[0].Code)
}

func TestGstr2bPartialSections(t *testing.T) {
	// summary covers more than the single b2b entry
	doc := &canonical.Document{
		DocType: "gstr2b",
		Financials: canonical.Financials{
			Subtotal:   500000,
			TaxBreakup: canonical.Breakup{IGST: 50000},
			TaxTotal:   50000,
			GrandTotal: 550000,
		},
		Entries: []canonical.Entry{
			{EntryID: "gstr2b-entry-1", Amounts: canonical.Amounts{
				TaxableValue: 300000,
				TaxBreakup:   canonical.Breakup{IGST: 30000},
				Total:        330000,
			}},
		},
	}

	issues := Gstr2b(doc, DefaultTolerance)
	require.Len(t, issues, 1)
	assert.Equal(t, "SUMMARY_ENTRIES_SUBTOTAL_MISMATCH", issues[0].Code)
	assert.Equal(t, 500000.0, issues[0].Meta["summary_subtotal"])
	assert.Equal(t, 300000.0, issues[0].Meta["b2b_subtotal"])
}

func TestGstr2bClean(t *testing.T) {
	doc := &canonical.Document{
		DocType: "gstr2b",
		Financials: canonical.Financials{
			Subtotal:   300000,
			TaxBreakup: canonical.Breakup{IGST: 30000},
			TaxTotal:   30000,
			GrandTotal: 330000,
		},
		Entries: []canonical.Entry{
			{EntryID: "gstr2b-entry-1", Amounts: canonical.Amounts{
				TaxableValue: 300000,
				TaxBreakup:   canonical.Breakup{IGST: 30000},
				Total:        330000,
			}},
		},
	}
	assert.Empty(t, Gstr2b(doc, DefaultTolerance))
}
