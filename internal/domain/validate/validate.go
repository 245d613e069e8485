// Package validate checks canonical documents for internal consistency.
// Validators recompute totals from the entries and compare them against
// the document-level financials block. Everything is a warning: source
// documents legitimately contain sections the entries do not capture.
package validate

import (
	"fmt"

	"github.com/taxpilot/docparse/internal/domain/canonical"
	"github.com/taxpilot/docparse/pkg/money"
)

// DefaultTolerance is the comparison window for totals, in currency units.
const DefaultTolerance = 1.0

// Issue is one structured validation finding.
type Issue struct {
	Code    string         `json:"code"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
}

// entrySums aggregates the amounts of all entries and appends an
// ENTRY_TOTAL_MISMATCH issue for each entry whose total disagrees with its
// own taxable value plus taxes.
type entrySums struct {
	subtotal   float64
	cgst       float64
	sgst       float64
	igst       float64
	cess       float64
	grandTotal float64
}

func sumEntries(doc *canonical.Document, tolerance float64, issues *[]Issue) entrySums {
	var sums entrySums
	for _, e := range doc.Entries {
		a := e.Amounts
		sums.subtotal += a.TaxableValue
		sums.cgst += a.TaxBreakup.CGST
		sums.sgst += a.TaxBreakup.SGST
		sums.igst += a.TaxBreakup.IGST
		sums.cess += a.TaxBreakup.Cess
		sums.grandTotal += a.Total

		expected := a.TaxableValue + a.TaxBreakup.Sum()
		if absDiff(a.Total, expected) > tolerance {
			*issues = append(*issues, Issue{
				Code:  "ENTRY_TOTAL_MISMATCH",
				Level: "warning",
				Message: fmt.Sprintf("Entry %s total %s != taxable+tax %s",
					e.EntryID, fmtAmount(a.Total), fmtAmount(expected)),
				Meta: map[string]any{"entry_id": e.EntryID},
			})
		}
	}
	return sums
}

// Gstr3b validates a canonical GSTR-3B document: the summary entries must
// add up to the document financials.
func Gstr3b(doc *canonical.Document, tolerance float64) []Issue {
	issues := []Issue{}
	sums := sumEntries(doc, tolerance, &issues)
	fin := doc.Financials

	if absDiff(fin.Subtotal, sums.subtotal) > tolerance {
		issues = append(issues, Issue{
			Code:  "SUBTOTAL_MISMATCH",
			Level: "warning",
			Message: fmt.Sprintf("Financials subtotal %s != sum entries %s",
				fmtAmount(fin.Subtotal), fmtAmount(sums.subtotal)),
			Meta: map[string]any{},
		})
	}

	taxesCalc := sums.cgst + sums.sgst + sums.igst + sums.cess
	if absDiff(fin.TaxTotal, taxesCalc) > tolerance {
		issues = append(issues, Issue{
			Code:  "TAX_TOTAL_MISMATCH",
			Level: "warning",
			Message: fmt.Sprintf("Financials tax_total %s != sum entry taxes %s",
				fmtAmount(fin.TaxTotal), fmtAmount(taxesCalc)),
			Meta: map[string]any{},
		})
	}

	issues = appendGrandTotalCheck(issues, fin, tolerance)
	return issues
}

// Gstr2b validates a canonical GSTR-2B document. The financials block
// comes from the export's summary, which may cover more sections than the
// B2B entries, so the subtotal comparison gets its own code.
func Gstr2b(doc *canonical.Document, tolerance float64) []Issue {
	issues := []Issue{}
	sums := sumEntries(doc, tolerance, &issues)
	fin := doc.Financials

	taxesFromBreakup := fin.TaxBreakup.Sum()
	if absDiff(fin.TaxTotal, taxesFromBreakup) > tolerance {
		issues = append(issues, Issue{
			Code:  "TAX_TOTAL_MISMATCH",
			Level: "warning",
			Message: fmt.Sprintf("Financials tax_total %s != sum of tax_breakup %s",
				fmtAmount(fin.TaxTotal), fmtAmount(taxesFromBreakup)),
			Meta: map[string]any{},
		})
	}

	issues = appendGrandTotalCheck(issues, fin, tolerance)

	if absDiff(fin.Subtotal, sums.subtotal) > tolerance {
		issues = append(issues, Issue{
			Code:  "SUMMARY_ENTRIES_SUBTOTAL_MISMATCH",
			Level: "warning",
			Message: "GSTR-2B subtotal from summary does not match sum of B2B entries; " +
				"other sections may be present (b2bur/imps/cdnr).",
			Meta: map[string]any{
				"summary_subtotal": fin.Subtotal,
				"b2b_subtotal":     money.Round2(sums.subtotal),
			},
		})
	}

	return issues
}

// SalesRegister validates a canonical sales (or purchase) register
// document, comparing every aggregate field against the entry sums.
func SalesRegister(doc *canonical.Document, tolerance float64) []Issue {
	issues := []Issue{}
	sums := sumEntries(doc, tolerance, &issues)
	fin := doc.Financials

	if absDiff(fin.Subtotal, sums.subtotal) > tolerance {
		issues = append(issues, Issue{
			Code:  "SUBTOTAL_MISMATCH",
			Level: "warning",
			Message: fmt.Sprintf("Financials subtotal %s != sum entries %s",
				fmtAmount(fin.Subtotal), fmtAmount(sums.subtotal)),
			Meta: map[string]any{},
		})
	}

	headChecks := []struct {
		code  string
		canon float64
		calc  float64
		head  string
	}{
		{"CGST_TOTAL_MISMATCH", fin.TaxBreakup.CGST, sums.cgst, "CGST"},
		{"SGST_TOTAL_MISMATCH", fin.TaxBreakup.SGST, sums.sgst, "SGST"},
		{"IGST_TOTAL_MISMATCH", fin.TaxBreakup.IGST, sums.igst, "IGST"},
		{"CESS_TOTAL_MISMATCH", fin.TaxBreakup.Cess, sums.cess, "CESS"},
	}
	for _, check := range headChecks {
		if absDiff(check.canon, check.calc) > tolerance {
			issues = append(issues, Issue{
				Code:  check.code,
				Level: "warning",
				Message: fmt.Sprintf("Financials %s %s != sum entries %s",
					check.head, fmtAmount(check.canon), fmtAmount(check.calc)),
				Meta: map[string]any{},
			})
		}
	}

	taxesCalc := sums.cgst + sums.sgst + sums.igst + sums.cess
	if absDiff(fin.TaxTotal, taxesCalc) > tolerance {
		issues = append(issues, Issue{
			Code:  "TAX_TOTAL_MISMATCH",
			Level: "warning",
			Message: fmt.Sprintf("Financials tax_total %s != sum taxes %s",
				fmtAmount(fin.TaxTotal), fmtAmount(taxesCalc)),
			Meta: map[string]any{},
		})
	}

	issues = appendGrandTotalCheck(issues, fin, tolerance)
	return issues
}

func appendGrandTotalCheck(issues []Issue, fin canonical.Financials, tolerance float64) []Issue {
	expected := fin.Subtotal + fin.TaxTotal
	if absDiff(fin.GrandTotal, expected) > tolerance {
		issues = append(issues, Issue{
			Code:  "GRAND_TOTAL_MISMATCH",
			Level: "warning",
			Message: fmt.Sprintf("Financials grand_total %s != subtotal+tax_total %s",
				fmtAmount(fin.GrandTotal), fmtAmount(expected)),
			Meta: map[string]any{},
		})
	}
	return issues
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

func fmtAmount(v float64) string {
	return fmt.Sprintf("%.2f", money.Round2(v))
}
