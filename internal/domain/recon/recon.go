// Package recon cross-checks pairs of canonical documents for
// tax-reconciliation purposes. Three engines exist: sales register vs
// GSTR-1, purchase register ITC vs GSTR-3B, and GSTR-2B vs GSTR-3B ITC.
// Mismatches are expected output, never errors; only identity conflicts
// (GSTIN/period) are flagged at error level, and even then the comparison
// proceeds.
package recon

import (
	"fmt"
	"strings"

	"github.com/taxpilot/docparse/internal/domain/canonical"
)

// DefaultTolerance is the matching window for amount comparisons across
// all three engines, in currency units.
const DefaultTolerance = 1.0

// Issue is one structured reconciliation finding.
type Issue struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// identityIssues compares the GSTIN and period of two documents. A
// disagreement is an error-level issue but never stops the comparison.
func identityIssues(a, b *canonical.Document, labelA, labelB string) []Issue {
	issues := []Issue{}
	if a.Business.GSTIN != b.Business.GSTIN {
		issues = append(issues, Issue{
			Code:  "GSTIN_MISMATCH",
			Level: "error",
			Message: fmt.Sprintf("GSTIN mismatch: %s=%s, %s=%s",
				labelA, a.Business.GSTIN, labelB, b.Business.GSTIN),
		})
	}
	if a.Period != b.Period {
		issues = append(issues, Issue{
			Code:  "PERIOD_MISMATCH",
			Level: "error",
			Message: fmt.Sprintf("Period mismatch: %s='%s', %s='%s'",
				labelA, a.Period, labelB, b.Period),
		})
	}
	return issues
}

// invoiceKey builds a matching key for an entry: the invoice number
// normalized for OCR noise, with the date appended when known.
func invoiceKey(e canonical.Entry) string {
	num := strings.ToUpper(strings.TrimSpace(e.EntryNumber))
	num = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(num)
	if num == "" {
		return ""
	}
	if e.EntryDate != "" {
		return num + "|" + e.EntryDate
	}
	return num
}

// entryTotal is the entry's total value, reconstructed from taxable value
// plus taxes when the source did not carry one.
func entryTotal(e canonical.Entry) float64 {
	if e.Amounts.Total != 0 {
		return e.Amounts.Total
	}
	return e.Amounts.TaxableValue + e.Amounts.TaxBreakup.Sum()
}
