package recon

import (
	"github.com/taxpilot/docparse/internal/domain/canonical"
	"github.com/taxpilot/docparse/pkg/money"
)

// SideTotals aggregates one side of the sales-vs-return comparison.
type SideTotals struct {
	TaxableValue float64 `json:"taxable_value"`
	IGST         float64 `json:"igst"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	Total        float64 `json:"total"`
}

// InvoiceRef identifies an invoice present on only one side.
type InvoiceRef struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date,omitempty"`
	TaxableValue  float64 `json:"taxable_value"`
	Total         float64 `json:"total"`
}

// InvoiceValues is the per-side breakdown inside a value mismatch.
type InvoiceValues struct {
	TaxableValue float64 `json:"taxable_value"`
	IGST         float64 `json:"igst"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	Total        float64 `json:"total"`
}

// ValueMismatch is an invoice found on both sides with diverging values.
type ValueMismatch struct {
	InvoiceNumber      string        `json:"invoice_number"`
	InvoiceDate        string        `json:"invoice_date,omitempty"`
	SalesRegisterValue float64       `json:"sales_register_value"`
	Gstr1Value         float64       `json:"gstr1_value"`
	Difference         float64       `json:"difference"`
	SalesRegister      InvoiceValues `json:"sales_register"`
	Gstr1              InvoiceValues `json:"gstr1"`
}

// SalesTotalsPair holds both sides' aggregates.
type SalesTotalsPair struct {
	SalesRegister SideTotals `json:"sales_register"`
	Gstr1         SideTotals `json:"gstr1"`
}

// SalesReport is the outcome of reconciling a sales register against the
// GSTR-1 filed for the same period.
type SalesReport struct {
	Status                 string          `json:"status"`
	Totals                 SalesTotalsPair `json:"totals"`
	Difference             SideTotals      `json:"difference"`
	MissingInGstr1         []InvoiceRef    `json:"missing_in_gstr1"`
	MissingInSalesRegister []InvoiceRef    `json:"missing_in_sales_register"`
	ValueMismatches        []ValueMismatch `json:"value_mismatches"`
	Issues                 []Issue         `json:"issues"`
}

// SalesVsGstr1 reconciles a canonical sales register against a canonical
// GSTR-1. A register total above the return total means turnover was
// under-reported in the filing.
func SalesVsGstr1(sr, g1 *canonical.Document, tolerance float64) *SalesReport {
	srTotals := sideTotals(sr.Entries)
	g1Totals := sideTotals(g1.Entries)

	diff := SideTotals{
		TaxableValue: money.Round2(srTotals.TaxableValue - g1Totals.TaxableValue),
		IGST:         money.Round2(srTotals.IGST - g1Totals.IGST),
		CGST:         money.Round2(srTotals.CGST - g1Totals.CGST),
		SGST:         money.Round2(srTotals.SGST - g1Totals.SGST),
		Total:        money.Round2(srTotals.Total - g1Totals.Total),
	}

	status := "matched"
	if diff.Total > tolerance {
		status = "turnover_underreported"
	} else if diff.Total < -tolerance {
		status = "turnover_overreported"
	}

	srMap, srOrder := entryMap(sr.Entries)
	g1Map, g1Order := entryMap(g1.Entries)

	missingInGstr1 := []InvoiceRef{}
	missingInSalesRegister := []InvoiceRef{}
	valueMismatches := []ValueMismatch{}

	for _, key := range srOrder {
		srEntry := srMap[key]
		g1Entry, ok := g1Map[key]
		if !ok {
			missingInGstr1 = append(missingInGstr1, invoiceRef(srEntry))
			continue
		}
		srTotal := money.Round2(entryTotal(srEntry))
		g1Total := money.Round2(entryTotal(g1Entry))
		srTaxable := srEntry.Amounts.TaxableValue
		g1Taxable := g1Entry.Amounts.TaxableValue

		if absDiff(srTotal, g1Total) > tolerance || absDiff(srTaxable, g1Taxable) > tolerance {
			valueMismatches = append(valueMismatches, ValueMismatch{
				InvoiceNumber:      srEntry.EntryNumber,
				InvoiceDate:        srEntry.EntryDate,
				SalesRegisterValue: srTotal,
				Gstr1Value:         g1Total,
				Difference:         money.Round2(srTotal - g1Total),
				SalesRegister:      invoiceValues(srEntry, srTotal),
				Gstr1:              invoiceValues(g1Entry, g1Total),
			})
		}
	}
	for _, key := range g1Order {
		if _, ok := srMap[key]; !ok {
			missingInSalesRegister = append(missingInSalesRegister, invoiceRef(g1Map[key]))
		}
	}

	return &SalesReport{
		Status:                 status,
		Totals:                 SalesTotalsPair{SalesRegister: srTotals, Gstr1: g1Totals},
		Difference:             diff,
		MissingInGstr1:         missingInGstr1,
		MissingInSalesRegister: missingInSalesRegister,
		ValueMismatches:        valueMismatches,
		Issues:                 identityIssues(sr, g1, "sales_register", "gstr1"),
	}
}

func sideTotals(entries []canonical.Entry) SideTotals {
	var t SideTotals
	for _, e := range entries {
		t.TaxableValue += e.Amounts.TaxableValue
		t.IGST += e.Amounts.TaxBreakup.IGST
		t.CGST += e.Amounts.TaxBreakup.CGST
		t.SGST += e.Amounts.TaxBreakup.SGST
		t.Total += entryTotal(e)
	}
	t.TaxableValue = money.Round2(t.TaxableValue)
	t.IGST = money.Round2(t.IGST)
	t.CGST = money.Round2(t.CGST)
	t.SGST = money.Round2(t.SGST)
	t.Total = money.Round2(t.Total)
	return t
}

// entryMap keys entries by invoice key, remembering insertion order so
// report lists stay deterministic.
func entryMap(entries []canonical.Entry) (map[string]canonical.Entry, []string) {
	m := make(map[string]canonical.Entry, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		key := invoiceKey(e)
		if key == "" {
			continue
		}
		if _, seen := m[key]; !seen {
			order = append(order, key)
		}
		m[key] = e
	}
	return m, order
}

func invoiceRef(e canonical.Entry) InvoiceRef {
	return InvoiceRef{
		InvoiceNumber: e.EntryNumber,
		InvoiceDate:   e.EntryDate,
		TaxableValue:  e.Amounts.TaxableValue,
		Total:         money.Round2(entryTotal(e)),
	}
}

func invoiceValues(e canonical.Entry, total float64) InvoiceValues {
	return InvoiceValues{
		TaxableValue: e.Amounts.TaxableValue,
		IGST:         e.Amounts.TaxBreakup.IGST,
		CGST:         e.Amounts.TaxBreakup.CGST,
		SGST:         e.Amounts.TaxBreakup.SGST,
		Total:        total,
	}
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
