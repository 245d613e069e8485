package recon

import (
	"github.com/taxpilot/docparse/internal/domain/canonical"
	"github.com/taxpilot/docparse/pkg/money"
)

// ITCHeads carries input tax credit per head. Cess is excluded from the
// purchase comparison because most registers do not track it.
type ITCHeads struct {
	IGST  float64 `json:"igst"`
	CGST  float64 `json:"cgst"`
	SGST  float64 `json:"sgst"`
	Total float64 `json:"total"`
}

// PurchaseITCPair holds both sides' ITC aggregates.
type PurchaseITCPair struct {
	PurchaseRegister ITCHeads `json:"purchase_register"`
	Gstr3b           ITCHeads `json:"gstr3b"`
}

// PurchaseITCReport is the outcome of comparing the ITC implied by a
// purchase register against the ITC claimed in GSTR-3B.
type PurchaseITCReport struct {
	Totals     PurchaseITCPair `json:"totals"`
	Difference ITCHeads        `json:"difference"`
	Status     string          `json:"status"`
	Issues     []Issue         `json:"issues"`
}

// PurchaseVsGstr3bITC reconciles a canonical purchase register against a
// canonical GSTR-3B. Register taxes above the claimed ITC mean credit was
// left unclaimed; below means it was over-claimed.
func PurchaseVsGstr3bITC(pr, g3b *canonical.Document, tolerance float64) *PurchaseITCReport {
	var igst, cgst, sgst float64
	for _, e := range pr.Entries {
		igst += e.Amounts.TaxBreakup.IGST
		cgst += e.Amounts.TaxBreakup.CGST
		sgst += e.Amounts.TaxBreakup.SGST
	}
	prITC := ITCHeads{
		IGST:  money.Round2(igst),
		CGST:  money.Round2(cgst),
		SGST:  money.Round2(sgst),
		Total: money.Round2(igst + cgst + sgst),
	}

	var claimed ITCHeads
	if details, ok := g3b.DocSpecific.(*canonical.Gstr3bDetails); ok {
		claimed = ITCHeads{
			IGST: money.Round2(details.InputTaxCredit.Total.IGST),
			CGST: money.Round2(details.InputTaxCredit.Total.CGST),
			SGST: money.Round2(details.InputTaxCredit.Total.SGST),
		}
		claimed.Total = money.Round2(claimed.IGST + claimed.CGST + claimed.SGST)
	}

	diff := ITCHeads{
		IGST: money.Round2(prITC.IGST - claimed.IGST),
		CGST: money.Round2(prITC.CGST - claimed.CGST),
		SGST: money.Round2(prITC.SGST - claimed.SGST),
	}
	diff.Total = money.Round2(diff.IGST + diff.CGST + diff.SGST)

	status := "matched"
	if diff.Total < -tolerance {
		status = "itc_overclaimed"
	} else if diff.Total > tolerance {
		status = "itc_underclaimed"
	}

	return &PurchaseITCReport{
		Totals:     PurchaseITCPair{PurchaseRegister: prITC, Gstr3b: claimed},
		Difference: diff,
		Status:     status,
		Issues:     identityIssues(pr, g3b, "purchase_register", "gstr3b"),
	}
}
