package recon

import (
	"fmt"
	"strings"

	"github.com/taxpilot/docparse/internal/domain/canonical"
	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

// HeadComparison compares one tax head between ITC available (2B) and ITC
// claimed (3B).
type HeadComparison struct {
	Available2B float64 `json:"available_2b"`
	Claimed3B   float64 `json:"claimed_3b"`
	Difference  float64 `json:"difference"`
	Status      string  `json:"status"`
}

// ITCOverall is the aggregate comparison across all heads.
type ITCOverall struct {
	TotalAvailable2B float64 `json:"total_available_2b"`
	TotalClaimed3B   float64 `json:"total_claimed_3b"`
	Difference       float64 `json:"difference"`
	Status           string  `json:"status"`
}

// ITCReport is the outcome of reconciling ITC available per GSTR-2B
// against ITC claimed in GSTR-3B.
type ITCReport struct {
	GSTIN          string                    `json:"gstin"`
	Period         string                    `json:"period"`
	ITCAvailable2B parse.TaxBreakup          `json:"itc_available_2b"`
	ITCClaimed3B   parse.TaxBreakup          `json:"itc_claimed_3b"`
	ByHead         map[string]HeadComparison `json:"by_head"`
	Overall        ITCOverall                `json:"overall"`
	Issues         []Issue                   `json:"issues"`
}

// itcHeads fixes the comparison and issue order.
var itcHeads = []string{"igst", "cgst", "sgst", "cess"}

// ITC2Bvs3B reconciles the ITC a taxpayer could claim (the GSTR-2B
// financials, drawn from supplier filings) against what they actually
// claimed in their GSTR-3B.
func ITC2Bvs3B(g2b, g3b *canonical.Document, tolerance float64) *ITCReport {
	issues := identityIssues(g2b, g3b, "2B", "3B")

	available := parse.TaxBreakup{
		IGST: g2b.Financials.TaxBreakup.IGST,
		CGST: g2b.Financials.TaxBreakup.CGST,
		SGST: g2b.Financials.TaxBreakup.SGST,
		Cess: g2b.Financials.TaxBreakup.Cess,
	}

	var claimed parse.TaxBreakup
	if details, ok := g3b.DocSpecific.(*canonical.Gstr3bDetails); ok {
		claimed = details.InputTaxCredit.Total
	}

	byHead := make(map[string]HeadComparison, len(itcHeads))
	for _, head := range itcHeads {
		av := headValue(available, head)
		cl := headValue(claimed, head)
		diff := money.Round2(cl - av)

		status := "match"
		if diff > tolerance {
			status = "over_claimed"
		} else if diff < -tolerance {
			status = "under_claimed"
		}

		byHead[head] = HeadComparison{
			Available2B: av,
			Claimed3B:   cl,
			Difference:  diff,
			Status:      status,
		}

		if status != "match" {
			issues = append(issues, Issue{
				Code:  fmt.Sprintf("ITC_%s_MISMATCH", strings.ToUpper(head)),
				Level: "warning",
				Message: fmt.Sprintf("%s ITC mismatch: available in 2B=%.2f, claimed in 3B=%.2f, diff=%.2f",
					strings.ToUpper(head), av, cl, diff),
			})
		}
	}

	totalAvailable := available.IGST + available.CGST + available.SGST + available.Cess
	totalClaimed := claimed.IGST + claimed.CGST + claimed.SGST + claimed.Cess
	overallDiff := money.Round2(totalClaimed - totalAvailable)

	overallStatus := "match"
	if overallDiff > tolerance {
		overallStatus = "over_claimed"
	} else if overallDiff < -tolerance {
		overallStatus = "under_claimed"
	}

	gstin := g2b.Business.GSTIN
	if gstin == "" {
		gstin = g3b.Business.GSTIN
	}
	period := g2b.Period
	if period == "" {
		period = g3b.Period
	}

	return &ITCReport{
		GSTIN:          gstin,
		Period:         period,
		ITCAvailable2B: available,
		ITCClaimed3B:   claimed,
		ByHead:         byHead,
		Overall: ITCOverall{
			TotalAvailable2B: money.Round2(totalAvailable),
			TotalClaimed3B:   money.Round2(totalClaimed),
			Difference:       overallDiff,
			Status:           overallStatus,
		},
		Issues: issues,
	}
}

func headValue(b parse.TaxBreakup, head string) float64 {
	switch head {
	case "igst":
		return b.IGST
	case "cgst":
		return b.CGST
	case "sgst":
		return b.SGST
	case "cess":
		return b.Cess
	}
	return 0
}
