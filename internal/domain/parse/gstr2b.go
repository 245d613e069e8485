package parse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/taxpilot/docparse/pkg/money"
)

const gstr2bParserVersion = "gstr2b_v1"

// DecodeGstr2b parses a GSTR-2B JSON export. The portal emits these as
// structured JSON, so there is no text-rule path; decode, then backfill
// the summary and period label when the export leaves them out.
func DecodeGstr2b(data []byte) (*Gstr2b, error) {
	var g Gstr2b
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode gstr2b json: %w", err)
	}
	if g.DocType != "" && !strings.EqualFold(g.DocType, "gstr2b") {
		return nil, fmt.Errorf("unexpected doc_type %q in gstr2b payload", g.DocType)
	}
	if g.Warnings == nil {
		g.Warnings = []string{}
	}
	if g.Meta.ParserVersion == "" {
		g.Meta.ParserVersion = gstr2bParserVersion
	}
	if g.Period.Label == "" && g.Period.Month >= 1 && g.Period.Month <= 12 && g.Period.Year > 0 {
		g.Period.Label = fmt.Sprintf("%s %d", time.Month(g.Period.Month).String(), g.Period.Year)
	}
	if summaryEmpty(g.Summary) && len(g.B2B) > 0 {
		g.Summary = summarizeB2B(g.B2B)
	}
	return &g, nil
}

func summaryEmpty(s Gstr2bSummary) bool {
	return s.TotalTaxableValue == 0 && s.TotalIGST == 0 && s.TotalCGST == 0 &&
		s.TotalSGST == 0 && s.TotalCess == 0
}

func summarizeB2B(rows []Gstr2bRow) Gstr2bSummary {
	var s Gstr2bSummary
	for _, r := range rows {
		s.TotalTaxableValue += r.TaxableValue
		s.TotalIGST += r.IGST
		s.TotalCGST += r.CGST
		s.TotalSGST += r.SGST
		s.TotalCess += r.Cess
	}
	s.TotalTaxableValue = money.Round2(s.TotalTaxableValue)
	s.TotalIGST = money.Round2(s.TotalIGST)
	s.TotalCGST = money.Round2(s.TotalCGST)
	s.TotalSGST = money.Round2(s.TotalSGST)
	s.TotalCess = money.Round2(s.TotalCess)
	return s
}
