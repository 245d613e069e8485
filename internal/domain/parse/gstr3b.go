package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const gstr3bParserVersion = "gstr3b_v1"

var (
	g3bNumRE       = regexp.MustCompile(`([0-9]+(?:,[0-9]{3})*(?:\.[0-9]+)?)`)
	g3bSectionRE   = regexp.MustCompile(`^[0-9]+\.`)
	g3bNumOnlyRE   = regexp.MustCompile(`^[0-9,.\s]+$`)
	g3bGSTINRE     = regexp.MustCompile(`GSTIN:\s*([0-9A-Z]{15})`)
	g3bLegalRE     = regexp.MustCompile(`Legal Name:\s*(.+)`)
	g3bTradeRE     = regexp.MustCompile(`Trade Name:\s*(.+)`)
	g3bPeriodRE    = regexp.MustCompile(`For the Month of:\s*([A-Za-z]+)\s+([0-9]{4})`)
	g3bExemptRE    = regexp.MustCompile(`(?m)^Exempt Supplies\s+([0-9.,]+)\s*$`)
	g3bNilRatedRE  = regexp.MustCompile(`(?m)^Nil-Rated Supplies\s+([0-9.,]+)\s*$`)
	g3bNonGSTRE    = regexp.MustCompile(`(?m)^Non-GST Supplies\s+([0-9.,]+)\s*$`)
	g3bVerNameRE   = regexp.MustCompile(`(?m)^Name:\s*(.+)$`)
	g3bVerDesigRE  = regexp.MustCompile(`(?m)^Designation:\s*(.+)$`)
	g3bVerDateRE   = regexp.MustCompile(`(?m)^Date:\s*([0-9]{2}-[0-9]{2}-[0-9]{4})$`)
	g3bVerPlaceRE  = regexp.MustCompile(`(?m)^Place:\s*(.+)$`)
)

// ParseGstr3b fills a Gstr3b from a FORM GSTR-3B text extract. Table rows
// arrive pre-flattened by the text layer, so each section is located by its
// label line and the trailing numbers are read positionally.
func ParseGstr3b(rawText string) *Gstr3b {
	lines := mergeNumericContinuations(rawText)
	text := strings.Join(lines, "\n")

	out := &Gstr3b{
		Warnings:      []string{},
		ParserVersion: gstr3bParserVersion,
	}

	out.GSTIN = firstGroup(g3bGSTINRE, text)
	out.LegalName = firstGroup(g3bLegalRE, text)
	out.TradeName = firstGroup(g3bTradeRE, text)

	if m := g3bPeriodRE.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[2])
		if month, ok := monthFromName(m[1]); ok {
			out.Period = Period{
				Month: int(month),
				Year:  year,
				Label: fmt.Sprintf("%s %d", month.String(), year),
			}
		} else {
			out.Period = Period{Year: year}
		}
	} else {
		out.Warnings = append(out.Warnings, "period_not_found")
	}

	out.OutwardSupplies = extractSupplyBlock(lines, "(a) Outward taxable supplies", &out.Warnings)
	out.ReverseChargeInwardSupplies = extractSupplyBlock(lines, "(d) Inward supplies liable to reverse charge", &out.Warnings)

	out.InputTaxCredit = InputTaxCredit{
		FromImports:             extractTaxRow(lines, "ITC Available (import of goods/services)", "itc_imports_missing", "", &out.Warnings),
		FromISD:                 extractTaxRow(lines, "ITC from ISD", "itc_isd_missing", "", &out.Warnings),
		OnInwardSupplies:        extractTaxRow(lines, "ITC on inward supplies (other than RCM)", "itc_on_inward_missing", "", &out.Warnings),
		OnInwardSuppliesReverse: extractTaxRow(lines, "ITC on inward supplies liable to RCM", "itc_rcm_missing", "", &out.Warnings),
	}
	if vals, ok := taxRowValues(lines, "Total ITC Available"); ok {
		out.InputTaxCredit.Total = vals
	}

	out.ExemptNilNonGSTSupplies = ExemptSupplies{
		Exempt:   amountOrZero(firstGroup(g3bExemptRE, text)),
		NilRated: amountOrZero(firstGroup(g3bNilRatedRE, text)),
		NonGST:   amountOrZero(firstGroup(g3bNonGSTRE, text)),
	}

	out.TaxPayable = extractTaxRow(lines, "Tax Payable", "tax_payable_missing", "tax_payable_partial", &out.Warnings)
	out.TaxPaid = TaxPaid{
		ThroughITC: extractTaxRow(lines, "Tax Paid through ITC", "tax_paid_through_itc_missing", "tax_paid_through_itc_partial", &out.Warnings),
		InCash:     extractTaxRow(lines, "Tax Paid in Cash", "tax_paid_in_cash_missing", "tax_paid_in_cash_partial", &out.Warnings),
	}

	verText := text
	if idx := findLineContaining(lines, "Verification"); idx >= 0 {
		verText = strings.Join(lines[idx:], "\n")
	}
	out.Verification = Verification{
		Name:        firstGroup(g3bVerNameRE, verText),
		Designation: firstGroup(g3bVerDesigRE, verText),
		Date:        normalizeDateDDMMYYYY(firstGroup(g3bVerDateRE, verText)),
		Place:       firstGroup(g3bVerPlaceRE, verText),
	}

	if out.GSTIN == "" {
		out.Warnings = append(out.Warnings, "gstin_missing")
	}
	if out.Period.Month == 0 || out.Period.Year == 0 {
		out.Warnings = append(out.Warnings, "period_incomplete")
	}
	return out
}

// mergeNumericContinuations folds lines that are purely numeric back onto
// the preceding label line, undoing the text layer's column wrapping.
func mergeNumericContinuations(rawText string) []string {
	var lines []string
	for _, ln := range strings.Split(rawText, "\n") {
		t := strings.TrimSpace(ln)
		if t == "" {
			continue
		}
		if g3bNumOnlyRE.MatchString(t) && len(lines) > 0 {
			lines[len(lines)-1] = lines[len(lines)-1] + " " + t
		} else {
			lines = append(lines, t)
		}
	}
	return lines
}

// collectRowNumbers gathers numeric tokens starting at a label line,
// continuing onto wrapped lines until the next label or section begins.
func collectRowNumbers(lines []string, startIdx, needed int) []string {
	const maxLines = 10
	var nums []string
	for offset := 0; offset < maxLines; offset++ {
		idx := startIdx + offset
		if idx >= len(lines) {
			break
		}
		line := strings.TrimSpace(lines[idx])
		if offset > 0 {
			if strings.HasPrefix(line, "(") || strings.HasSuffix(line, ":") || g3bSectionRE.MatchString(line) {
				break
			}
		}
		for _, m := range g3bNumRE.FindAllStringSubmatch(line, -1) {
			nums = append(nums, m[1])
		}
		if len(nums) >= needed {
			break
		}
	}
	return nums
}

// extractSupplyBlock reads the five trailing numbers of a supply row
// (taxable value then the four heads).
func extractSupplyBlock(lines []string, label string, warnings *[]string) SupplyBlock {
	idx := findLineContaining(lines, label)
	if idx < 0 {
		*warnings = append(*warnings, label+"_not_found")
		return SupplyBlock{}
	}
	nums := collectRowNumbers(lines, idx, 5)
	if len(nums) < 5 {
		*warnings = append(*warnings, label+"_partial_parse")
		return SupplyBlock{}
	}
	tail := nums[len(nums)-5:]
	return SupplyBlock{
		TaxableValue: amountOrZero(tail[0]),
		IGST:         amountOrZero(tail[1]),
		CGST:         amountOrZero(tail[2]),
		SGST:         amountOrZero(tail[3]),
		Cess:         amountOrZero(tail[4]),
	}
}

func taxRowValues(lines []string, label string) (TaxBreakup, bool) {
	idx := findLineContaining(lines, label)
	if idx < 0 {
		return TaxBreakup{}, false
	}
	nums := collectRowNumbers(lines, idx, 4)
	if len(nums) < 4 {
		return TaxBreakup{}, false
	}
	tail := nums[len(nums)-4:]
	return TaxBreakup{
		IGST: amountOrZero(tail[0]),
		CGST: amountOrZero(tail[1]),
		SGST: amountOrZero(tail[2]),
		Cess: amountOrZero(tail[3]),
	}, true
}

// extractTaxRow reads the four trailing head amounts of a labeled row.
// missingWarn fires when the label is absent; partialWarn (when set) fires
// when the label is present but the numbers are short.
func extractTaxRow(lines []string, label, missingWarn, partialWarn string, warnings *[]string) TaxBreakup {
	idx := findLineContaining(lines, label)
	if idx < 0 {
		*warnings = append(*warnings, missingWarn)
		return TaxBreakup{}
	}
	nums := collectRowNumbers(lines, idx, 4)
	if len(nums) < 4 {
		if partialWarn != "" {
			*warnings = append(*warnings, partialWarn)
		} else {
			*warnings = append(*warnings, missingWarn)
		}
		return TaxBreakup{}
	}
	tail := nums[len(nums)-4:]
	return TaxBreakup{
		IGST: amountOrZero(tail[0]),
		CGST: amountOrZero(tail[1]),
		SGST: amountOrZero(tail[2]),
		Cess: amountOrZero(tail[3]),
	}
}

func findLineContaining(lines []string, needle string) int {
	needle = strings.ToLower(needle)
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			return i
		}
	}
	return -1
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func amountOrZero(token string) float64 {
	token = strings.ReplaceAll(strings.TrimSpace(token), ",", "")
	if token == "" {
		return 0
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return v
}
