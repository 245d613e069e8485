package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	gstrFormRE   = regexp.MustCompile(`(?i)\bGSTR[-\s]?([1-9][A-Z]?)\b`)
	gstrPeriodRE = regexp.MustCompile(`(?i)\b(?:Period|Month|Year)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{4}|[A-Z]{3}[-/.][0-9]{4})\b`)
	gstrBizRE    = regexp.MustCompile(`(?i)\b(?:Business\s*Name|Legal\s*Name|Company\s*Name)\s*[:\-]?\s*([A-Za-z\s&.,]+)\b`)

	gstrTurnoverRE = regexp.MustCompile(`(?i)\b(?:Turnover|Sales|Revenue)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`)
	gstrTaxableRE  = regexp.MustCompile(`(?i)\b(?:Taxable\s*Value|Taxable\s*Amount)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`)

	gstrHSNRE = regexp.MustCompile(`(?i)\bHSN\s*[:\-]?\s*([0-9]{4,8})\b`)
	gstrSACRE = regexp.MustCompile(`(?i)\bSAC\s*[:\-]?\s*([0-9]{4,8})\b`)

	gstrInvNoRE    = regexp.MustCompile(`(?i)\b(?:Invoice\s*No\.?|Inv\.?)\s*[:\-]?\s*([A-Z0-9\-]+)\b`)
	gstrInvDateRE  = regexp.MustCompile(`(?i)\b(?:Invoice\s*Date|Inv\s*Date)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})\b`)
	gstrInvValueRE = regexp.MustCompile(`(?i)\b(?:Invoice\s*Value|Inv\s*Value)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`)

	gstrCustGSTINRE = regexp.MustCompile(`(?i)\b(?:Customer\s*GSTIN|Buyer\s*GSTIN)\s*[:\-]?\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`)
	gstrSuppGSTINRE = regexp.MustCompile(`(?i)\b(?:Supplier\s*GSTIN|Vendor\s*GSTIN)\s*[:\-]?\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`)

	gstrPOSRE = regexp.MustCompile(`(?i)\b(?:Place\s*of\s*Supply|POS)\s*[:\-]?\s*([0-9]{2})\b`)
	gstrRCMRE = regexp.MustCompile(`(?i)\b(?:Reverse\s*Charge|RCM)\s*[:\-]?\s*(Yes|No|Y|N)\b`)

	gstrTaxHeads = []struct {
		re  *regexp.Regexp
		typ string
	}{
		{regexp.MustCompile(`(?i)\bIGST\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`), "IGST"},
		{regexp.MustCompile(`(?i)\bCGST\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`), "CGST"},
		{regexp.MustCompile(`(?i)\bSGST\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`), "SGST"},
		{regexp.MustCompile(`(?i)\bCESS\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`), "CESS"},
	}

	periodNumericRE = regexp.MustCompile(`^[0-9]{2}[-/.][0-9]{4}$`)
	periodMonthRE   = regexp.MustCompile(`^[A-Za-z]{3}[-/.][0-9]{4}$`)
)

// ParseGstr extracts whatever return-level fields a generic GST return
// extract exposes, without committing to a specific form layout.
func ParseGstr(text string) *Gstr {
	g := &Gstr{
		Taxes:     []TaxLine{},
		Invoices:  []GstrInvoiceRef{},
		Customers: []Party{},
		Suppliers: []Party{},
		Warnings:  []string{},
	}

	if m := gstrFormRE.FindStringSubmatch(text); m != nil {
		g.GstrForm = &Field{Value: "GSTR-" + strings.ToUpper(m[1]), Confidence: 0.9}
	}
	if m := gstrPeriodRE.FindStringSubmatch(text); m != nil {
		g.Period = &Field{Value: normalizePeriodLabel(m[1]), Confidence: 0.8}
	}
	if m := gstrBizRE.FindStringSubmatch(text); m != nil {
		g.BusinessName = &Field{Value: strings.TrimSpace(m[1]), Confidence: 0.8}
	}
	if m := GSTINPattern.FindStringSubmatch(text); m != nil {
		g.GSTIN = &Field{Value: m[1], Confidence: 0.9}
	}
	if m := gstrTurnoverRE.FindStringSubmatch(text); m != nil {
		if v := parseNum(m[1]); v != nil {
			g.Turnover = &Field{Value: formatAmount(*v), Confidence: 0.8}
		}
	}
	if m := gstrTaxableRE.FindStringSubmatch(text); m != nil {
		if v := parseNum(m[1]); v != nil {
			g.TaxableValue = &Field{Value: formatAmount(*v), Confidence: 0.8}
		}
	}

	for _, head := range gstrTaxHeads {
		for _, m := range head.re.FindAllStringSubmatch(text, -1) {
			if v := parseNum(m[1]); v != nil && *v != 0 {
				g.Taxes = append(g.Taxes, TaxLine{Type: head.typ, Amount: *v})
			}
		}
	}

	invNos := gstrInvNoRE.FindAllStringSubmatch(text, -1)
	invDates := gstrInvDateRE.FindAllStringSubmatch(text, -1)
	invValues := gstrInvValueRE.FindAllStringSubmatch(text, -1)
	for i, m := range invNos {
		ref := GstrInvoiceRef{InvoiceNumber: m[1]}
		if i < len(invDates) {
			ref.Date = normalizeDate(invDates[i][1])
		}
		if i < len(invValues) {
			ref.Value = parseNum(invValues[i][1])
		}
		g.Invoices = append(g.Invoices, ref)
	}
	g.Invoices = cleanInvoiceRefs(g.Invoices)

	for _, m := range gstrCustGSTINRE.FindAllStringSubmatch(text, -1) {
		g.Customers = append(g.Customers, Party{GSTIN: m[1]})
	}
	for _, m := range gstrSuppGSTINRE.FindAllStringSubmatch(text, -1) {
		g.Suppliers = append(g.Suppliers, Party{GSTIN: m[1]})
	}

	for _, m := range gstrHSNRE.FindAllStringSubmatch(text, -1) {
		g.HSNCodes = append(g.HSNCodes, m[1])
	}
	for _, m := range gstrSACRE.FindAllStringSubmatch(text, -1) {
		g.SACCodes = append(g.SACCodes, m[1])
	}

	if m := gstrPOSRE.FindStringSubmatch(text); m != nil {
		g.PlaceOfSupply = &Field{Value: m[1], Confidence: 0.8}
	}
	if m := gstrRCMRE.FindStringSubmatch(text); m != nil {
		g.ReverseCharge = &Field{Value: strings.ToUpper(m[1]), Confidence: 0.8}
	}
	return g
}

// cleanInvoiceRefs drops junk references: too-short numbers, the bare word
// "invoice" captured off a label, and OCR smears where the label's tail
// ("...voice") glued onto the real number. Duplicates keep first occurrence.
func cleanInvoiceRefs(entries []GstrInvoiceRef) []GstrInvoiceRef {
	cleaned := make([]GstrInvoiceRef, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		num := strings.TrimSpace(entry.InvoiceNumber)
		if len(num) < 4 {
			continue
		}
		low := strings.ToLower(num)
		if strings.HasSuffix(low, "voice") && low != "invoice" && len(num) >= 6 {
			num = num[len(num)-6:]
		}
		if num == "" || strings.EqualFold(num, "invoice") {
			continue
		}
		if _, ok := seen[num]; ok {
			continue
		}
		seen[num] = struct{}{}
		entry.InvoiceNumber = num
		cleaned = append(cleaned, entry)
	}
	return cleaned
}

// GstrQualityScore grades a generic return parse 0-10 by field coverage.
func GstrQualityScore(g *Gstr) int {
	score := 0
	if g.GstrForm != nil {
		score += 2
	}
	if g.Period != nil {
		score += 2
	}
	if g.Turnover != nil {
		score++
	}
	if g.TaxableValue != nil {
		score++
	}
	score += min(2, len(g.Taxes))
	score += min(2, len(g.Invoices))
	return score
}

func normalizePeriodLabel(s string) string {
	s = strings.TrimSpace(s)
	if periodNumericRE.MatchString(s) || periodMonthRE.MatchString(s) {
		s = strings.ReplaceAll(s, "/", "-")
		s = strings.ReplaceAll(s, ".", "-")
	}
	return s
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
