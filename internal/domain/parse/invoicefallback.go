package parse

import (
	"regexp"
	"strings"
)

// fallbackConfidence marks values recovered by the loose second-pass
// regexes, distinctly lower than the primary extraction's 0.8-0.9.
const fallbackConfidence = 0.55

var (
	fbInvoiceNoRE = regexp.MustCompile(`(?i)(?:invoice|tax\s+invoice)\s*(?:no\.?|number|#)?\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9\-/]+)`)
	fbBillDateRE  = regexp.MustCompile(`(?i)bill\s+date\s+([0-9]{1,2}\s+[A-Za-z]{3}\s+[0-9]{4})`)
	fbSubtotalRE  = regexp.MustCompile(`(?i)sub\s*total\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
	fbTotalRE     = regexp.MustCompile(`(?i)(?:grand\s+total|total\s+rs\.?|total)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
	fbTaxLineRE   = regexp.MustCompile(`(?i)(cgst|sgst|igst)\s*@?\s*([0-9]{1,2}(?:\.[0-9]{1,2})?)%?\s*(?:[:\-])?\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
	fbTaxTypeRE   = regexp.MustCompile(`(?i)(cgst|sgst|igst)\s*@?\s*([0-9]{1,2}(?:\.[0-9]{1,2})?)%?`)

	fbAmountTokenRE  = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	fbTextualDateRE  = regexp.MustCompile(`[0-9]{1,2}\s+[A-Za-z]{3,9}\s+[0-9]{4}`)
	fbNumericDateREs = []*regexp.Regexp{
		regexp.MustCompile(`\b(0[1-9]|[12][0-9]|3[01])-(0[1-9]|1[0-2])-(20[0-9]{2})\b`),
		regexp.MustCompile(`\b(0[1-9]|[12][0-9]|3[01])/(0[1-9]|1[0-2])/(20[0-9]{2})\b`),
		regexp.MustCompile(`\b(20[0-9]{2})-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])\b`),
		regexp.MustCompile(`\b(20[0-9]{2})/(0[1-9]|1[0-2])/(0[1-9]|[12][0-9]|3[01])\b`),
	}
)

// ApplyInvoiceFallbacks fills fields the primary parser missed using looser
// keyword-anchored searches over the raw (pre-normalization) text. Every
// recovered field is flagged in warnings so callers can tell fallback data
// from primary data.
func ApplyInvoiceFallbacks(inv *Invoice, rawText string) *Invoice {
	if inv.InvoiceNumber == nil {
		if num := fallbackInvoiceNumber(rawText); num != "" {
			inv.InvoiceNumber = &Field{Value: num, Confidence: fallbackConfidence}
			inv.Warnings = append(inv.Warnings, "invoice_number_from_fallback_regex")
		}
	}

	if inv.Date == nil {
		if date := fallbackInvoiceDate(rawText); date != "" {
			inv.Date = &Field{Value: date, Confidence: fallbackConfidence}
			inv.Warnings = append(inv.Warnings, "invoice_date_from_fallback_regex")
		}
	}

	if inv.Subtotal == nil || inv.Total == nil {
		subtotal, total := fallbackAmounts(rawText)
		if inv.Subtotal == nil && subtotal != nil {
			inv.Subtotal = subtotal
			inv.Warnings = append(inv.Warnings, "subtotal_from_fallback_regex")
		}
		if inv.Total == nil && total != nil {
			inv.Total = total
			inv.Warnings = append(inv.Warnings, "total_from_fallback_regex")
		}
	}

	bound := inv.Subtotal
	if bound == nil {
		bound = inv.Total
	}
	if taxes := fallbackTaxLines(rawText, bound); len(taxes) > 0 {
		inv.Taxes = append(inv.Taxes, taxes...)
		inv.Warnings = append(inv.Warnings, "taxes_from_fallback_regex")
	}

	return inv
}

// fallbackInvoiceNumber scans line by line: a match on the "invoice" line
// itself, else the first plausible token on the next two lines.
func fallbackInvoiceNumber(text string) string {
	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		if !strings.Contains(strings.ToLower(line), "invoice") {
			continue
		}
		if m := fbInvoiceNoRE.FindStringSubmatch(line); m != nil {
			cand := strings.TrimSpace(m[1])
			if len(cand) >= 4 && hasDigit(cand) {
				return cand
			}
		}
		for offset := 1; offset <= 2; offset++ {
			if idx+offset >= len(lines) {
				continue
			}
			nxt := strings.TrimSpace(lines[idx+offset])
			if nxt == "" || strings.Contains(strings.ToLower(nxt), "invoice") {
				continue
			}
			if len(nxt) >= 4 && hasDigit(nxt) {
				return nxt
			}
		}
	}
	return ""
}

func fallbackInvoiceDate(text string) string {
	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		if !strings.Contains(strings.ToLower(line), "bill date") {
			continue
		}
		if d := matchDateInLine(line); d != "" {
			return d
		}
		for offset := 1; offset <= 6; offset++ {
			if idx+offset >= len(lines) {
				break
			}
			nxt := strings.TrimSpace(lines[idx+offset])
			if nxt == "" {
				continue
			}
			low := strings.ToLower(nxt)
			if strings.Contains(low, "bill date") || strings.Contains(low, "due date") {
				continue
			}
			if d := matchDateInLine(nxt); d != "" {
				return d
			}
		}
		break
	}

	if m := fbBillDateRE.FindStringSubmatch(text); m != nil {
		if d := normalizeTextualDate(m[1]); d != "" {
			return d
		}
	}

	for _, re := range fbNumericDateREs {
		if m := re.FindString(text); m != "" {
			return normalizeDate(m)
		}
	}
	return ""
}

func matchDateInLine(line string) string {
	for _, token := range fbTextualDateRE.FindAllString(line, -1) {
		if d := normalizeTextualDate(token); d != "" {
			return d
		}
	}
	for _, re := range fbNumericDateREs {
		if m := re.FindString(line); m != "" {
			if d := normalizeDate(m); isISODate(d) {
				return d
			}
		}
	}
	return ""
}

func fallbackAmounts(text string) (subtotal, total *float64) {
	lines := strings.Split(text, "\n")
	subtotal = amountByKeyword(lines, []string{"sub total", "subtotal"}, nil)
	total = amountByKeyword(lines,
		[]string{"grand total", "total rs", "total rs.", "total"},
		[]string{"sub total", "subtotal"})
	if subtotal == nil {
		if m := fbSubtotalRE.FindStringSubmatch(text); m != nil {
			subtotal = parseNum(m[1])
		}
	}
	if total == nil {
		if m := fbTotalRE.FindStringSubmatch(text); m != nil {
			total = parseNum(m[1])
		}
	}
	return subtotal, total
}

// fallbackTaxLines pulls CGST/SGST/IGST charges; when a tax label's amount
// is not on the same line it walks downstream and, given a rate hint plus
// an upper bound, rejects candidates larger than bound*(rate/100+0.05).
func fallbackTaxLines(text string, upperBound *float64) []TaxLine {
	var taxes []TaxLine
	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		m := fbTaxLineRE.FindStringSubmatch(line)
		var amount *float64
		if m != nil {
			amount = parseNum(m[3])
		} else if containsAnyFold(line, "cgst", "sgst", "igst") {
			m = fbTaxTypeRE.FindStringSubmatch(line)
			var rateHint *float64
			if m != nil {
				rateHint = parseNum(m[2])
			}
			amount = consumeNumericDownstream(lines, idx+1, upperBound, rateHint)
		}
		if m != nil && amount != nil {
			rate := 0.0
			if v := parseNum(m[2]); v != nil {
				rate = *v
			}
			taxes = append(taxes, TaxLine{Type: strings.ToUpper(m[1]), Rate: rate, Amount: *amount})
		}
	}
	return taxes
}

// EvaluateInvoiceQuality scores a parsed invoice 0-8 on field coverage and
// reports whether it is usable for downstream reconciliation.
func EvaluateInvoiceQuality(inv *Invoice) InvoiceQuality {
	q := InvoiceQuality{Issues: []string{}}

	hasNumber := inv.InvoiceNumber != nil && inv.InvoiceNumber.Value != ""
	hasDate := inv.Date != nil && inv.Date.Value != ""
	hasTotal := inv.Total != nil
	hasSubtotal := inv.Subtotal != nil
	hasTaxes := len(inv.Taxes) > 0

	if hasNumber {
		q.Score += 2
	} else {
		q.Issues = append(q.Issues, "missing_invoice_number")
	}
	if hasDate {
		q.Score += 2
	} else {
		q.Issues = append(q.Issues, "missing_date")
	}
	switch {
	case hasTotal:
		q.Score += 2
	case hasSubtotal && hasTaxes:
		q.Score += 2
	case hasSubtotal:
		q.Score++
		q.Issues = append(q.Issues, "missing_taxes")
	default:
		q.Issues = append(q.Issues, "missing_totals")
	}
	if inv.Seller.GSTIN != "" {
		q.Score++
	} else {
		q.Issues = append(q.Issues, "missing_seller_gstin")
	}
	if inv.Buyer.GSTIN != "" {
		q.Score++
	} else {
		q.Issues = append(q.Issues, "missing_buyer_gstin")
	}

	hasAmounts := hasTotal || (hasSubtotal && hasTaxes)
	q.IsUsable = hasNumber && hasDate && hasAmounts
	return q
}

func amountByKeyword(lines []string, keywords, exclude []string) *float64 {
	for idx, line := range lines {
		low := strings.ToLower(line)
		if anyKeyword(low, exclude) {
			continue
		}
		if !anyKeyword(low, keywords) {
			continue
		}
		if v := amountToken(line); v != nil {
			return v
		}
		for offset := 1; offset <= 7; offset++ {
			if idx+offset >= len(lines) {
				break
			}
			nxt := strings.TrimSpace(lines[idx+offset])
			if nxt == "" || anyKeyword(strings.ToLower(nxt), keywords) {
				continue
			}
			if v := amountToken(nxt); v != nil {
				return v
			}
		}
	}
	return nil
}

func consumeNumericDownstream(lines []string, start int, upperBound, rate *float64) *float64 {
	end := min(len(lines), start+10)
	for idx := start; idx < end; idx++ {
		nxt := strings.TrimSpace(lines[idx])
		if nxt == "" {
			continue
		}
		v := amountToken(nxt)
		if v == nil {
			continue
		}
		if upperBound != nil && rate != nil {
			expectedMax := *upperBound * (*rate/100.0 + 0.05)
			if *v > expectedMax {
				continue
			}
		}
		return v
	}
	return nil
}

// amountToken returns the first token on the line that looks like a real
// amount (at least 4 digits once separators are stripped).
func amountToken(line string) *float64 {
	m := fbAmountTokenRE.FindString(line)
	if m == "" || !looksLikeAmount(m) {
		return nil
	}
	return parseNum(m)
}

func looksLikeAmount(token string) bool {
	digits := strings.NewReplacer(",", "", ".", "").Replace(token)
	return len(digits) >= 4
}

func anyKeyword(line string, keywords []string) bool {
	for _, k := range keywords {
		if keywordInLine(line, k) {
			return true
		}
	}
	return false
}

func keywordInLine(line, keyword string) bool {
	idx := strings.Index(line, keyword)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(line[idx-1])
		afterIdx := idx + len(keyword)
		after := afterIdx >= len(line) || !isWordChar(line[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(line[idx+1:], keyword)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func containsAnyFold(line string, subs ...string) bool {
	low := strings.ToLower(line)
	for _, s := range subs {
		if strings.Contains(low, s) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func isISODate(s string) bool {
	return len(s) == 10 && s[4] == '-' && s[7] == '-'
}
