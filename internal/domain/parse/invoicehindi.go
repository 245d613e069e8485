package parse

import (
	"regexp"
	"strings"
)

// Devanagari label variants of the invoice rule tables. Each pattern also
// accepts the Latin label so a bilingual portal printout parses in one
// pass; matching is Hindi-first with the plain tables as fallback.
//
// RE2's \b is ASCII-only and never fires next to Devanagari, so instead of
// word boundaries the patterns guard with a leading non-Devanagari char:
// that stops जीएसटी from matching inside सीजीएसटी and कुल inside उप-कुल.
const devanagariGuard = `(?:^|[^-\x{0900}-\x{097F}])`

// The Latin alternatives keep the ASCII \b the plain tables use; without
// it "total" matches inside "Subtotal" and "inv" inside "INVOICE".
var (
	invoiceNoHindiRE = regexp.MustCompile(`(?i)(?:चालान|बिल|इनवॉइस|\b(?:invoice|inv|bill))\s*(?:संख्या|नंबर|no\.?|number|#)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-]{4,})`)
	totalHindiRE     = regexp.MustCompile(`(?i)` + devanagariGuard + `(?:कुल(?:\s*राशि)?|टोटल|\btotal)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
	subtotalHindiRE  = regexp.MustCompile(`(?i)(?:उप[-\s]*कुल|सबटोटल|\bsub\s*total)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
)

const hindiTaxTail = `\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`

var hindiTaxLinePatterns = []struct {
	re  *regexp.Regexp
	typ string
}{
	{regexp.MustCompile(`(?i)` + devanagariGuard + `(?:सीजीएसटी|\bCGST)` + hindiTaxTail), "CGST"},
	{regexp.MustCompile(`(?i)` + devanagariGuard + `(?:एसजीएसटी|\bSGST)` + hindiTaxTail), "SGST"},
	{regexp.MustCompile(`(?i)` + devanagariGuard + `(?:आईजीएसटी|\bIGST)` + hindiTaxTail), "IGST"},
	{regexp.MustCompile(`(?i)` + devanagariGuard + `(?:जीएसटी|कर)` + hindiTaxTail), "GST"},
}

// ParseInvoiceHindi extracts invoice fields using the Devanagari rule
// tables, falling back to the plain tables field by field. The record
// shape matches ParseInvoice so downstream fallbacks and quality scoring
// apply unchanged.
func ParseInvoiceHindi(text string) *Invoice {
	inv := &Invoice{
		Currency:  "INR",
		Taxes:     []TaxLine{},
		LineItems: []LineItem{},
		Warnings:  []string{},
	}

	if m := invoiceNoHindiRE.FindStringSubmatch(text); m != nil {
		cand := strings.TrimSpace(m[1])
		if len(cand) >= 5 && !isAlphaOnly(cand) {
			inv.InvoiceNumber = &Field{Value: cand, Confidence: 0.9}
		} else {
			inv.Warnings = append(inv.Warnings, "invoice_number_low_confidence")
		}
	}

	if m := invDateRE.FindString(text); m != "" {
		inv.Date = &Field{Value: normalizeDate(m), Confidence: 0.8}
	}

	gstins := GSTINPattern.FindAllString(text, -1)
	if len(gstins) > 0 {
		inv.Seller.GSTIN = gstins[0]
	}
	if len(gstins) > 1 {
		inv.Buyer.GSTIN = gstins[1]
	}

	if m := subtotalHindiRE.FindStringSubmatch(text); m != nil {
		inv.Subtotal = parseNum(m[1])
	} else if m := subtotalRE.FindStringSubmatch(text); m != nil && m[1] != "" {
		inv.Subtotal = parseNum(m[1])
	}
	if m := totalHindiRE.FindStringSubmatch(text); m != nil {
		inv.Total = parseNum(m[1])
	} else if m := totalRE.FindStringSubmatch(text); m != nil {
		inv.Total = parseNum(m[1])
	}

	for _, p := range hindiTaxLinePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			inv.Taxes = append(inv.Taxes, taxLineFromMatch(p.typ, m[1], m[2]))
		}
	}
	// The Devanagari patterns accept the Latin labels too, so the plain
	// tables only contribute lines the first pass missed.
	for _, p := range taxLinePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			line := taxLineFromMatch(p.typ, m[1], m[2])
			if !containsTaxLine(inv.Taxes, line) {
				inv.Taxes = append(inv.Taxes, line)
			}
		}
	}

	for _, m := range hsnRE.FindAllStringSubmatch(text, -1) {
		inv.HSNCodes = append(inv.HSNCodes, m[1])
	}
	for _, m := range sacRE.FindAllStringSubmatch(text, -1) {
		inv.SACCodes = append(inv.SACCodes, m[1])
	}

	return inv
}

func taxLineFromMatch(typ, rate, amount string) TaxLine {
	line := TaxLine{Type: typ}
	if v := parseNum(rate); v != nil {
		line.Rate = *v
	}
	if v := parseNum(amount); v != nil {
		line.Amount = *v
	}
	return line
}

func containsTaxLine(lines []TaxLine, t TaxLine) bool {
	for _, l := range lines {
		if l.Type == t.Type && l.Rate == t.Rate && l.Amount == t.Amount {
			return true
		}
	}
	return false
}
