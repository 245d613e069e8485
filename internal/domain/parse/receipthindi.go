package parse

import (
	"regexp"
	"strings"

	"github.com/taxpilot/docparse/pkg/money"
)

var (
	rcptTotalHindiRE = regexp.MustCompile(`(?i)` + devanagariGuard + `(?:कुल\s*राशि|कुल|टोटल|राशि\s*देय|\b(?:total|amount\s*due|grand\s*total)\b)[^0-9$₹]*` + amountPat)
	rcptSubHindiRE   = regexp.MustCompile(`(?i)(?:उप[-\s]*कुल|सबटोटल|\b(?:sub\s*total|subtotal)\b)[^0-9$₹]*` + amountPat)
	rcptTaxHindiRE   = regexp.MustCompile(`(?i)` + devanagariGuard + `(सीजीएसटी|एसजीएसटी|आईजीएसटी|जीएसटी|कर|\b(?:cgst|sgst|igst|tax|vat|gst)\b)[^0-9$₹]*` + amountPat)
	rcptSkipHindiRE  = regexp.MustCompile(`(?i)\b(subtotal|total|tax|gst|cgst|sgst|igst|amount due)\b|कुल|उप[-\s]*कुल|कर|जीएसटी`)
)

var hindiDocLabels = []string{
	"रसीद", "चालान", "बिल", "कर चालान", "टैक्स इनवॉइस",
}

// ParseReceiptHindi extracts merchant, amounts and line items from a
// receipt labelled in Devanagari, with the plain tables as per-field
// fallback.
func ParseReceiptHindi(text string) *Receipt {
	r := &Receipt{
		Taxes:     []TaxLine{},
		LineItems: []LineItem{},
		Warnings:  []string{},
	}

	r.Merchant.Name = firstMeaningfulLineHindi(text)
	r.Currency = detectCurrencyHindi(text)

	if m := rcptSubHindiRE.FindStringSubmatch(text); m != nil {
		r.Subtotal = parseNum(m[1])
	} else if m := rcptSubRE.FindStringSubmatch(text); m != nil {
		r.Subtotal = parseNum(m[2])
	}

	for _, m := range rcptTaxHindiRE.FindAllStringSubmatch(text, -1) {
		amt := 0.0
		if v := parseNum(m[2]); v != nil {
			amt = *v
		}
		line := TaxLine{Type: hindiTaxType(m[1]), Amount: amt}
		if !containsTaxLine(r.Taxes, line) {
			r.Taxes = append(r.Taxes, line)
		}
	}

	if m := rcptTotalHindiRE.FindStringSubmatch(text); m != nil {
		r.Total = parseNum(m[1])
	} else if m := rcptTotalRE.FindStringSubmatch(text); m != nil {
		r.Total = parseNum(m[2])
	}

	if raw := rcptDateRE.FindString(text); raw != "" {
		if d := normalizeDate(raw); isISODate(d) {
			r.Date = &Field{Value: d, Confidence: 0.7}
		}
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || rcptSkipHindiRE.MatchString(line) {
			continue
		}

		if m := rcptLineQxU.FindStringSubmatch(line); m != nil {
			qty := 0.0
			if v := parseNum(m[2]); v != nil {
				qty = *v
			}
			unit := parseNum(m[3])
			if unit == nil {
				continue
			}
			amount := qty * *unit
			if v := parseNum(m[4]); v != nil {
				amount = *v
			}
			r.LineItems = append(r.LineItems, LineItem{
				Desc:      strings.Trim(m[1], " -•—"),
				Qty:       qty,
				UnitPrice: *unit,
				Amount:    money.Round2(amount),
			})
			continue
		}

		if m := rcptLineAmt.FindStringSubmatch(line); m != nil {
			if amt := parseNum(m[2]); amt != nil {
				r.LineItems = append(r.LineItems, LineItem{
					Desc:      strings.Trim(m[1], " -•—"),
					Qty:       1,
					UnitPrice: *amt,
					Amount:    money.Round2(*amt),
				})
			}
		}
	}

	if r.Subtotal == nil && len(r.LineItems) > 0 {
		amounts := make([]float64, len(r.LineItems))
		for i, li := range r.LineItems {
			amounts[i] = li.Amount
		}
		sum := money.Sum2(amounts...)
		r.Subtotal = &sum
	}
	return r
}

// hindiTaxType maps a matched Devanagari tax label to the Latin type the
// rest of the pipeline aggregates on.
func hindiTaxType(label string) string {
	switch label {
	case "सीजीएसटी":
		return "CGST"
	case "एसजीएसटी":
		return "SGST"
	case "आईजीएसटी":
		return "IGST"
	case "जीएसटी", "कर":
		return "GST"
	}
	return strings.ToUpper(label)
}

func firstMeaningfulLineHindi(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		low := strings.ToLower(line)
		if strings.HasPrefix(low, "tax invoice") || strings.HasPrefix(low, "invoice") ||
			strings.HasPrefix(low, "receipt") || strings.HasPrefix(low, "gst") ||
			strings.HasPrefix(low, "bill") {
			continue
		}
		if hasHindiDocLabel(line) {
			continue
		}
		return line
	}
	return ""
}

func hasHindiDocLabel(line string) bool {
	for _, label := range hindiDocLabels {
		if strings.HasPrefix(line, label) {
			return true
		}
	}
	return false
}

func detectCurrencyHindi(text string) string {
	if strings.Contains(text, "₹") || strings.Contains(text, "रुपये") || strings.Contains(text, "रु ") {
		return "INR"
	}
	if strings.Contains(text, "$") {
		return "USD"
	}
	return ""
}
