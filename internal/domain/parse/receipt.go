package parse

import (
	"regexp"
	"strings"

	"github.com/taxpilot/docparse/pkg/money"
)

const (
	amountPat = `([₹$]?\s*[0-9][0-9,]*(?:\.[0-9]{2})?)`
	datePat   = `((?:\d{4}[-/]\d{1,2}[-/]\d{1,2})|(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}))`
)

var (
	rcptTotalRE = regexp.MustCompile(`(?i)\b(total|amount\s*due|grand\s*total)\b[^0-9$₹]*` + amountPat)
	rcptSubRE   = regexp.MustCompile(`(?i)\b(sub\s*total|subtotal)\b[^0-9$₹]*` + amountPat)
	rcptTaxRE   = regexp.MustCompile(`(?i)\b(cgst|sgst|igst|tax|vat|gst)\b[^0-9$₹]*` + amountPat)
	rcptDateRE  = regexp.MustCompile(datePat)

	rcptLineQxU = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*[x×]\s*([₹$]?\s*[0-9][0-9,]*(?:\.[0-9]{2})?)\s*(?:=|→)\s*([₹$]?\s*[0-9][0-9,]*(?:\.[0-9]{2})?)$`)
	rcptLineAmt = regexp.MustCompile(`^(.+?)\s+([₹$]?\s*[0-9][0-9,]*(?:\.[0-9]{2})?)$`)
	rcptSkipRE  = regexp.MustCompile(`(?i)\b(subtotal|total|tax|gst|cgst|sgst|igst|amount due)\b`)
)

// ParseReceipt extracts merchant, amounts and line items from a POS
// receipt. The merchant guess is the first line that is not a document
// label.
func ParseReceipt(text string) *Receipt {
	r := &Receipt{
		Taxes:     []TaxLine{},
		LineItems: []LineItem{},
		Warnings:  []string{},
	}

	r.Merchant.Name = firstMeaningfulLine(text)
	r.Currency = detectCurrency(text)

	if m := rcptSubRE.FindStringSubmatch(text); m != nil {
		r.Subtotal = parseNum(m[2])
	}
	for _, m := range rcptTaxRE.FindAllStringSubmatch(text, -1) {
		amt := 0.0
		if v := parseNum(m[2]); v != nil {
			amt = *v
		}
		r.Taxes = append(r.Taxes, TaxLine{Type: strings.ToUpper(m[1]), Amount: amt})
	}
	if m := rcptTotalRE.FindStringSubmatch(text); m != nil {
		r.Total = parseNum(m[2])
	}

	if raw := rcptDateRE.FindString(text); raw != "" {
		if d := normalizeDate(raw); isISODate(d) {
			r.Date = &Field{Value: d, Confidence: 0.7}
		}
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || rcptSkipRE.MatchString(line) {
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

func firstMeaningfulLine(text string) string {
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
		return line
	}
	return ""
}

func detectCurrency(text string) string {
	if strings.Contains(text, "₹") {
		return "INR"
	}
	if strings.Contains(text, "$") {
		return "USD"
	}
	return ""
}
