package parse

import (
	"regexp"
	"strings"

	"github.com/taxpilot/docparse/pkg/money"
)

// GSTINPattern matches a well-formed 15-character GSTIN.
var GSTINPattern = regexp.MustCompile(`\b([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`)

var (
	invoiceNoRE = regexp.MustCompile(`(?i)\b(?:invoice|inv|bill)\s*(?:no\.?|number|#)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-]{4,})\b`)
	invDateRE   = regexp.MustCompile(`\b(20[0-9]{2}[-/.](0[1-9]|1[0-2])[-/.](0[1-9]|[12][0-9]|3[01])|(0[1-9]|[12][0-9]|3[01])[-/.](0[1-9]|1[0-2])[-/.](20[0-9]{2}))\b`)
	totalRE     = regexp.MustCompile(`(?i)\bTotal\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`)
	subtotalRE  = regexp.MustCompile(`(?i)\bSub\s*Total|Subtotal\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)\b`)

	hsnRE = regexp.MustCompile(`(?i)\bHSN\s*[:\-]?\s*([0-9]{4,8})\b`)
	sacRE = regexp.MustCompile(`(?i)\bSAC\s*[:\-]?\s*([0-9]{4,8})\b`)

	lineItemNumRE = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)
)

// taxLinePatterns extract "<TYPE> (<rate>%) <amount>" charges. GST rates in
// practice are 0/5/12/18/28 percent but the rate group accepts any 1-2
// digit value.
var taxLinePatterns = []struct {
	re  *regexp.Regexp
	typ string
}{
	{regexp.MustCompile(`(?i)\bCGST\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "CGST"},
	{regexp.MustCompile(`(?i)\bSGST\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "SGST"},
	{regexp.MustCompile(`(?i)\bIGST\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "IGST"},
	{regexp.MustCompile(`(?i)\bCESS\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "CESS"},
	{regexp.MustCompile(`(?i)\bTDS\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "TDS"},
	{regexp.MustCompile(`(?i)\bTCS\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "TCS"},
	{regexp.MustCompile(`(?i)\b(?:GST|Tax)\s*\(?(\d{1,2}(?:\.\d)?)%\)?\s*[:\-]?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), "GST"},
}

func parseNum(s string) *float64 {
	if v, ok := money.ParseAmount(s); ok {
		return &v
	}
	return nil
}

// ParseInvoice extracts the core fields of a tax invoice from cleaned text.
// Fields it cannot find stay nil; ApplyInvoiceFallbacks can then attempt a
// looser second pass over the raw text.
func ParseInvoice(text string) *Invoice {
	inv := &Invoice{
		Currency:  "INR",
		Taxes:     []TaxLine{},
		LineItems: []LineItem{},
		Warnings:  []string{},
	}

	if m := invoiceNoRE.FindStringSubmatch(text); m != nil {
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

	if m := subtotalRE.FindStringSubmatch(text); m != nil && m[1] != "" {
		inv.Subtotal = parseNum(m[1])
	}
	if m := totalRE.FindStringSubmatch(text); m != nil {
		inv.Total = parseNum(m[1])
	}

	for _, p := range taxLinePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			rate := 0.0
			if v := parseNum(m[1]); v != nil {
				rate = *v
			}
			amt := 0.0
			if v := parseNum(m[2]); v != nil {
				amt = *v
			}
			inv.Taxes = append(inv.Taxes, TaxLine{Type: p.typ, Rate: rate, Amount: amt})
		}
	}

	for _, m := range hsnRE.FindAllStringSubmatch(text, -1) {
		inv.HSNCodes = append(inv.HSNCodes, m[1])
	}
	for _, m := range sacRE.FindAllStringSubmatch(text, -1) {
		inv.SACCodes = append(inv.SACCodes, m[1])
	}

	inv.LineItems = append(inv.LineItems, parseQtyLineItems(text)...)

	if inv.Subtotal == nil && len(inv.LineItems) > 0 {
		amounts := make([]float64, len(inv.LineItems))
		for i, li := range inv.LineItems {
			amounts[i] = li.Amount
		}
		sum := money.Sum2(amounts...)
		inv.Subtotal = &sum
	}
	if inv.Total == nil && inv.Subtotal != nil && len(inv.Taxes) > 0 {
		taxSum := 0.0
		for _, t := range inv.Taxes {
			taxSum += t.Amount
		}
		total := money.Round2(*inv.Subtotal + money.Round2(taxSum))
		inv.Total = &total
	}
	return inv
}

// parseQtyLineItems pulls "desc - 2 x 100 = 200" style lines.
func parseQtyLineItems(text string) []LineItem {
	var items []LineItem
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, " x ") || !strings.Contains(line, "=") {
			continue
		}
		left, right, _ := strings.Cut(line, "=")
		amt := parseNum(right)
		nums := lineItemNumRE.FindAllString(strings.ReplaceAll(left, ",", ""), -1)
		qty, unit := 1.0, 0.0
		if len(nums) >= 2 {
			if v := parseNum(nums[len(nums)-2]); v != nil {
				qty = *v
			}
		}
		if len(nums) >= 1 {
			if v := parseNum(nums[len(nums)-1]); v != nil {
				unit = *v
			}
		}
		desc := strings.TrimSpace(strings.SplitN(left, "-", 2)[0])
		amount := qty * unit
		if amt != nil {
			amount = *amt
		}
		items = append(items, LineItem{Desc: desc, Qty: qty, UnitPrice: unit, Amount: amount})
	}
	return items
}

func isAlphaOnly(s string) bool {
	for _, r := range s {
		if r < 'A' || (r > 'Z' && r < 'a') || r > 'z' {
			return false
		}
	}
	return len(s) > 0
}
