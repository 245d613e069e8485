package parse

import (
	"regexp"
	"strings"
)

var (
	gstInvoiceNoGarbageRE = regexp.MustCompile(`^[A-Za-z]{1,3}$`)
	gstInvoiceAllowRE     = regexp.MustCompile(`^[A-Za-z0-9\-/]+$`)
	gstInvoiceStripRE     = regexp.MustCompile(`[^A-Za-z0-9\-/]`)
	gstInvoiceNoRE        = regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|#)\s*[:\-]?\s*([A-Za-z0-9\-/]+)`)
)

// cleanInvoiceNumber rejects junk tokens the loose invoice-number regex
// tends to capture on GST invoices (bare words, too-short fragments) and
// strips disallowed characters from the rest.
func cleanInvoiceNumber(value string) string {
	token := strings.TrimSpace(value)
	if len(token) < 4 || gstInvoiceNoGarbageRE.MatchString(token) {
		return ""
	}
	token = strings.ReplaceAll(token, " ", "")
	if !gstInvoiceAllowRE.MatchString(token) {
		token = gstInvoiceStripRE.ReplaceAllString(token, "")
	}
	return token
}

// ParseGSTInvoice parses a GST tax invoice: the generic invoice pass plus
// stricter invoice-number hygiene and a mandatory-GSTIN check.
func ParseGSTInvoice(text string) *Invoice {
	inv := ParseInvoice(text)

	if inv.InvoiceNumber != nil {
		if cleaned := cleanInvoiceNumber(inv.InvoiceNumber.Value); cleaned != "" {
			inv.InvoiceNumber.Value = cleaned
		}
	} else if m := gstInvoiceNoRE.FindStringSubmatch(text); m != nil {
		inv.InvoiceNumber = &Field{Value: strings.TrimSpace(m[1]), Confidence: 0.8}
	}

	if inv.Seller.GSTIN == "" {
		inv.Warnings = append(inv.Warnings, "GSTIN not found")
	}
	return inv
}
