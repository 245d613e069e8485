package parse

import (
	"regexp"
	"strings"
)

var (
	ubAmountDueHindiRE = regexp.MustCompile(`(?i)(?:राशि\s*देय|कुल\s*देय|शेष\s*देय|\b(?:amount\s*due|total\s*due|balance\s*due)\b)[^0-9$₹]*` + amountPat)
	ubDueDateHindiRE   = regexp.MustCompile(`(?i)(?:देय\s*तिथि|अंतिम\s*भुगतान\s*तिथि|\b(?:due\s*date|last\s*date\s*to\s*pay)\b)[^0-9]*` + datePat)
	ubAccountHindiRE   = regexp.MustCompile(`(?i)(?:खाता\s*(?:संख्या|नंबर|#)|\baccount\s*(?:no|number|#))[:\-\s]*([A-Z0-9\-]{5,})`)
	ubServiceHindiRE   = regexp.MustCompile(`(?i)(?:सेवा\s*अवधि|\bservice\s*(?:period|from|to)\b)[:\-\s]*(.+)`)
)

// ParseUtilityBillHindi extracts provider, account and payment terms from
// a utility bill labelled in Devanagari. Every pattern accepts the Latin
// label too, so the bill may mix scripts freely.
func ParseUtilityBillHindi(text string) *UtilityBill {
	u := &UtilityBill{
		Currency: detectCurrencyHindi(text),
		Warnings: []string{},
	}

	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			u.Provider.Name = line
			break
		}
	}

	if m := ubAccountHindiRE.FindStringSubmatch(text); m != nil {
		u.AccountNumber = m[1]
	} else if m := ubAccountRE.FindStringSubmatch(text); m != nil {
		u.AccountNumber = m[2]
	}
	if m := ubDueDateHindiRE.FindStringSubmatch(text); m != nil {
		u.DueDate = normalizeDate(m[1])
	} else if m := ubDueDateRE.FindStringSubmatch(text); m != nil {
		u.DueDate = normalizeDate(m[2])
	}
	if m := ubAmountDueHindiRE.FindStringSubmatch(text); m != nil {
		u.AmountDue = parseNum(m[1])
	} else if m := ubAmountDueRE.FindStringSubmatch(text); m != nil {
		u.AmountDue = parseNum(m[2])
	}
	if m := ubServiceHindiRE.FindStringSubmatch(text); m != nil {
		u.ServicePeriod = strings.TrimSpace(m[1])
	} else if m := ubServiceRE.FindStringSubmatch(text); m != nil {
		u.ServicePeriod = strings.TrimSpace(m[2])
	}
	return u
}
