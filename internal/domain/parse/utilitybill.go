package parse

import (
	"regexp"
	"strings"
)

var (
	ubAmountDueRE = regexp.MustCompile(`(?i)\b(amount\s*due|total\s*due|balance\s*due)\b[^0-9$₹]*` + amountPat)
	ubDueDateRE   = regexp.MustCompile(`(?i)\b(due\s*date|last\s*date\s*to\s*pay)\b[^0-9]*` + datePat)
	ubAccountRE   = regexp.MustCompile(`(?i)\b(account\s*(?:no|number|#))\b[:\-\s]*([A-Z0-9\-]{5,})`)
	ubServiceRE   = regexp.MustCompile(`(?i)\b(service\s*(?:period|from|to))\b[:\-\s]*(.+)`)
)

// ParseUtilityBill extracts provider, account and payment terms from a
// utility bill.
func ParseUtilityBill(text string) *UtilityBill {
	u := &UtilityBill{
		Currency: detectCurrency(text),
		Warnings: []string{},
	}

	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			u.Provider.Name = line
			break
		}
	}

	if m := ubAccountRE.FindStringSubmatch(text); m != nil {
		u.AccountNumber = m[2]
	}
	if m := ubDueDateRE.FindStringSubmatch(text); m != nil {
		u.DueDate = normalizeDate(m[2])
	}
	if m := ubAmountDueRE.FindStringSubmatch(text); m != nil {
		u.AmountDue = parseNum(m[2])
	}
	if m := ubServiceRE.FindStringSubmatch(text); m != nil {
		u.ServicePeriod = strings.TrimSpace(m[2])
	}
	return u
}
