package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/taxpilot/docparse/pkg/money"
)

const (
	bankAmtPat  = `-?[₹$]?\s*\d[\d,]*(?:\.\d{1,2})?`
	bankDatePat = `(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|\d{4}[/-]\d{1,2}[/-]\d{1,2})`
)

var (
	bankDebitMarkRE  = regexp.MustCompile(`(?i)\b(debit|dr|withdrawal|atm|pos|upi\s*pay|ach\s*debit)\b`)
	bankCreditMarkRE = regexp.MustCompile(`(?i)\b(credit|cr|deposit|neft|rtgs|imps|upi\s*in|income)\b`)

	bankAccRE       = regexp.MustCompile(`(?i)\b(acc(?:ount)?(?:\s*(?:no|number|#|:))?\s*[:\-]?\s*)([A-Z0-9\-*Xx]{6,})`)
	bankIFSCRE      = regexp.MustCompile(`(?i)\bIFSC\b[:\s-]*([A-Z]{4}0[A-Z0-9]{6})`)
	bankPeriodRE    = regexp.MustCompile(`(?is)statement\s+period.*?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}).*?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	bankAltPeriodRE = regexp.MustCompile(`(?i)(?:period|from)\s*(?:to|-)\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}).*?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)

	bankTxnLineRE   = regexp.MustCompile(`(?i)^\s*` + bankDatePat + `(?:[.,])?\s+(.+)$`)
	bankHeaderRowRE = regexp.MustCompile(`(?i)date\s+(narration|description).*balance`)
	bankNumTokenRE  = regexp.MustCompile(`(?:[₹$]\s*)?(\d[\d,]*(?:\.\d{1,2})?)`)
	bankShortDateRE = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})$`)
	bankYY2DateRE   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2})$`)
	nonDigitRE      = regexp.MustCompile(`[^0-9]`)
)

// channelCues maps a payment channel label to description substrings that
// imply it. Checked in a fixed order so repeated parses agree.
var channelOrder = []string{"UPI", "NEFT", "IMPS", "RTGS", "CHEQUE", "ATM", "POS"}

var channelCues = map[string][]string{
	"UPI":    {"upi", "bharatpe", "phonepe", "paytm"},
	"NEFT":   {"neft"},
	"IMPS":   {"imps"},
	"RTGS":   {"rtgs"},
	"CHEQUE": {"cheque", "chq"},
	"ATM":    {"atm"},
	"POS":    {"pos"},
}

// sections after which transaction rows stop being the main table.
var txnBreakMarkers = []string{
	"account transactions by type",
	"deposits and other credits",
	"withdrawals and other debits",
}

// ParseBankStatement extracts header fields, balances and the transaction
// table from statement text. The classification confidence (when known)
// feeds the low-confidence warning; pass a negative value to skip it.
func ParseBankStatement(text string, confidence float64) *BankStatement {
	cleaned := strings.ReplaceAll(text, "\r", "\n")
	cleaned = regexp.MustCompile(`[ \t]+`).ReplaceAllString(cleaned, " ")
	cleaned = regexp.MustCompile(`\n{2,}`).ReplaceAllString(cleaned, "\n")

	var lines []string
	for _, ln := range strings.Split(cleaned, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	fullText := strings.Join(lines, "\n")

	bs := &BankStatement{
		Currency:     detectCurrency(text),
		Transactions: []Transaction{},
		Warnings:     []string{},
	}

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "bank") {
			bs.BankName = line
			break
		}
	}
	if bs.BankName == "" && len(lines) > 0 {
		bs.BankName = lines[0]
	}

	if m := bankAccRE.FindStringSubmatch(fullText); m != nil {
		bs.AccountNumber = m[2]
		digits := nonDigitRE.ReplaceAllString(m[2], "")
		if len(digits) >= 4 {
			bs.AccountLast4 = digits[len(digits)-4:]
		}
	}
	if m := bankIFSCRE.FindStringSubmatch(fullText); m != nil {
		bs.IFSC = strings.ToUpper(m[1])
	}

	period := bankPeriodRE.FindStringSubmatch(fullText)
	if period == nil {
		period = bankAltPeriodRE.FindStringSubmatch(fullText)
	}
	if period != nil {
		bs.PeriodStart = normBankDate(period[1])
		bs.PeriodEnd = normBankDate(period[2])
	}

	scanHeaderBalances(lines, bs)
	parseTransactionRows(lines, bs)

	debits := make([]float64, 0, len(bs.Transactions))
	credits := make([]float64, 0, len(bs.Transactions))
	for _, t := range bs.Transactions {
		debits = append(debits, t.Debit)
		credits = append(credits, t.Credit)
	}
	bs.Totals = BankTotals{
		Debits:  money.Sum2(debits...),
		Credits: money.Sum2(credits...),
		Count:   len(bs.Transactions),
	}

	inferPeriodFromTxns(bs)

	if bs.ClosingBalance == nil {
		for i := len(bs.Transactions) - 1; i >= 0; i-- {
			if b := bs.Transactions[i].Balance; b != nil {
				bs.ClosingBalance = b
				break
			}
		}
	}
	bs.Totals.ClosingBalance = bs.ClosingBalance

	if len(bs.Transactions) < 10 {
		bs.Warnings = append(bs.Warnings, "Parsed fewer than 10 transactions")
	}
	if confidence >= 0 && confidence < 0.6 {
		bs.Warnings = append(bs.Warnings, fmt.Sprintf("Low classification confidence (%.2f)", confidence))
	}
	checkBalanceDrift(bs)
	bs.Warnings = dedupeStrings(bs.Warnings)
	return bs
}

// scanHeaderBalances looks for opening/closing balances in the statement
// header (first 20 lines).
func scanHeaderBalances(lines []string, bs *BankStatement) {
	limit := min(len(lines), 20)
	for _, line := range lines[:limit] {
		low := strings.ToLower(line)
		if bs.OpeningBalance == nil &&
			(strings.Contains(low, "beginning balance") || strings.Contains(low, "opening balance")) {
			bs.OpeningBalance = amountFromLine(line, false)
		}
		if bs.ClosingBalance == nil &&
			(strings.Contains(low, "ending balance") || strings.Contains(low, "closing balance") || strings.Contains(low, "balance c/f")) {
			amt := amountFromLine(line, false)
			if amt == nil {
				amt = amountFromLine(line, true)
			}
			bs.ClosingBalance = amt
		}
	}
}

// parseTransactionRows walks date-prefixed lines: the last numeric token on
// a row is the running balance, the amount is the last currency-or-decimal
// token before it, and the sign is resolved against the balance delta when
// one is available, else against debit/credit keyword marks.
func parseTransactionRows(lines []string, bs *BankStatement) {
	prevBalance := bs.OpeningBalance
	started := false

	for _, line := range lines {
		low := strings.ToLower(line)
		if containsAnyMarker(low, txnBreakMarkers) {
			if started {
				break
			}
			continue
		}
		if bankHeaderRowRE.MatchString(low) {
			started = true
			continue
		}

		m := bankTxnLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		started = true
		dateRaw := strings.TrimRight(m[1], ".,")
		rest := m[2]

		numeric := bankNumTokenRE.FindAllStringSubmatchIndex(rest, -1)
		if len(numeric) == 0 {
			continue
		}

		balToken := rest[numeric[len(numeric)-1][2]:numeric[len(numeric)-1][3]]
		balance := parseNum(balToken)

		amountIdx := -1
		for i := len(numeric) - 2; i >= 0; i-- {
			tok := rest[numeric[i][2]:numeric[i][3]]
			prefix := strings.TrimSpace(rest[numeric[i][0]:numeric[i][1]])
			if strings.HasPrefix(prefix, "₹") || strings.HasPrefix(prefix, "$") || strings.Contains(tok, ".") {
				amountIdx = i
				break
			}
		}
		if amountIdx < 0 && len(numeric) >= 2 {
			amountIdx = len(numeric) - 2
		}
		if amountIdx < 0 {
			continue
		}

		amountVal := parseNum(rest[numeric[amountIdx][2]:numeric[amountIdx][3]])
		if amountVal == nil {
			continue
		}

		descEnd := numeric[amountIdx][0]
		description := rest
		if descEnd > 0 {
			description = rest[:descEnd]
		}
		description = strings.Trim(description, " -•—")

		txn := Transaction{
			Date:        normBankDate(dateRaw),
			Description: description,
			Balance:     balance,
			Channel:     detectChannel(description),
		}

		if *amountVal < 0 {
			abs := -*amountVal
			if bankCreditMarkRE.MatchString(description) {
				txn.Credit = abs
			} else {
				txn.Debit = abs
			}
		} else if balance != nil && prevBalance != nil {
			delta := money.Round2(*balance - *prevBalance)
			if absFloat(delta-*amountVal) <= absFloat(delta+*amountVal) {
				txn.Credit = *amountVal
			} else {
				txn.Debit = *amountVal
			}
		} else if bankCreditMarkRE.MatchString(description) {
			txn.Credit = *amountVal
		} else {
			txn.Debit = *amountVal
		}

		bs.Transactions = append(bs.Transactions, txn)

		if balance != nil {
			prevBalance = balance
		} else if prevBalance != nil {
			next := money.Round2(*prevBalance + txn.Credit - txn.Debit)
			prevBalance = &next
		}
	}
}

func inferPeriodFromTxns(bs *BankStatement) {
	if len(bs.Transactions) == 0 || (bs.PeriodStart != "" && bs.PeriodEnd != "") {
		return
	}
	var minDate, maxDate string
	for _, t := range bs.Transactions {
		if !isISODate(t.Date) {
			continue
		}
		if minDate == "" || t.Date < minDate {
			minDate = t.Date
		}
		if maxDate == "" || t.Date > maxDate {
			maxDate = t.Date
		}
	}
	if minDate != "" {
		bs.PeriodStart = minDate
		bs.PeriodEnd = maxDate
	}
}

// checkBalanceDrift replays the running balance and warns when the summed
// per-row disagreement exceeds the tolerance.
func checkBalanceDrift(bs *BankStatement) {
	if len(bs.Transactions) == 0 {
		return
	}
	prev := bs.OpeningBalance
	drift := 0.0
	for _, txn := range bs.Transactions {
		if prev != nil && txn.Balance != nil {
			expected := money.Round2(*prev + txn.Credit - txn.Debit)
			delta := absFloat(expected - *txn.Balance)
			if delta > 1.0 {
				drift += delta
			}
		}
		if txn.Balance != nil {
			prev = txn.Balance
		} else if prev != nil {
			next := money.Round2(*prev + txn.Credit - txn.Debit)
			prev = &next
		}
	}
	if drift > 1.0 {
		bs.Warnings = append(bs.Warnings, fmt.Sprintf("Balance drift detected (≈%.2f)", drift))
	}
}

// amountFromLine picks the most plausible amount on a header line: the
// first (or last) token that carries a currency symbol or decimals, else
// any numeric token.
func amountFromLine(line string, preferLast bool) *float64 {
	matches := bankNumTokenRE.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}
	order := make([]int, len(matches))
	for i := range matches {
		if preferLast {
			order[i] = len(matches) - 1 - i
		} else {
			order[i] = i
		}
	}
	for _, i := range order {
		tok := line[matches[i][2]:matches[i][3]]
		prefix := strings.TrimSpace(line[matches[i][0]:matches[i][1]])
		if strings.HasPrefix(prefix, "₹") || strings.HasPrefix(prefix, "$") || strings.Contains(tok, ".") {
			return parseNum(tok)
		}
	}
	i := 0
	if preferLast {
		i = len(matches) - 1
	}
	return parseNum(line[matches[i][2]:matches[i][3]])
}

// normBankDate normalizes statement dates; month-and-day-only tokens come
// back as "--MM-DD" for the bank normalizer to resolve against the period.
func normBankDate(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "O", "0")
	if s == "" {
		return ""
	}
	layouts := []string{
		"02/01/2006", "02-01-2006", "01/02/2006", "01-02-2006",
		"2006/01/02", "2006-01-02", "02/01/06", "02-01-06",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := bankYY2DateRE.FindStringSubmatch(s); m != nil {
		d := fmt.Sprintf("%s-%s-20%s", pad2(m[1]), pad2(m[2]), m[3])
		if norm := normalizeDateDDMMYYYY(d); norm != "" {
			return norm
		}
		return d
	}
	if m := bankShortDateRE.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("--%s-%s", pad2(m[2]), pad2(m[1]))
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func detectChannel(desc string) string {
	low := strings.ToLower(desc)
	for _, name := range channelOrder {
		for _, cue := range channelCues[name] {
			if strings.Contains(low, cue) {
				return name
			}
		}
	}
	return ""
}

func containsAnyMarker(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
