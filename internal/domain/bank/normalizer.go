// Package bank normalizes parsed bank statements. It repairs OCR damage in
// dates, amounts and descriptions, applies the correction rules named by a
// parser policy profile, and walks the running balance to score how well
// the statement reconciles against itself.
package bank

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
	"github.com/taxpilot/docparse/pkg/policy"
)

// Input bundles what the normalizer needs from a parsed statement. OCRText
// is the full page text, used only for period inference.
type Input struct {
	OCRText        string
	Transactions   []parse.Transaction
	OpeningBalance *float64
	ClosingBalance *float64
	FallbackYear   int
}

// Result is the normalized statement plus reconciliation diagnostics.
// ReconciliationRate is the share of balance-bearing rows whose residual
// fell within the profile tolerance; ClosingDrift is the stated closing
// balance minus the computed one.
type Result struct {
	PeriodStart        string              `json:"period_start,omitempty"`
	PeriodEnd          string              `json:"period_end,omitempty"`
	Year               int                 `json:"year"`
	OpeningBalance     *float64            `json:"opening_balance"`
	ClosingBalance     *float64            `json:"closing_balance"`
	Transactions       []parse.Transaction `json:"transactions"`
	Totals             parse.BankTotals    `json:"totals"`
	Warnings           []string            `json:"warnings"`
	ProfileName        string              `json:"profile_name"`
	ReconciliationRate float64             `json:"reconciliation_rate"`
	ClosingDrift       float64             `json:"closing_drift"`
}

var (
	monthDayRE   = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+([0-9]{1,2})\b`)
	mmddFullRE   = regexp.MustCompile(`^([0-9]{1,2})[-/]([0-9]{1,2})(?:[-/]([0-9]{2,4}))?$`)
	mmddLooseRE  = regexp.MustCompile(`([0-9]{1,2})[-/]([0-9]{1,2})`)
	digitPairRE  = regexp.MustCompile(`[0-9]{1,2}`)
	bankISORE    = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	numericRowRE = regexp.MustCompile(`(?i)^[\dO]+$`)
	checkNumRE   = regexp.MustCompile(`(CHECK)\s+([0-9]+)[A-Z]?$`)
	spaceRunRE   = regexp.MustCompile(`\s+`)
)

var monthNums = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// descRepairs maps OCR misreads seen in statement narrations back to the
// canonical wording. Order matters: broader patterns run after the specific
// ones they would otherwise shadow.
var descRepairs = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)preauthorizedcredit`), "PREAUTHORIZED CREDIT"},
	{regexp.MustCompile(`(?i)preauthorized\s*cred[i1]t`), "PREAUTHORIZED CREDIT"},
	{regexp.MustCompile(`(?i)p\s*0\s*s`), "POS"},
	{regexp.MustCompile(`(?i)p0s`), "POS"},
	{regexp.MustCompile(`(?i)po5`), "POS"},
	{regexp.MustCompile(`(?i)pos\s*purcha[s5]e`), "POS PURCHASE"},
	{regexp.MustCompile(`(?i)atm\s*w[1l]th`), "ATM WITH"},
	{regexp.MustCompile(`(?i)auth0rized`), "AUTHORIZED"},
	{regexp.MustCompile(`(?i)in[t1]erest\s*cred[i1]t`), "INTEREST CREDIT"},
	{regexp.MustCompile(`(?i)5ervice`), "SERVICE"},
	{regexp.MustCompile(`(?i)w1th`), "WITH"},
	{regexp.MustCompile(`(?i)c0urt`), "COURT"},
	{regexp.MustCompile(`(?i)depos1t`), "DEPOSIT"},
	{regexp.MustCompile(`(?i)1nterest`), "INTEREST"},
	{regexp.MustCompile(`(?i)atm w1thdrawal`), "ATM WITHDRAWAL"},
}

// Normalize cleans the transactions, runs the profile's correction rules and
// reconciles the running balance. The input slice is not mutated.
func Normalize(in Input, profile policy.Profile) *Result {
	periodStart, periodEnd, year := inferPeriodAndYear(in.OCRText, in.FallbackYear)

	periodMonths := map[int]bool{}
	if periodStart != "" && periodEnd != "" {
		if ps, err := time.Parse("2006-01-02", periodStart); err == nil {
			if pe, err := time.Parse("2006-01-02", periodEnd); err == nil {
				periodMonths[int(ps.Month())] = true
				periodMonths[int(pe.Month())] = true
			}
		}
	}

	normalized := make([]parse.Transaction, len(in.Transactions))
	for i, txn := range in.Transactions {
		tr := txn
		tr.Description = cleanDescription(tr.Description)
		tr.Date = normalizeTxnDate(tr.Date, year, periodMonths)
		tr.Residual = nil
		normalized[i] = tr
	}

	ruleNames := make([]string, 0, len(profile.TxRules))
	for _, name := range profile.TxRules {
		if _, ok := rulesMap[name]; ok {
			ruleNames = append(ruleNames, name)
		}
	}
	var preRules, residRules []string
	for _, name := range ruleNames {
		if residualRules[name] {
			residRules = append(residRules, name)
		} else {
			preRules = append(preRules, name)
		}
	}

	for i := range normalized {
		for _, name := range preRules {
			applyRule(name, &normalized[i], nil)
		}
	}

	warnings := []string{}
	rate := 1.0
	drift := 0.0
	matched := 0
	withinTolerance := 0
	residuals := make([]*float64, len(normalized))

	if in.OpeningBalance != nil {
		previous := money.Round2(*in.OpeningBalance)
		for i := range normalized {
			tr := &normalized[i]
			expected := money.Round2(previous + tr.Credit - tr.Debit)
			if tr.Balance != nil {
				residual := money.Round2(*tr.Balance - expected)
				for _, name := range residRules {
					if applyRule(name, tr, &residual) {
						expected = money.Round2(previous + tr.Credit - tr.Debit)
						residual = money.Round2(*tr.Balance - expected)
					}
				}
				residuals[i] = &residual
				previous = *tr.Balance
				matched++
				if absFloat(residual) <= profile.ResidualTolerance {
					withinTolerance++
				}
			} else {
				previous = expected
			}
		}
		if matched > 0 {
			rate = float64(withinTolerance) / float64(matched)
		}

		deltas := make([]float64, 0, len(normalized)+1)
		deltas = append(deltas, *in.OpeningBalance)
		for _, tr := range normalized {
			deltas = append(deltas, tr.Credit, -tr.Debit)
		}
		computed := money.Sum2(deltas...)
		if in.ClosingBalance != nil {
			drift = money.Round2(*in.ClosingBalance - computed)
			if absFloat(drift) > profile.ResidualTolerance {
				warnings = append(warnings, fmt.Sprintf("Balance drift detected (≈%.2f)", absFloat(drift)))
			}
		}
	}

	debits := make([]float64, len(normalized))
	credits := make([]float64, len(normalized))
	for i, tr := range normalized {
		debits[i] = tr.Debit
		credits[i] = tr.Credit
	}

	out := make([]parse.Transaction, len(normalized))
	for i, tr := range normalized {
		row := parse.Transaction{
			Date:        tr.Date,
			Description: finalizeDescription(tr.Description),
			Debit:       money.Round2(tr.Debit),
			Credit:      money.Round2(tr.Credit),
			Channel:     tr.Channel,
		}
		if tr.Balance != nil {
			bal := money.Round2(*tr.Balance)
			row.Balance = &bal
		}
		if row.Channel == "" && strings.HasPrefix(strings.ToUpper(row.Description), "CHECK") {
			row.Channel = "CHECK"
		}
		if residuals[i] != nil && absFloat(*residuals[i]) > 1.0 {
			r := money.Round2(*residuals[i])
			row.Residual = &r
		}
		out[i] = row
	}

	return &Result{
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Year:           year,
		OpeningBalance: in.OpeningBalance,
		ClosingBalance: in.ClosingBalance,
		Transactions:   out,
		Totals: parse.BankTotals{
			Debits:         money.Sum2(debits...),
			Credits:        money.Sum2(credits...),
			Count:          len(out),
			ClosingBalance: in.ClosingBalance,
		},
		Warnings:           dedupeWarnings(warnings),
		ProfileName:        profile.Name,
		ReconciliationRate: money.Round3(rate),
		ClosingDrift:       drift,
	}
}

// inferPeriodAndYear scans the page text for "<month-name> <day>" pairs and
// takes the earliest and latest as the statement period.
func inferPeriodAndYear(text string, fallbackYear int) (string, string, int) {
	year := fallbackYear
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	var pairs [][2]int
	for _, m := range monthDayRE.FindAllStringSubmatch(strings.ToLower(text), -1) {
		mon, ok := monthNums[m[1]]
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		pairs = append(pairs, [2]int{mon, day})
	}
	if len(pairs) == 0 {
		return "", "", year
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	start, end := pairs[0], pairs[len(pairs)-1]
	startYear := year
	if start[0] > end[0] {
		// A December opening against a January close crossed the year
		// boundary. The month-ordered sort above folds such spans into one
		// calendar year, so this only fires if the ordering ever changes.
		startYear = year - 1
	}
	startDate := fmt.Sprintf("%04d-%02d-%02d", startYear, start[0], start[1])
	endDate := fmt.Sprintf("%04d-%02d-%02d", year, end[0], end[1])
	return startDate, endDate, year
}

// normalizeTxnDate repairs a raw statement date token. Dates the statement
// parser already resolved to ISO pass through untouched; partial tokens are
// resolved month-first against the inferred period months.
func normalizeTxnDate(raw string, year int, periodMonths map[int]bool) string {
	if raw == "" {
		return ""
	}
	cleaned := strings.ReplaceAll(raw, "--", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if bankISORE.MatchString(cleaned) {
		return cleaned
	}

	fallbackMonth := 0
	if len(periodMonths) > 0 {
		months := make([]int, 0, len(periodMonths))
		for m := range periodMonths {
			months = append(months, m)
		}
		sort.Ints(months)
		fallbackMonth = months[0]
	} else if digits := digitPairRE.FindAllString(cleaned, -1); len(digits) > 0 {
		first, _ := strconv.Atoi(digits[0])
		fallbackMonth = first
		if len(digits) > 1 {
			if second, err := strconv.Atoi(digits[1]); err == nil && second <= 12 {
				fallbackMonth = second
			}
		}
	}

	if norm := normDateMMDD(cleaned, year, periodMonths, fallbackMonth); norm != "" {
		return norm
	}
	return normDateMMDD(cleaned, year, nil, 0)
}

// normDateMMDD resolves an ambiguous two-number date token. Both month-day
// orderings are candidates when the numbers allow it; a candidate whose
// month falls inside allowedMonths wins, then fallbackMonth, then the
// token's own order.
func normDateMMDD(token string, year int, allowedMonths map[int]bool, fallbackMonth int) string {
	token = strings.Trim(token, "-/ ")
	if token == "" {
		return ""
	}

	var yearTok string
	m := mmddFullRE.FindStringSubmatch(token)
	if m != nil {
		yearTok = m[3]
	} else {
		m = mmddLooseRE.FindStringSubmatch(token)
		if m == nil {
			return ""
		}
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])

	yearVal := year
	if yearTok != "" {
		yearVal, _ = strconv.Atoi(yearTok)
		if yearVal < 100 {
			yearVal += 2000
		}
	}

	var candidates [][2]int
	if first >= 1 && first <= 12 {
		candidates = append(candidates, [2]int{first, second})
	}
	if second >= 1 && second <= 12 {
		candidates = append(candidates, [2]int{second, first})
	}

	month, day := 0, 0
	if len(allowedMonths) > 0 {
		for _, c := range candidates {
			if allowedMonths[c[0]] {
				month, day = c[0], c[1]
				break
			}
		}
	}
	if month == 0 && fallbackMonth >= 1 && fallbackMonth <= 12 && first >= 1 && first <= 31 {
		month, day = fallbackMonth, first
	}
	if month == 0 && len(candidates) > 0 {
		month, day = candidates[0][0], candidates[0][1]
	}
	if month == 0 {
		month = first
		if month < 1 {
			month = 1
		}
		if month > 12 {
			month = 12
		}
		day = second
	}

	if !validDate(yearVal, month, day) {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", yearVal, month, day)
}

func validDate(year, month, day int) bool {
	if day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// cleanDescription repairs OCR misreads in a narration. Lines that are pure
// digit noise are left alone so the caller can judge them on their own.
func cleanDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return desc
	}
	for _, repair := range descRepairs {
		desc = repair.re.ReplaceAllString(desc, repair.repl)
	}
	if numericRowRE.MatchString(desc) {
		return desc
	}
	desc = checkNumRE.ReplaceAllString(desc, "$1 $2")
	desc = spaceRunRE.ReplaceAllString(desc, " ")
	return strings.TrimSpace(desc)
}

func finalizeDescription(desc string) string {
	if desc == "" {
		return ""
	}
	desc = strings.ReplaceAll(desc, "§", "5")
	desc = strings.ReplaceAll(desc, "—", "-")
	return strings.TrimSpace(desc)
}

func dedupeWarnings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
