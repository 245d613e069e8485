package bank

import (
	"regexp"
	"strings"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

// A correction rule mutates a transaction in place and reports whether it
// fired. Residual rules additionally receive the current balance residual;
// pre-rules get a nil residual.
type ruleFunc func(tr *parse.Transaction, residual *float64) bool

var rulesMap = map[string]ruleFunc{
	"interest_minor_amount": interestMinorAmount,
	"fix_check_plus_50":     fixCheckPlus50,
	"join_neft_ref":         joinNEFTRef,
}

// residualRules names the rules that run inside the balance walk, after the
// residual for the row is known. Everything else in rulesMap is a pre-rule.
var residualRules = map[string]bool{
	"fix_check_plus_50": true,
}

var (
	checkyRE  = regexp.MustCompile(`(?i)\b(check|pos\s+purchase|atm|withdrawal)\b`)
	neftRefRE = regexp.MustCompile(`(?i)(\bNEFT\b\S*)\s+([A-Z0-9]{6,})`)
)

// interestMinorAmount repairs interest credits that OCR inflated by a factor
// of 100, typically a lost decimal point.
func interestMinorAmount(tr *parse.Transaction, _ *float64) bool {
	desc := strings.ToLower(tr.Description)
	if strings.Contains(desc, "interest") && strings.Contains(desc, "credit") && tr.Credit >= 10 {
		tr.Credit = money.Round2(tr.Credit / 100)
		return true
	}
	return false
}

// fixCheckPlus50 absorbs a ~50 residual into a suspiciously small cheque or
// card debit, a recurring misread where a leading "5" is dropped from the
// amount column.
func fixCheckPlus50(tr *parse.Transaction, residual *float64) bool {
	if residual == nil {
		return false
	}
	r := *residual
	approx50 := absFloat(r) >= 48 && absFloat(r) <= 52
	looksDebit := checkyRE.MatchString(tr.Description) || tr.Debit > 0
	smallAmt := tr.Debit > 0 && tr.Debit < 10
	if approx50 && looksDebit && smallAmt {
		tr.Debit = money.Round2(tr.Debit - r)
		return true
	}
	return false
}

// joinNEFTRef collapses the stray whitespace OCR inserts inside NEFT
// reference numbers.
func joinNEFTRef(tr *parse.Transaction, _ *float64) bool {
	if tr.Description == "" {
		return false
	}
	cleaned := neftRefRE.ReplaceAllString(tr.Description, "$1-$2")
	if cleaned != tr.Description {
		tr.Description = cleaned
		return true
	}
	return false
}

func applyRule(name string, tr *parse.Transaction, residual *float64) bool {
	fn, ok := rulesMap[name]
	if !ok {
		return false
	}
	return fn(tr, residual)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
