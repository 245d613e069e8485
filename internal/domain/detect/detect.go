// Package detect classifies document text into a supported document type.
// Each candidate type owns a signal set (regex patterns, with bilingual
// English/Hindi variants); hint phrase sets are scanned in a single pass
// with an Aho-Corasick matcher. Scores accumulate per type and a few
// targeted tie-breaks resolve the common ambiguities, in particular GST
// returns that mention bank-like terms.
package detect

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Empirically tuned against the current corpus; flagged for recalibration
// rather than assumed universal.
const (
	// scoreConfidenceDivisor maps a raw score to a default confidence via
	// min(1, score/5).
	scoreConfidenceDivisor = 5.0
	// bankConfidenceDivisor maps structural bank-pattern hits to a
	// confidence via min(1, hits/8).
	bankConfidenceDivisor = 8.0
)

// signal sets per type; Hindi variants cover OCR output from bilingual
// documents.
var keyPatterns = map[DocType][]string{
	Invoice: {
		`\binvoice\b`, `\btax invoice\b`, `\bgstin\b`, `\bbill to\b`, `\binvoice (no|#)\b`,
		`चालान`, `बिल`, `कर\s*चालान`, `टैक्स\s*इनवॉइस`, `जीएसटी\s*चालान`,
	},
	BirthCertificate: {
		`\bbirth certificate\b`, `\bdate of birth\b`, `\bplace of birth\b`,
	},
	EwayBill: {
		`\beway bill\b`, `\bway bill\b`, `\btransport document\b`, `\bvehicle no\b`, `\btransporter\b`,
		`ई[-\s]*वे\s*बिल`, `वे\s*बिल`,
	},
	Gstr: {
		`\bgstr\b`, `\bgst return\b`, `\bgst filing\b`, `\bturnover\b`, `\btaxable value\b`,
		`जीएसटी\s*रिटर्न`, `जीएसटी\s*दाखिल`,
	},
	PurchaseRegister: {
		`\bpurchase register\b`, `\bsupplier gstin\b`, `\bpurchase invoice\b`, `\bpurchase value\b`,
		`खरीद\s*रजिस्टर`, `आपूर्तिकर्ता`,
	},
}

var receiptHints = []string{
	"thank you", "cashier", "pos", "tender", "change", "subtotal", "receipt", "store #", "terminal",
}

var utilityHints = []string{
	"amount due", "total due", "balance due",
	"service period", "bill date", "due date", "tariff", "meter", "kwh",
}

var gstrHints = []string{
	"form gstr-1", "form gstr-3b", "form gstr-2b",
	"gstr-1", "gstr-3b", "gstr 1", "gstr 3b",
	"gst return", "gst summary", "gst portal", "gst.gov.in", "gstn",
	"arn:", "acknowledgement reference number",
	"outward supplies", "taxable value",
}

var bankHints = []string{
	"bank statement", "statement of account",
	"opening balance", "closing balance",
	"neft", "rtgs", "imps", "upi",
	"narration", "txn id", "cheque", "withdrawal", "deposit",
}

var bankChannelHints = []string{"neft", "rtgs", "imps", "upi", "cheque"}

// structural patterns for the dedicated bank scorer.
var bankPatterns = []string{
	`statement\s+period`,
	`\bmicr\b`,
	`(?s)\bdate\b.*\b(narration|description)\b.*\bdebit\b.*\bcredit\b.*\bbalance\b`,
	`\b(neft|imps|upi|rtgs|cheque)\b`,
	`(opening|closing)\s+balance`,
	`\bbranch\b`,
}

type hintSet struct {
	matcher *ahocorasick.Matcher
	phrases []string
}

func newHintSet(phrases []string) hintSet {
	return hintSet{matcher: ahocorasick.NewStringMatcher(phrases), phrases: phrases}
}

// hits counts distinct phrases present in the (lowercased) text.
func (h hintSet) hits(low string) int {
	return len(h.matcher.Match([]byte(low)))
}

// Detector scores cleaned text against all known document types. Build one
// at startup with New and share it freely; it is immutable.
type Detector struct {
	keys         map[DocType][]*regexp.Regexp
	bankScorer   []*regexp.Regexp
	receipt      hintSet
	utility      hintSet
	gstr         hintSet
	bank         hintSet
	bankChannels hintSet
}

// New compiles all detection tables. Pattern compilation failures are
// programming errors and panic rather than being swallowed.
func New() *Detector {
	d := &Detector{
		keys:         make(map[DocType][]*regexp.Regexp, len(keyPatterns)),
		receipt:      newHintSet(receiptHints),
		utility:      newHintSet(utilityHints),
		gstr:         newHintSet(gstrHints),
		bank:         newHintSet(bankHints),
		bankChannels: newHintSet(bankChannelHints),
	}
	for t, pats := range keyPatterns {
		for _, p := range pats {
			d.keys[t] = append(d.keys[t], regexp.MustCompile(p))
		}
	}
	for _, p := range bankPatterns {
		d.bankScorer = append(d.bankScorer, regexp.MustCompile(`(?i)`+p))
	}
	return d
}

// ScoreBank runs only the structural bank scorer: (hits, min(1, hits/8)).
func (d *Detector) ScoreBank(text string) (int, float64) {
	hits := 0
	for _, re := range d.bankScorer {
		if re.MatchString(text) {
			hits++
		}
	}
	conf := float64(hits) / bankConfidenceDivisor
	if conf > 1 {
		conf = 1
	}
	return hits, conf
}

// Detect scores the cleaned text and returns the winning type with the full
// score and confidence maps. All-zero scores yield Unknown.
func (d *Detector) Detect(text string) Result {
	low := strings.ToLower(text)

	scores := map[DocType]int{
		Invoice: 0, BirthCertificate: 0, EwayBill: 0, Gstr: 0, PurchaseRegister: 0,
		Receipt: 0, UtilityBill: 0, BankStatement: 0,
	}
	confidences := make(map[DocType]float64, len(scores))

	for t, regs := range d.keys {
		for _, re := range regs {
			if re.MatchString(low) {
				scores[t]++
			}
		}
	}

	// receipt heuristics
	if d.receipt.hits(low) > 0 {
		scores[Receipt] += 2
	}
	if strings.Count(low, "\n") > 10 && strings.Contains(low, "total") && !strings.Contains(low, "invoice") {
		scores[Receipt]++
	}

	// utility bill heuristics
	if d.utility.hits(low) > 0 {
		scores[UtilityBill] += 2
	}

	// register heuristics
	if strings.Contains(low, "sales register") || strings.Contains(low, "sales summary") {
		scores[SalesRegister] += 4
	}
	if strings.Contains(low, "customer gstin") && strings.Contains(low, "invoice value") {
		scores[SalesRegister] += 2
	}
	if strings.Contains(low, "purchase register") {
		scores[PurchaseRegister] += 4
	}
	if strings.Contains(low, "supplier gstin") && strings.Contains(low, "invoice value") {
		scores[PurchaseRegister] += 2
	}
	if strings.Contains(low, "purchase value") && strings.Contains(low, "taxable value") {
		scores[PurchaseRegister]++
	}

	// GST-return hints boost gstr and suppress the bank score: returns
	// routinely mention bank-like terms, the reverse is rare.
	gstrHits := d.gstr.hits(low)
	if gstrHits > 0 {
		scores[Gstr] += gstrHits * 2
		if gstrHits >= 2 {
			scores[Gstr] += 2
			scores[BankStatement] -= gstrHits
			if scores[BankStatement] < 0 {
				scores[BankStatement] = 0
			}
		}
	}

	// bank hints
	if d.bank.hits(low) >= 1 {
		scores[BankStatement] += 2
	}
	if strings.Contains(low, "opening balance") && strings.Contains(low, "closing balance") {
		scores[BankStatement] += 2
	}
	if d.bankChannels.hits(low) >= 2 {
		scores[BankStatement]++
	}
	if strings.Contains(low, "account number") || strings.Contains(low, "statement period") {
		scores[BankStatement]++
	}

	if hits, conf := d.ScoreBank(text); hits > 0 {
		scores[BankStatement] += hits * 2
		if conf > confidences[BankStatement] {
			confidences[BankStatement] = conf
		}
	}

	best := argmax(scores)

	// tie-breaks
	if scores[Gstr] >= scores[BankStatement]+2 && scores[Gstr] >= 3 {
		best = Gstr
	} else if scores[BankStatement] >= scores[best] {
		best = BankStatement
	}

	if best == BankStatement && scores[BankStatement] >= 3 {
		scores[Receipt] = 0
		confidences[Receipt] = 0
	}

	if scores[best] <= 0 {
		return Result{Best: Unknown, Scores: scores, Confidences: confidences}
	}

	for t, v := range scores {
		if v <= 0 {
			continue
		}
		conf := float64(v) / scoreConfidenceDivisor
		if conf > 1 {
			conf = 1
		}
		if conf > confidences[t] {
			confidences[t] = conf
		}
	}
	return Result{Best: best, Scores: scores, Confidences: confidences}
}

// argmax picks the highest-scoring type; ties resolve deterministically by
// type name so repeated runs agree.
func argmax(scores map[DocType]int) DocType {
	best := Unknown
	bestScore := -1
	for t, v := range scores {
		if v > bestScore || (v == bestScore && best != Unknown && t < best) {
			best = t
			bestScore = v
		}
	}
	return best
}
