// Package money provides amount parsing and rounding for Indian financial
// documents. OCR output is noisy, so parsing tolerates currency symbols,
// thousands separators, dash placeholders and common digit misreads.
// Precision-sensitive rounding goes through shopspring/decimal.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	crDrSuffix   = regexp.MustCompile(`(?i)(cr|dr)$`)
	nonAmount    = regexp.MustCompile(`[^0-9.\-]`)
	ocrDigitPair = strings.NewReplacer(
		"§", "5",
		"O", "0", "o", "0",
		"I", "1", "l", "1",
		"—", "-", "–", "-",
	)
)

// CleanOCRDigits repairs digit characters commonly mangled by OCR inside an
// amount token: O→0, I/l→1, §/S→5 and unicode dashes.
func CleanOCRDigits(s string) string {
	s = ocrDigitPair.Replace(s)
	s = strings.ReplaceAll(s, "S", "5")
	return strings.TrimSpace(s)
}

// ParseAmount converts a raw amount token into a float. Empty tokens and
// dash placeholders parse as zero. Returns ok=false when the token carries
// no usable number at all.
func ParseAmount(raw string) (float64, bool) {
	token := strings.TrimSpace(raw)
	if token == "" || token == "-" || token == "--" || token == "—" {
		return 0, true
	}
	token = strings.ReplaceAll(token, "₹", "")
	token = strings.ReplaceAll(token, "$", "")
	token = strings.ReplaceAll(token, ",", "")
	token = crDrSuffix.ReplaceAllString(token, "")
	token = nonAmount.ReplaceAllString(token, "")
	if token == "" || token == "-" {
		return 0, false
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseOCRAmount cleans OCR digit confusions first, then parses.
func ParseOCRAmount(raw string) (float64, bool) {
	return ParseAmount(CleanOCRDigits(raw))
}

// Round2 rounds half away from zero to two decimal places, the convention
// for currency amounts throughout the pipeline.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round3 rounds to three decimal places (used for rates like the bank
// reconciliation rate).
func Round3(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}

// Sum2 adds a series of amounts and rounds the result to two decimals in a
// single decimal-space pass, avoiding drift from repeated float addition.
func Sum2(vals ...float64) float64 {
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}
