package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/taxpilot/docparse/pkg/money"
)

const gstr1ParserVersion = "gstr1_v1"

var (
	g1GSTINLineRE = regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{10}[0-9A-Z]{3}`)
	g1DateTokenRE = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	g1POSTokenRE  = regexp.MustCompile(`^\d{2}-[A-Za-z]`)
	g1NumTokenRE  = regexp.MustCompile(`^[0-9]+(?:,[0-9]{3})*(?:\.[0-9]+)?$`)
)

var g1InvoiceTypes = map[string]struct{}{
	"REGULAR": {}, "SEZ": {}, "DEEMED": {}, "EXP": {}, "EXPORT": {},
}

// ParseGstr1 fills a Gstr1 from a FORM GSTR-1 text extract: the header
// block plus table 4A (B2B invoices). B2B rows wrap across lines in the
// extract, so each row is stitched from its GSTIN-prefixed line down to the
// next GSTIN line and then tokenized.
func ParseGstr1(rawText string) *Gstr1 {
	var lines []string
	for _, ln := range strings.Split(rawText, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}
	text := strings.Join(lines, "\n")

	out := &Gstr1{
		B2BInvoices:   []B2BInvoice{},
		Warnings:      []string{},
		ParserVersion: gstr1ParserVersion,
	}

	out.GSTIN = firstGroup(g3bGSTINRE, text)
	out.LegalName = firstGroup(g3bLegalRE, text)
	out.TradeName = firstGroup(g3bTradeRE, text)

	if m := g3bPeriodRE.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[2])
		if month, ok := monthFromName(m[1]); ok {
			out.Period = Period{
				Month: int(month),
				Year:  year,
				Label: fmt.Sprintf("%s %d", month.String(), year),
			}
		} else {
			out.Period = Period{Year: year}
		}
	} else {
		out.Warnings = append(out.Warnings, "period_not_found")
	}

	b2bStart := -1
	for i, ln := range lines {
		if strings.Contains(ln, "B2B") &&
			(strings.Contains(ln, "4A") || strings.Contains(ln, "B2B Invoices")) {
			b2bStart = i
			break
		}
	}

	if b2bStart < 0 {
		out.Warnings = append(out.Warnings, "b2b_section_not_found")
	} else {
		parseB2BRows(lines, b2bStart, out)
		if len(out.B2BInvoices) == 0 {
			out.Warnings = append(out.Warnings, "b2b_invoices_not_parsed")
		}
	}

	if out.GSTIN == "" {
		out.Warnings = append(out.Warnings, "gstin_missing")
	}
	if out.Period.Month == 0 || out.Period.Year == 0 {
		out.Warnings = append(out.Warnings, "period_incomplete")
	}
	return out
}

func parseB2BRows(lines []string, b2bStart int, out *Gstr1) {
	headerIdx := -1
	for j := b2bStart; j < min(b2bStart+10, len(lines)); j++ {
		if strings.Contains(lines[j], "GSTIN") && strings.Contains(lines[j], "Invoice Number") {
			headerIdx = j
			break
		}
	}
	i := b2bStart + 1
	if headerIdx >= 0 {
		i = headerIdx + 1
	}

	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}
		if isB2BSectionEnd(line) {
			break
		}
		if !g1GSTINLineRE.MatchString(line) {
			i++
			continue
		}

		rowLines := []string{line}
		j := i + 1
		for j < len(lines) {
			nxt := strings.TrimSpace(lines[j])
			if nxt == "" {
				j++
				continue
			}
			if g1GSTINLineRE.MatchString(nxt) || isB2BSectionEnd(nxt) {
				break
			}
			rowLines = append(rowLines, nxt)
			j++
		}

		rowText := strings.Join(rowLines, " ")
		tokens := strings.Fields(rowText)
		inv := B2BInvoice{
			CounterpartyGSTIN: tokens[0],
			InvoiceType:       "REGULAR",
		}
		rcSeen := false
		typeSeen := false
		for _, t := range tokens[1:] {
			up := strings.ToUpper(t)
			switch {
			case inv.InvoiceNumber == "" && strings.HasPrefix(up, "INV-"):
				inv.InvoiceNumber = t
			case inv.InvoiceDate == "" && g1DateTokenRE.MatchString(t):
				inv.InvoiceDate = normalizeDateDDMMYYYY(t)
			case inv.PlaceOfSupply == "" && g1POSTokenRE.MatchString(t):
				inv.PlaceOfSupply = t
			case !rcSeen && (up == "Y" || up == "N"):
				inv.ReverseCharge = up == "Y"
				rcSeen = true
			}
			if _, ok := g1InvoiceTypes[up]; ok && !typeSeen {
				inv.InvoiceType = up
				typeSeen = true
			}
		}

		var numTokens []string
		for _, t := range tokens {
			if g1NumTokenRE.MatchString(t) {
				numTokens = append(numTokens, t)
			}
		}
		if len(numTokens) >= 6 {
			tail := numTokens[len(numTokens)-5:]
			inv.TaxableValue = amountOrZero(tail[0])
			inv.IGST = amountOrZero(tail[1])
			inv.CGST = amountOrZero(tail[2])
			inv.SGST = amountOrZero(tail[3])
			inv.Cess = amountOrZero(tail[4])
		} else {
			out.Warnings = append(out.Warnings, "b2b_numeric_partial_parse: "+rowText)
		}

		out.B2BInvoices = append(out.B2BInvoices, inv)
		i = j
	}
}

func isB2BSectionEnd(line string) bool {
	return strings.HasPrefix(line, "5.") ||
		strings.Contains(line, "B2C") ||
		strings.Contains(line, "HSN-wise") ||
		strings.HasPrefix(line, "-----")
}

// Gstr1OutwardTotal sums B2B taxable values.
func Gstr1OutwardTotal(g *Gstr1) float64 {
	total := 0.0
	for _, inv := range g.B2BInvoices {
		total += inv.TaxableValue
	}
	return money.Round2(total)
}
