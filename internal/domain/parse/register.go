package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/taxpilot/docparse/pkg/money"
)

// Canonical register column names.
const (
	colInvoiceNumber = "invoice_number"
	colInvoiceDate   = "invoice_date"
	colPartyName     = "party_name"
	colPartyGSTIN    = "party_gstin"
	colPlaceOfSupply = "place_of_supply"
	colReverseCharge = "reverse_charge"
	colInvoiceType   = "invoice_type"
	colTaxableValue  = "taxable_value"
	colIGST          = "igst"
	colCGST          = "cgst"
	colSGST          = "sgst"
	colCess          = "cess"
	colTotalValue    = "total_value"
)

var (
	regDateLineRE   = regexp.MustCompile(`^\d{2}[-/]\d{2}[-/]\d{4}\b`)
	regGSTINLabelRE = regexp.MustCompile(`(?i)GSTIN:\s*([0-9A-Z]{15})`)
	regAmountRE     = regexp.MustCompile(`^-?[0-9]+(?:\.[0-9]+)?$`)
	regGSTINTokenRE = regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{10}[0-9A-Z]{3}$`)
	regHeaderNormRE = regexp.MustCompile(`[\s._/-]+`)
	regPageRE       = regexp.MustCompile(`(?i)^page\s+\d+\s+of\s+\d+`)
	regRuleRE       = regexp.MustCompile(`^-{5,}$`)
	regMultiSpaceRE = regexp.MustCompile(`\s{2,}`)
)

// headerSynonyms maps normalized header cells to canonical columns; the
// party columns cover both customer (sales) and supplier (purchase)
// spellings so the table works for either register flavour.
var headerSynonyms = map[string]string{
	"invoicedate": colInvoiceDate, "billdate": colInvoiceDate, "date": colInvoiceDate, "docdate": colInvoiceDate,
	"invoiceno": colInvoiceNumber, "invoicenumber": colInvoiceNumber, "billno": colInvoiceNumber,
	"billnumber": colInvoiceNumber, "docno": colInvoiceNumber, "refno": colInvoiceNumber,
	"customername": colPartyName, "buyername": colPartyName, "partyname": colPartyName,
	"suppliername": colPartyName, "vendorname": colPartyName,
	"customergstin": colPartyGSTIN, "buyergstin": colPartyGSTIN, "gstin": colPartyGSTIN,
	"partygstin": colPartyGSTIN, "supgstin": colPartyGSTIN, "suppliergstin": colPartyGSTIN, "vendorgstin": colPartyGSTIN,
	"placeofsupply": colPlaceOfSupply, "pos": colPlaceOfSupply,
	"reversecharge": colReverseCharge, "rcm": colReverseCharge,
	"invoicetype": colInvoiceType, "doctype": colInvoiceType, "type": colInvoiceType,
	"taxablevalue": colTaxableValue, "taxableamount": colTaxableValue, "taxable": colTaxableValue,
	"igst": colIGST, "igstamount": colIGST,
	"cgst": colCGST, "cgstamount": colCGST,
	"sgst": colSGST, "sgstamount": colSGST,
	"cess": colCess, "cessamount": colCess,
	"total": colTotalValue, "invoicevalue": colTotalValue, "totalvalue": colTotalValue, "grossamount": colTotalValue,
}

func detectDelimiter(headerLine string) string {
	switch {
	case strings.Contains(headerLine, ","):
		return ","
	case strings.Contains(headerLine, "\t"):
		return "\t"
	case strings.Contains(headerLine, ";"):
		return ";"
	}
	return "spaces"
}

func splitRow(line, delimiter string) []string {
	line = strings.TrimRight(line, "\r\n")
	var parts []string
	if delimiter == "spaces" {
		parts = regMultiSpaceRE.Split(strings.TrimSpace(line), -1)
	} else {
		parts = strings.Split(line, delimiter)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeHeaderCell(h string) string {
	return regHeaderNormRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "")
}

// mapHeaders resolves header cells to canonical columns, falling back to a
// fuzzy match for OCR-damaged cells ("Taxabie Value" and friends).
func mapHeaders(headerCells []string) map[int]string {
	mapping := make(map[int]string, len(headerCells))
	for idx, cell := range headerCells {
		norm := normalizeHeaderCell(cell)
		if canon, ok := headerSynonyms[norm]; ok {
			mapping[idx] = canon
			continue
		}
		if len(norm) < 4 {
			continue
		}
		bestRank := 3
		best := ""
		for syn, canon := range headerSynonyms {
			if len(syn) < 4 {
				continue
			}
			if rank := fuzzy.LevenshteinDistance(norm, syn); rank < bestRank {
				bestRank = rank
				best = canon
			}
		}
		if best != "" {
			mapping[idx] = best
		}
	}
	return mapping
}

func assignRegisterCell(entry *RegisterEntry, canon, val string) {
	switch canon {
	case colInvoiceNumber:
		entry.InvoiceNumber = val
	case colInvoiceDate:
		if d := normalizeRegisterDate(val); d != "" {
			entry.InvoiceDate = d
		} else {
			entry.InvoiceDate = val
		}
	case colPartyName:
		entry.PartyName = val
	case colPartyGSTIN:
		entry.PartyGSTIN = val
	case colPlaceOfSupply:
		entry.PlaceOfSupply = val
	case colReverseCharge:
		up := strings.ToUpper(strings.TrimSpace(val))
		entry.ReverseCharge = strings.HasPrefix(up, "Y") || strings.HasPrefix(up, "T")
	case colInvoiceType:
		if val != "" {
			entry.InvoiceType = val
		}
	case colTaxableValue:
		entry.TaxableValue = amountOrZero(val)
	case colIGST:
		entry.IGST = amountOrZero(val)
	case colCGST:
		entry.CGST = amountOrZero(val)
	case colSGST:
		entry.SGST = amountOrZero(val)
	case colCess:
		entry.Cess = amountOrZero(val)
	case colTotalValue:
		entry.TotalValue = amountOrZero(val)
	}
}

// normalizeRegisterDate accepts ISO dates as-is and flips DD-MM-YYYY.
func normalizeRegisterDate(val string) string {
	val = strings.TrimSpace(val)
	if isISODate(val) {
		return val
	}
	return normalizeDateDDMMYYYY(val)
}

// backfillTotal completes total_value from taxable plus the heads when the
// export omits the column.
func backfillTotal(entry *RegisterEntry) {
	if entry.TotalValue == 0 && entry.TaxableValue > 0 {
		entry.TotalValue = money.Round2(entry.TaxableValue + entry.IGST + entry.CGST + entry.SGST + entry.Cess)
	}
}

// parseFixedWidthRow handles single-space register exports: date, invoice
// number, a multi-word party name anchored by the GSTIN token, place of
// supply, then six amounts.
func parseFixedWidthRow(line string) (RegisterEntry, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 8 || !regDateLineRE.MatchString(tokens[0]) {
		return RegisterEntry{}, false
	}

	gstinIdx := -1
	for idx := 2; idx < len(tokens); idx++ {
		if regGSTINTokenRE.MatchString(tokens[idx]) {
			gstinIdx = idx
			break
		}
	}
	if gstinIdx < 3 || gstinIdx+1 >= len(tokens) {
		return RegisterEntry{}, false
	}

	var numeric []string
	for _, t := range tokens[gstinIdx+2:] {
		if regAmountRE.MatchString(t) {
			numeric = append(numeric, t)
		}
	}
	if len(numeric) < 6 {
		return RegisterEntry{}, false
	}

	date := normalizeRegisterDate(tokens[0])
	if date == "" {
		date = tokens[0]
	}
	return RegisterEntry{
		InvoiceNumber: tokens[1],
		InvoiceDate:   date,
		PartyName:     strings.Join(tokens[2:gstinIdx], " "),
		PartyGSTIN:    tokens[gstinIdx],
		PlaceOfSupply: tokens[gstinIdx+1],
		InvoiceType:   "REGULAR",
		TaxableValue:  amountOrZero(numeric[0]),
		IGST:          amountOrZero(numeric[1]),
		CGST:          amountOrZero(numeric[2]),
		SGST:          amountOrZero(numeric[3]),
		Cess:          amountOrZero(numeric[4]),
		TotalValue:    amountOrZero(numeric[5]),
		Raw:           tokens,
	}, true
}

// registerPeriod reads the "<kind> register - March 2024" title line.
func registerPeriod(text, kindWord string) *Period {
	re := regexp.MustCompile(`(?i)` + kindWord + ` register\s*-\s*([A-Za-z]+)\s+(\d{4})`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	month, ok := monthFromName(m[1])
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return periodFromMonthYear(month, year)
}

// RegisterTotalTaxable sums entry taxable values.
func RegisterTotalTaxable(r *Register) float64 {
	total := 0.0
	for _, e := range r.Entries {
		total += e.TaxableValue
	}
	return money.Round2(total)
}
