package canonical

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/docparse/internal/domain/parse"
)

// Normalize routes a parsed record to the normalizer for its document
// type. Unknown types and records that do not match the declared type wrap
// through the fallback path — normalization never fails.
func Normalize(docType string, record any) *Document {
	switch strings.ToLower(docType) {
	case "invoice", "gst_invoice":
		if inv, ok := record.(*parse.Invoice); ok {
			return FromInvoice(inv, strings.ToLower(docType))
		}
	case "sales_register", "purchase_register":
		if reg, ok := record.(*parse.Register); ok {
			return FromRegister(reg)
		}
	case "gstr3b", "gstr-3b":
		if g, ok := record.(*parse.Gstr3b); ok {
			return FromGstr3b(g)
		}
	case "gstr":
		if g, ok := record.(*parse.Gstr); ok {
			return FromGstr(g)
		}
	case "gstr1", "gstr-1":
		if g, ok := record.(*parse.Gstr1); ok {
			return FromGstr1(g)
		}
	case "gstr2b", "gstr-2b":
		if g, ok := record.(*parse.Gstr2b); ok {
			return FromGstr2b(g)
		}
	case "bank_statement":
		return FromFallback("bank_statement", record)
	}
	return FromFallback(docType, record)
}

// generateDocID derives a stable document id. A known identifier is folded
// into the id directly; otherwise a name-based UUID over the record content
// keeps the id deterministic for identical input.
func generateDocID(docType, identifier string, record any) string {
	if identifier != "" {
		clean := strings.ToLower(identifier)
		clean = strings.ReplaceAll(clean, " ", "-")
		clean = strings.ReplaceAll(clean, "/", "-")
		return docType + "-" + clean
	}
	seed := []byte(docType + ":")
	if data, err := json.Marshal(record); err == nil {
		seed = append(seed, data...)
	}
	return docType + "-" + uuid.NewSHA1(uuid.NameSpaceOID, seed).String()
}

// stateCode is the two-digit state prefix of a GSTIN.
func stateCode(gstin string) string {
	gstin = strings.TrimSpace(gstin)
	if len(gstin) >= 2 {
		return gstin[:2]
	}
	return ""
}

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006",
	"01-02-2006", "01/02/2006", "02-01-06", "02/01/06",
}

// normalizeDate coerces a date string to YYYY-MM-DD. Values already in ISO
// form pass through; anything unparsable is returned unchanged rather than
// dropped.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) >= 10 && raw[4] == '-' && raw[7] == '-' {
		return raw[:10]
	}
	token := raw
	if len(token) > 10 {
		token = token[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return token
}

// breakupFromTaxes folds a flat tax list into per-head amounts by substring
// matching the uppercased type label. A tax line with no amount contributes
// its rate, which some parsers leave as the only number on the line.
func breakupFromTaxes(taxes []parse.TaxLine) Breakup {
	var b Breakup
	for _, tax := range taxes {
		label := strings.ToUpper(tax.Type)
		amount := tax.Amount
		if amount == 0 {
			amount = tax.Rate
		}
		switch {
		case strings.Contains(label, "CGST"):
			b.CGST += amount
		case strings.Contains(label, "SGST"):
			b.SGST += amount
		case strings.Contains(label, "IGST"):
			b.IGST += amount
		case strings.Contains(label, "CESS"):
			b.Cess += amount
		case strings.Contains(label, "TDS"):
			b.TDS += amount
		case strings.Contains(label, "TCS"):
			b.TCS += amount
		}
	}
	return b
}

// periodString renders a parsed period for the canonical period field.
func periodString(p parse.Period) string {
	if p.Label != "" {
		return p.Label
	}
	if p.Month > 0 && p.Year > 0 {
		return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	}
	if p.Start != "" && p.End != "" {
		return p.Start + ".." + p.End
	}
	return ""
}

func fieldValue(f *parse.Field) string {
	if f == nil {
		return ""
	}
	return f.Value
}

func copyWarnings(warnings []string) []string {
	out := make([]string, 0, len(warnings))
	return append(out, warnings...)
}
