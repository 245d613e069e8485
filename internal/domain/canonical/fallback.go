package canonical

import "encoding/json"

// FromFallback wraps a record of an unmapped document type in a minimal
// canonical document. The original record rides along under doc_specific
// and a warning marks the degraded normalization.
func FromFallback(docType string, record any) *Document {
	warnings := append(recordWarnings(record), "fallback_canonical_format")
	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       docType,
		DocID:         generateDocID(docType, "", record),
		Metadata: Metadata{
			SourceFormat:  docType,
			ParserVersion: "unknown",
			Warnings:      warnings,
		},
		Financials:  Financials{Currency: "INR"},
		Entries:     []Entry{},
		DocSpecific: record,
	}
}

// recordWarnings pulls the warnings list out of an arbitrary record via
// its JSON form.
func recordWarnings(record any) []string {
	out := []string{}
	data, err := json.Marshal(record)
	if err != nil {
		return out
	}
	var m struct {
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return out
	}
	return append(out, m.Warnings...)
}
