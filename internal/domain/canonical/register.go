package canonical

import (
	"fmt"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

// FromRegister converts a sales or purchase register into canonical form:
// one entry per row, with document-level financials aggregated over the
// rows.
func FromRegister(reg *parse.Register) *Document {
	docType := string(reg.Kind)

	var period string
	if reg.Period != nil {
		period = periodString(*reg.Period)
	}

	taxables := make([]float64, 0, len(reg.Entries))
	cgsts := make([]float64, 0, len(reg.Entries))
	sgsts := make([]float64, 0, len(reg.Entries))
	igsts := make([]float64, 0, len(reg.Entries))
	cesses := make([]float64, 0, len(reg.Entries))
	grands := make([]float64, 0, len(reg.Entries))

	parties := map[string]bool{}
	entries := make([]Entry, 0, len(reg.Entries))
	for i, row := range reg.Entries {
		taxables = append(taxables, row.TaxableValue)
		cgsts = append(cgsts, row.CGST)
		sgsts = append(sgsts, row.SGST)
		igsts = append(igsts, row.IGST)
		cesses = append(cesses, row.Cess)
		grands = append(grands, row.TotalValue)
		if row.PartyName != "" {
			parties[row.PartyName] = true
		}

		var party *PartyRef
		if row.PartyName != "" || row.PartyGSTIN != "" {
			party = &PartyRef{
				Name:      row.PartyName,
				GSTIN:     row.PartyGSTIN,
				StateCode: stateCode(row.PartyGSTIN),
			}
		}

		invoiceType := row.InvoiceType
		if invoiceType == "" {
			invoiceType = "REGULAR"
		}

		entries = append(entries, Entry{
			EntryID:     fmt.Sprintf("entry-%d", i+1),
			EntryType:   "register_entry",
			EntryDate:   normalizeDate(row.InvoiceDate),
			EntryNumber: row.InvoiceNumber,
			Party:       party,
			Amounts: Amounts{
				TaxableValue: row.TaxableValue,
				TaxBreakup: Breakup{
					CGST: row.CGST,
					SGST: row.SGST,
					IGST: row.IGST,
					Cess: row.Cess,
				},
				Total: row.TotalValue,
			},
			LineItems: []LineItem{},
			DocSpecific: &EntryDetails{
				ReverseCharge: row.ReverseCharge,
				InvoiceType:   invoiceType,
				PlaceOfSupply: row.PlaceOfSupply,
			},
		})
	}

	breakup := Breakup{
		CGST: money.Sum2(cgsts...),
		SGST: money.Sum2(sgsts...),
		IGST: money.Sum2(igsts...),
		Cess: money.Sum2(cesses...),
	}

	business := PartyRef{
		GSTIN:     reg.BusinessGSTIN,
		StateCode: stateCode(reg.BusinessGSTIN),
	}

	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       docType,
		DocID:         generateDocID(docType, period, reg),
		Period:        period,
		Metadata: Metadata{
			SourceFormat:  docType,
			ParserVersion: reg.ParserVersion,
			Warnings:      copyWarnings(reg.Warnings),
		},
		Business: business,
		Parties:  Parties{Primary: &business},
		Financials: Financials{
			Currency:   "INR",
			Subtotal:   money.Sum2(taxables...),
			TaxBreakup: breakup,
			TaxTotal:   money.Round2(breakup.Sum()),
			GrandTotal: money.Sum2(grands...),
		},
		Entries: entries,
		DocSpecific: &RegisterDetails{
			TotalInvoices: len(reg.Entries),
			TotalParties:  len(parties),
		},
	}
}
