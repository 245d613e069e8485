package canonical

import (
	"fmt"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

// FromGstr2b converts a decoded GSTR-2B export into canonical form with
// one entry per B2B row. Document financials come from the export's own
// summary block, which may cover sections beyond B2B.
func FromGstr2b(g *parse.Gstr2b) *Document {
	businessName := g.LegalName
	if businessName == "" {
		businessName = g.TradeName
	}

	breakup := Breakup{
		CGST: g.Summary.TotalCGST,
		SGST: g.Summary.TotalSGST,
		IGST: g.Summary.TotalIGST,
		Cess: g.Summary.TotalCess,
	}
	taxTotal := money.Round2(breakup.Sum())

	entries := make([]Entry, 0, len(g.B2B))
	for i, row := range g.B2B {
		rowBreakup := Breakup{CGST: row.CGST, SGST: row.SGST, IGST: row.IGST, Cess: row.Cess}
		total := row.InvoiceValue
		if total == 0 {
			total = money.Round2(row.TaxableValue + rowBreakup.Sum())
		}
		entries = append(entries, Entry{
			EntryID:     fmt.Sprintf("gstr2b-entry-%d", i+1),
			EntryType:   "gstr2b_invoice",
			EntryDate:   row.InvoiceDate,
			EntryNumber: row.InvoiceNumber,
			Party: &PartyRef{
				Name:      row.SupplierName,
				GSTIN:     row.SupplierGSTIN,
				StateCode: stateCode(row.SupplierGSTIN),
			},
			Amounts: Amounts{
				TaxableValue: row.TaxableValue,
				TaxBreakup:   rowBreakup,
				Total:        total,
			},
			LineItems: []LineItem{},
			DocSpecific: &EntryDetails{
				Section:         "b2b",
				PlaceOfSupply:   row.PlaceOfSupply,
				ITCAvailability: row.ITCAvailability,
				Reason:          row.Reason,
			},
		})
	}

	business := PartyRef{
		Name:      businessName,
		GSTIN:     g.GSTIN,
		StateCode: stateCode(g.GSTIN),
	}

	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       "gstr2b",
		DocID:         generateDocID("gstr2b", g.Period.Label, g),
		Period:        g.Period.Label,
		Metadata: Metadata{
			SourceFormat:  "gstr2b",
			ParserVersion: g.Meta.ParserVersion,
			Warnings:      copyWarnings(g.Warnings),
		},
		Business: business,
		Parties:  Parties{Primary: &business},
		Financials: Financials{
			Currency:   "INR",
			Subtotal:   g.Summary.TotalTaxableValue,
			TaxBreakup: breakup,
			TaxTotal:   taxTotal,
			GrandTotal: money.Round2(g.Summary.TotalTaxableValue + taxTotal),
		},
		Entries: entries,
		DocSpecific: &Gstr2bDetails{
			GstrForm:  "GSTR-2B",
			LegalName: businessName,
			TradeName: g.TradeName,
			Summary:   g.Summary,
			B2BCount:  len(g.B2B),
		},
	}
}
