package canonical

import (
	"fmt"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

// FromGstr3b converts a parsed GSTR-3B into canonical form. The return is
// period-based, so entries are summary sections (outward supplies, reverse
// charge inward supplies), not individual invoices.
func FromGstr3b(g *parse.Gstr3b) *Document {
	period := periodString(g.Period)
	businessName := g.LegalName
	if businessName == "" {
		businessName = g.TradeName
	}

	out := g.OutwardSupplies
	rc := g.ReverseChargeInwardSupplies

	totalTaxable := out.TaxableValue + rc.TaxableValue
	totalBreakup := Breakup{
		CGST: out.CGST + rc.CGST,
		SGST: out.SGST + rc.SGST,
		IGST: out.IGST + rc.IGST,
		Cess: out.Cess + rc.Cess,
	}
	totalTax := money.Round2(totalBreakup.Sum())

	var entries []Entry
	if out.TaxableValue > 0 || totalBreakup.CGST > 0 || totalBreakup.SGST > 0 || totalBreakup.IGST > 0 {
		entries = append(entries, supplyEntry("gstr3b-outward-supplies", "OUTWARD", "outward_taxable", out))
	}
	if rc.TaxableValue > 0 || rc.CGST > 0 || rc.SGST > 0 || rc.IGST > 0 {
		entries = append(entries, supplyEntry("gstr3b-reverse-charge", "REVERSE_CHARGE", "reverse_charge_inward", rc))
	}
	if entries == nil {
		entries = []Entry{}
	}

	business := PartyRef{
		Name:      businessName,
		GSTIN:     g.GSTIN,
		StateCode: stateCode(g.GSTIN),
	}

	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       "gstr3b",
		DocID:         generateDocID("gstr3b", period, g),
		Period:        period,
		Metadata: Metadata{
			SourceFormat:  "gstr3b",
			ParserVersion: g.ParserVersion,
			Warnings:      copyWarnings(g.Warnings),
		},
		Business: business,
		Parties:  Parties{Primary: &business},
		Financials: Financials{
			Currency:   "INR",
			Subtotal:   money.Round2(totalTaxable),
			TaxBreakup: totalBreakup,
			TaxTotal:   totalTax,
			GrandTotal: money.Round2(totalTaxable + totalTax),
		},
		Entries: entries,
		DocSpecific: &Gstr3bDetails{
			GstrForm:                    "GSTR-3B",
			LegalName:                   g.LegalName,
			TradeName:                   g.TradeName,
			OutwardSupplies:             out,
			ReverseChargeInwardSupplies: rc,
			InputTaxCredit:              ITCDetails{Total: g.InputTaxCredit.Total},
			TaxPayable:                  g.TaxPayable,
			TaxPaid:                     g.TaxPaid,
			ExemptNilNonGSTSupplies:     g.ExemptNilNonGSTSupplies,
			Verification:                g.Verification,
		},
	}
}

func supplyEntry(id, number, supplyType string, block parse.SupplyBlock) Entry {
	breakup := Breakup{
		CGST: block.CGST,
		SGST: block.SGST,
		IGST: block.IGST,
		Cess: block.Cess,
	}
	return Entry{
		EntryID:     id,
		EntryType:   "gstr_entry",
		EntryNumber: number,
		Amounts: Amounts{
			TaxableValue: block.TaxableValue,
			TaxBreakup:   breakup,
			Total:        money.Round2(block.TaxableValue + breakup.Sum()),
		},
		LineItems:   []LineItem{},
		DocSpecific: &EntryDetails{SupplyType: supplyType},
	}
}

// FromGstr1 converts a parsed GSTR-1 into canonical form using the same
// shape as GSTR-3B. The form has no summary sections in the extract, so
// the B2B invoice rows become per-invoice entries.
func FromGstr1(g *parse.Gstr1) *Document {
	period := periodString(g.Period)
	businessName := g.LegalName
	if businessName == "" {
		businessName = g.TradeName
	}

	taxables := make([]float64, 0, len(g.B2BInvoices))
	cgsts := make([]float64, 0, len(g.B2BInvoices))
	sgsts := make([]float64, 0, len(g.B2BInvoices))
	igsts := make([]float64, 0, len(g.B2BInvoices))
	cesses := make([]float64, 0, len(g.B2BInvoices))

	entries := make([]Entry, 0, len(g.B2BInvoices))
	for i, inv := range g.B2BInvoices {
		taxables = append(taxables, inv.TaxableValue)
		cgsts = append(cgsts, inv.CGST)
		sgsts = append(sgsts, inv.SGST)
		igsts = append(igsts, inv.IGST)
		cesses = append(cesses, inv.Cess)

		breakup := Breakup{CGST: inv.CGST, SGST: inv.SGST, IGST: inv.IGST, Cess: inv.Cess}
		entries = append(entries, Entry{
			EntryID:     fmt.Sprintf("gstr-entry-%d", i+1),
			EntryType:   "gstr_entry",
			EntryDate:   normalizeDate(inv.InvoiceDate),
			EntryNumber: inv.InvoiceNumber,
			Party: &PartyRef{
				GSTIN:     inv.CounterpartyGSTIN,
				StateCode: stateCode(inv.CounterpartyGSTIN),
			},
			Amounts: Amounts{
				TaxableValue: inv.TaxableValue,
				TaxBreakup:   breakup,
				Total:        money.Round2(inv.TaxableValue + breakup.Sum()),
			},
			LineItems: []LineItem{},
			DocSpecific: &EntryDetails{
				ReverseCharge: inv.ReverseCharge,
				InvoiceType:   inv.InvoiceType,
				PlaceOfSupply: inv.PlaceOfSupply,
			},
		})
	}

	breakup := Breakup{
		CGST: money.Sum2(cgsts...),
		SGST: money.Sum2(sgsts...),
		IGST: money.Sum2(igsts...),
		Cess: money.Sum2(cesses...),
	}
	subtotal := money.Sum2(taxables...)
	taxTotal := money.Round2(breakup.Sum())

	business := PartyRef{
		Name:      businessName,
		GSTIN:     g.GSTIN,
		StateCode: stateCode(g.GSTIN),
	}

	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       "gstr1",
		DocID:         generateDocID("gstr1", period, g),
		Period:        period,
		Metadata: Metadata{
			SourceFormat:  "gstr1",
			ParserVersion: g.ParserVersion,
			Warnings:      copyWarnings(g.Warnings),
		},
		Business: business,
		Parties:  Parties{Primary: &business},
		Financials: Financials{
			Currency:   "INR",
			Subtotal:   subtotal,
			TaxBreakup: breakup,
			TaxTotal:   taxTotal,
			GrandTotal: money.Round2(subtotal + taxTotal),
		},
		Entries: entries,
		DocSpecific: &Gstr1Details{
			GstrForm:  "GSTR-1",
			LegalName: g.LegalName,
			TradeName: g.TradeName,
			B2BCount:  len(g.B2BInvoices),
		},
	}
}

// FromGstr converts a loosely parsed GST return extract. The record has no
// supply summaries, so invoice references become fallback entries and the
// document carries no aggregate financials.
func FromGstr(g *parse.Gstr) *Document {
	period := fieldValue(g.Period)

	entries := make([]Entry, 0, len(g.Invoices))
	for i, ref := range g.Invoices {
		var value float64
		if ref.Value != nil {
			value = *ref.Value
		}
		entries = append(entries, Entry{
			EntryID:     fmt.Sprintf("gstr-entry-%d", i+1),
			EntryType:   "gstr_entry",
			EntryDate:   normalizeDate(ref.Date),
			EntryNumber: ref.InvoiceNumber,
			Amounts: Amounts{
				TaxableValue: value,
				Total:        value,
			},
			LineItems: []LineItem{},
		})
	}

	gstin := fieldValue(g.GSTIN)
	business := PartyRef{
		Name:      fieldValue(g.BusinessName),
		GSTIN:     gstin,
		StateCode: stateCode(gstin),
	}

	form := fieldValue(g.GstrForm)
	if form == "" {
		form = "GSTR"
	}

	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       "gstr3b",
		DocID:         generateDocID("gstr3b", period, g),
		Period:        period,
		Metadata: Metadata{
			SourceFormat:  "gstr3b",
			ParserVersion: "unknown",
			Warnings:      copyWarnings(g.Warnings),
		},
		Business:   business,
		Parties:    Parties{Primary: &business},
		Financials: Financials{Currency: "INR"},
		Entries:    entries,
		DocSpecific: &Gstr3bDetails{
			GstrForm: form,
		},
	}
}
