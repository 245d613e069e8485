package canonical

import (
	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
)

// FromInvoice converts a parsed invoice (or GST invoice) into canonical
// form. The invoice becomes a single "main-invoice" entry whose totals are
// taken directly from the source rather than recomputed.
func FromInvoice(inv *parse.Invoice, docType string) *Document {
	number := fieldValue(inv.InvoiceNumber)
	date := normalizeDate(fieldValue(inv.Date))

	breakup := breakupFromTaxes(inv.Taxes)

	var subtotal, total float64
	if inv.Subtotal != nil {
		subtotal = *inv.Subtotal
	}
	if inv.Total != nil {
		total = *inv.Total
	}

	currency := inv.Currency
	if currency == "" {
		currency = "INR"
	}

	lineItems := make([]LineItem, 0, len(inv.LineItems))
	for _, item := range inv.LineItems {
		lineItems = append(lineItems, LineItem{
			Description: item.Desc,
			Quantity:    item.Qty,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	seller := PartyRef{
		Name:      inv.Seller.Name,
		GSTIN:     inv.Seller.GSTIN,
		StateCode: stateCode(inv.Seller.GSTIN),
	}
	buyer := PartyRef{
		Name:      inv.Buyer.Name,
		GSTIN:     inv.Buyer.GSTIN,
		StateCode: stateCode(inv.Buyer.GSTIN),
	}

	entryBreakup := breakup
	entryBreakup.TDS = 0
	entryBreakup.TCS = 0

	return &Document{
		SchemaVersion: SchemaVersion,
		DocType:       docType,
		DocID:         generateDocID("invoice", number, inv),
		DocDate:       date,
		Metadata: Metadata{
			SourceFormat:  "invoice",
			ParserVersion: "unknown",
			Warnings:      copyWarnings(inv.Warnings),
		},
		Business: seller,
		Parties: Parties{
			Primary:      &seller,
			Counterparty: &buyer,
		},
		Financials: Financials{
			Currency:   currency,
			Subtotal:   subtotal,
			TaxBreakup: breakup,
			TaxTotal:   money.Round2(breakup.Sum()),
			GrandTotal: total,
		},
		Entries: []Entry{
			{
				EntryID:     "main-invoice",
				EntryType:   "invoice",
				EntryDate:   date,
				EntryNumber: number,
				LineItems:   lineItems,
				Amounts: Amounts{
					TaxableValue: subtotal,
					TaxBreakup:   entryBreakup,
					Total:        total,
				},
			},
		},
	}
}
