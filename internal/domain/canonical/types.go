// Package canonical converts parsed document records into the unified
// doc.v0.1 schema. Every document type normalizes into the same Document
// shape so that validation and reconciliation can work generically.
// Normalization is pure: the same record always yields the same document.
package canonical

import (
	"github.com/taxpilot/docparse/internal/domain/parse"
)

// SchemaVersion identifies the canonical document schema.
const SchemaVersion = "doc.v0.1"

// PartyRef identifies a business party. StateCode is the two-digit GSTIN
// prefix when a GSTIN is known.
type PartyRef struct {
	Name      string `json:"name,omitempty"`
	GSTIN     string `json:"gstin,omitempty"`
	StateCode string `json:"state_code,omitempty"`
}

// Parties holds the document's own side and, when present, the other side
// of the transaction.
type Parties struct {
	Primary      *PartyRef `json:"primary,omitempty"`
	Counterparty *PartyRef `json:"counterparty,omitempty"`
}

// Breakup carries tax amounts per head. TDS and TCS only appear on
// invoice-level breakups.
type Breakup struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	IGST float64 `json:"igst"`
	Cess float64 `json:"cess"`
	TDS  float64 `json:"tds,omitempty"`
	TCS  float64 `json:"tcs,omitempty"`
}

// Sum adds the four GST heads. TDS/TCS are withholding taxes and stay out
// of the GST tax total.
func (b Breakup) Sum() float64 {
	return b.CGST + b.SGST + b.IGST + b.Cess
}

// Amounts is the money block attached to an entry.
type Amounts struct {
	TaxableValue float64 `json:"taxable_value"`
	TaxBreakup   Breakup `json:"tax_breakup"`
	Total        float64 `json:"total"`
}

// LineItem is one billed line inside an entry.
type LineItem struct {
	Description string  `json:"description"`
	HSNSAC      string  `json:"hsn_sac,omitempty"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
	TaxRate     float64 `json:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount"`
}

// EntryDetails carries the type-specific attributes of an entry. Which
// fields are populated depends on the source document type.
type EntryDetails struct {
	SupplyType      string `json:"supply_type,omitempty"`
	Section         string `json:"section,omitempty"`
	ReverseCharge   bool   `json:"reverse_charge,omitempty"`
	InvoiceType     string `json:"invoice_type,omitempty"`
	PlaceOfSupply   string `json:"place_of_supply,omitempty"`
	ITCAvailability string `json:"itc_availability,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// Entry is one accountable unit of the document: an invoice, a register
// row, a return summary section or a 2B B2B row.
type Entry struct {
	EntryID     string        `json:"entry_id"`
	EntryType   string        `json:"entry_type"`
	EntryDate   string        `json:"entry_date,omitempty"`
	EntryNumber string        `json:"entry_number,omitempty"`
	Party       *PartyRef     `json:"party,omitempty"`
	Amounts     Amounts       `json:"amounts"`
	LineItems   []LineItem    `json:"line_items"`
	DocSpecific *EntryDetails `json:"doc_specific,omitempty"`
}

// Financials aggregates the document-level money picture.
type Financials struct {
	Currency   string  `json:"currency"`
	Subtotal   float64 `json:"subtotal"`
	TaxBreakup Breakup `json:"tax_breakup"`
	TaxTotal   float64 `json:"tax_total"`
	GrandTotal float64 `json:"grand_total"`
	RoundOff   float64 `json:"round_off,omitempty"`
}

// Metadata records where the document came from and what the parser
// flagged along the way.
type Metadata struct {
	SourceFormat  string   `json:"source_format"`
	ParserVersion string   `json:"parser_version"`
	Warnings      []string `json:"warnings"`
}

// Document is the canonical doc.v0.1 representation shared by all
// document types. DocSpecific holds a per-type details struct (for
// documents normalized through the fallback path, the original record).
type Document struct {
	SchemaVersion string     `json:"schema_version"`
	DocType       string     `json:"doc_type"`
	DocID         string     `json:"doc_id"`
	DocDate       string     `json:"doc_date,omitempty"`
	Period        string     `json:"period,omitempty"`
	Metadata      Metadata   `json:"metadata"`
	Business      PartyRef   `json:"business"`
	Parties       Parties    `json:"parties"`
	Financials    Financials `json:"financials"`
	Entries       []Entry    `json:"entries"`
	DocSpecific   any        `json:"doc_specific,omitempty"`
}

// RegisterDetails is the doc_specific block for sales/purchase registers.
type RegisterDetails struct {
	TotalInvoices int `json:"total_invoices"`
	TotalParties  int `json:"total_parties"`
}

// ITCDetails nests the input tax credit totals inside the GSTR-3B
// doc_specific block.
type ITCDetails struct {
	Total parse.TaxBreakup `json:"total"`
}

// Gstr3bDetails is the doc_specific block for GSTR-3B documents.
type Gstr3bDetails struct {
	GstrForm                    string               `json:"gstr_form"`
	LegalName                   string               `json:"legal_name,omitempty"`
	TradeName                   string               `json:"trade_name,omitempty"`
	OutwardSupplies             parse.SupplyBlock    `json:"outward_supplies"`
	ReverseChargeInwardSupplies parse.SupplyBlock    `json:"reverse_charge_inward_supplies"`
	InputTaxCredit              ITCDetails           `json:"input_tax_credit"`
	TaxPayable                  parse.TaxBreakup     `json:"tax_payable"`
	TaxPaid                     parse.TaxPaid        `json:"tax_paid"`
	ExemptNilNonGSTSupplies     parse.ExemptSupplies `json:"exempt_nil_nongst_supplies"`
	Verification                parse.Verification   `json:"verification"`
}

// Gstr1Details is the doc_specific block for GSTR-1 documents.
type Gstr1Details struct {
	GstrForm  string `json:"gstr_form"`
	LegalName string `json:"legal_name,omitempty"`
	TradeName string `json:"trade_name,omitempty"`
	B2BCount  int    `json:"b2b_count"`
}

// Gstr2bDetails is the doc_specific block for GSTR-2B documents.
type Gstr2bDetails struct {
	GstrForm  string              `json:"gstr_form"`
	LegalName string              `json:"legal_name,omitempty"`
	TradeName string              `json:"trade_name,omitempty"`
	Summary   parse.Gstr2bSummary `json:"summary"`
	B2BCount  int                 `json:"b2b_count"`
}
