// Package parse turns extracted document text into typed records, one
// parser per supported document type. Parsers are pure text-in, record-out
// functions: unparsable fields become warnings on the record, never errors.
package parse

// Field is a string value paired with the parser's confidence in it.
type Field struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Party identifies one side of a transaction.
type Party struct {
	Name  string `json:"name,omitempty"`
	GSTIN string `json:"gstin,omitempty"`
}

// TaxLine is one tax charge extracted from a document.
type TaxLine struct {
	Type   string  `json:"type"`
	Rate   float64 `json:"rate,omitempty"`
	Amount float64 `json:"amount"`
}

// LineItem is one billed item.
type LineItem struct {
	Desc      string  `json:"desc"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

// Invoice is the parsed form of a tax invoice.
type Invoice struct {
	InvoiceNumber *Field     `json:"invoice_number"`
	Date          *Field     `json:"date"`
	Seller        Party      `json:"seller"`
	Buyer         Party      `json:"buyer"`
	Currency      string     `json:"currency,omitempty"`
	Subtotal      *float64   `json:"subtotal"`
	Taxes         []TaxLine  `json:"taxes"`
	Total         *float64   `json:"total"`
	LineItems     []LineItem `json:"line_items"`
	HSNCodes      []string   `json:"hsn_codes,omitempty"`
	SACCodes      []string   `json:"sac_codes,omitempty"`
	Warnings      []string   `json:"warnings"`
}

// InvoiceQuality summarizes how usable a parsed invoice is downstream.
type InvoiceQuality struct {
	Score    int      `json:"score"`
	Issues   []string `json:"issues"`
	IsUsable bool     `json:"is_usable"`
}

// Receipt is the parsed form of a point-of-sale receipt.
type Receipt struct {
	Merchant  Party      `json:"merchant"`
	Date      *Field     `json:"date"`
	Currency  string     `json:"currency,omitempty"`
	Subtotal  *float64   `json:"subtotal"`
	Taxes     []TaxLine  `json:"taxes"`
	Total     *float64   `json:"total"`
	LineItems []LineItem `json:"line_items"`
	Warnings  []string   `json:"warnings"`
}

// UtilityBill is the parsed form of an electricity/water/telecom bill.
type UtilityBill struct {
	Provider      Party    `json:"provider"`
	AccountNumber string   `json:"account_number,omitempty"`
	ServicePeriod string   `json:"service_period,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	AmountDue     *float64 `json:"amount_due"`
	Currency      string   `json:"currency,omitempty"`
	Warnings      []string `json:"warnings"`
}

// EwayBill is the parsed form of an e-way (transport) bill.
type EwayBill struct {
	EwayBillNumber   *Field   `json:"eway_bill_number"`
	EwayBillDate     *Field   `json:"eway_bill_date"`
	ValidUntil       *Field   `json:"valid_until"`
	VehicleNumber    *Field   `json:"vehicle_number"`
	TransporterGSTIN *Field   `json:"transporter_gstin"`
	DriverName       *Field   `json:"driver_name"`
	DriverMobile     *Field   `json:"driver_mobile"`
	DistanceKm       *Field   `json:"distance"`
	FromPlace        *Field   `json:"from_place"`
	ToPlace          *Field   `json:"to_place"`
	InvoiceNumber    *Field   `json:"invoice_number"`
	InvoiceDate      *Field   `json:"invoice_date"`
	SupplyType       *Field   `json:"supply_type"`
	Seller           Party    `json:"seller"`
	Buyer            Party    `json:"buyer"`
	Warnings         []string `json:"warnings"`
}

// Transaction is one statement row. Residual is a diagnostic set by the
// balance walk: observed balance minus the expected running balance.
type Transaction struct {
	Date        string   `json:"date,omitempty"`
	Description string   `json:"description"`
	Debit       float64  `json:"debit"`
	Credit      float64  `json:"credit"`
	Balance     *float64 `json:"balance,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	Residual    *float64 `json:"_residual,omitempty"`
}

// BankTotals aggregates a statement's transaction list.
type BankTotals struct {
	Debits         float64  `json:"debits"`
	Credits        float64  `json:"credits"`
	Count          int      `json:"count"`
	ClosingBalance *float64 `json:"closing_balance"`
}

// BankStatement is the parsed form of a bank account statement.
type BankStatement struct {
	BankName       string        `json:"bank_name,omitempty"`
	AccountNumber  string        `json:"account_number,omitempty"`
	AccountLast4   string        `json:"account_last4,omitempty"`
	IFSC           string        `json:"ifsc,omitempty"`
	PeriodStart    string        `json:"period_start,omitempty"`
	PeriodEnd      string        `json:"period_end,omitempty"`
	OpeningBalance *float64      `json:"opening_balance"`
	ClosingBalance *float64      `json:"closing_balance"`
	Currency       string        `json:"currency,omitempty"`
	Transactions   []Transaction `json:"transactions"`
	Totals         BankTotals    `json:"totals"`
	Warnings       []string      `json:"warnings"`
}

// Gstr is the loosely structured parse of a generic GST return extract,
// used when the text is recognizably a return but not a specific form.
type Gstr struct {
	GstrForm      *Field    `json:"gstr_form"`
	Period        *Field    `json:"period"`
	BusinessName  *Field    `json:"business_name"`
	GSTIN         *Field    `json:"gstin"`
	Turnover      *Field    `json:"turnover"`
	TaxableValue  *Field    `json:"taxable_value"`
	Taxes         []TaxLine `json:"taxes"`
	Invoices      []GstrInvoiceRef `json:"invoices"`
	Customers     []Party  `json:"customers"`
	Suppliers     []Party  `json:"suppliers"`
	HSNCodes      []string `json:"hsn_codes,omitempty"`
	SACCodes      []string `json:"sac_codes,omitempty"`
	PlaceOfSupply *Field   `json:"place_of_supply"`
	ReverseCharge *Field   `json:"reverse_charge"`
	Warnings      []string `json:"warnings"`
}

// GstrInvoiceRef is an invoice reference mentioned inside a return extract.
type GstrInvoiceRef struct {
	InvoiceNumber string   `json:"invoice_number"`
	Date          string   `json:"date,omitempty"`
	Value         *float64 `json:"value,omitempty"`
}

// Period is a reporting period resolved from a document.
type Period struct {
	Month int    `json:"month,omitempty"`
	Year  int    `json:"year,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Label string `json:"label,omitempty"`
}

// TaxBreakup carries amounts per GST head.
type TaxBreakup struct {
	IGST float64 `json:"igst"`
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	Cess float64 `json:"cess"`
}

// SupplyBlock is a GSTR-3B supply summary row.
type SupplyBlock struct {
	TaxableValue float64 `json:"taxable_value"`
	IGST         float64 `json:"igst"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	Cess         float64 `json:"cess"`
}

// InputTaxCredit is the GSTR-3B section 4 breakdown.
type InputTaxCredit struct {
	FromImports             TaxBreakup `json:"from_imports"`
	FromISD                 TaxBreakup `json:"from_isd"`
	OnInwardSupplies        TaxBreakup `json:"on_inward_supplies"`
	OnInwardSuppliesReverse TaxBreakup `json:"on_inward_supplies_reverse_charge"`
	Total                   TaxBreakup `json:"total"`
}

// ExemptSupplies is the GSTR-3B exempt/nil/non-GST section.
type ExemptSupplies struct {
	Exempt   float64 `json:"exempt"`
	NilRated float64 `json:"nil_rated"`
	NonGST   float64 `json:"non_gst"`
}

// TaxPaid splits GSTR-3B tax payment by settlement mode.
type TaxPaid struct {
	ThroughITC TaxBreakup `json:"through_itc"`
	InCash     TaxBreakup `json:"in_cash"`
}

// Verification is the signing block at the end of a GST return.
type Verification struct {
	Name        string `json:"name,omitempty"`
	Designation string `json:"designation,omitempty"`
	Date        string `json:"date,omitempty"`
	Place       string `json:"place,omitempty"`
}

// Gstr3b is the structured parse of a FORM GSTR-3B extract.
type Gstr3b struct {
	GSTIN                        string         `json:"gstin,omitempty"`
	LegalName                    string         `json:"legal_name,omitempty"`
	TradeName                    string         `json:"trade_name,omitempty"`
	Period                       Period         `json:"period"`
	OutwardSupplies              SupplyBlock    `json:"outward_supplies"`
	ReverseChargeInwardSupplies  SupplyBlock    `json:"reverse_charge_inward_supplies"`
	InputTaxCredit               InputTaxCredit `json:"input_tax_credit"`
	ExemptNilNonGSTSupplies      ExemptSupplies `json:"exempt_nil_nongst_supplies"`
	TaxPayable                   TaxBreakup     `json:"tax_payable"`
	TaxPaid                      TaxPaid        `json:"tax_paid"`
	Verification                 Verification   `json:"verification"`
	Warnings                     []string       `json:"warnings"`
	ParserVersion                string         `json:"parser_version"`
}

// B2BInvoice is one row of the GSTR-1 B2B table.
type B2BInvoice struct {
	InvoiceNumber     string  `json:"invoice_number,omitempty"`
	InvoiceDate       string  `json:"invoice_date,omitempty"`
	CounterpartyGSTIN string  `json:"counterparty_gstin,omitempty"`
	PlaceOfSupply     string  `json:"place_of_supply,omitempty"`
	ReverseCharge     bool    `json:"reverse_charge"`
	InvoiceType       string  `json:"invoice_type"`
	TaxableValue      float64 `json:"taxable_value"`
	IGST              float64 `json:"igst"`
	CGST              float64 `json:"cgst"`
	SGST              float64 `json:"sgst"`
	Cess              float64 `json:"cess"`
}

// Gstr1 is the structured parse of a FORM GSTR-1 extract (header + B2B).
type Gstr1 struct {
	GSTIN         string       `json:"gstin,omitempty"`
	LegalName     string       `json:"legal_name,omitempty"`
	TradeName     string       `json:"trade_name,omitempty"`
	Period        Period       `json:"period"`
	B2BInvoices   []B2BInvoice `json:"b2b_invoices"`
	Warnings      []string     `json:"warnings"`
	ParserVersion string       `json:"parser_version"`
}

// Gstr2bRow is one B2B row of an auto-drafted GSTR-2B JSON export.
type Gstr2bRow struct {
	SupplierGSTIN   string  `json:"supplier_gstin"`
	SupplierName    string  `json:"supplier_name"`
	InvoiceNumber   string  `json:"invoice_number"`
	InvoiceDate     string  `json:"invoice_date"`
	InvoiceValue    float64 `json:"invoice_value"`
	PlaceOfSupply   string  `json:"place_of_supply"`
	TaxableValue    float64 `json:"taxable_value"`
	IGST            float64 `json:"igst"`
	CGST            float64 `json:"cgst"`
	SGST            float64 `json:"sgst"`
	Cess            float64 `json:"cess"`
	ITCAvailability string  `json:"itc_availability"`
	Reason          string  `json:"reason"`
}

// Gstr2bSummary is the headline totals block of a GSTR-2B export.
type Gstr2bSummary struct {
	TotalTaxableValue float64 `json:"total_taxable_value"`
	TotalIGST         float64 `json:"total_igst"`
	TotalCGST         float64 `json:"total_cgst"`
	TotalSGST         float64 `json:"total_sgst"`
	TotalCess         float64 `json:"total_cess"`
}

// Gstr2b is a decoded GSTR-2B JSON export.
type Gstr2b struct {
	DocType   string        `json:"doc_type"`
	GSTIN     string        `json:"gstin"`
	LegalName string        `json:"legal_name"`
	TradeName string        `json:"trade_name"`
	Period    Period        `json:"period"`
	Summary   Gstr2bSummary `json:"summary"`
	B2B       []Gstr2bRow   `json:"b2b"`
	Warnings  []string      `json:"warnings"`
	Meta      struct {
		ParserVersion string `json:"parser_version"`
	} `json:"meta"`
}

// RegisterEntry is one invoice row of a sales or purchase register.
// PartyName/PartyGSTIN hold the customer for sales and the supplier for
// purchases.
type RegisterEntry struct {
	InvoiceNumber string   `json:"invoice_number,omitempty"`
	InvoiceDate   string   `json:"invoice_date,omitempty"`
	PartyName     string   `json:"party_name,omitempty"`
	PartyGSTIN    string   `json:"party_gstin,omitempty"`
	PlaceOfSupply string   `json:"place_of_supply,omitempty"`
	ReverseCharge bool     `json:"reverse_charge"`
	InvoiceType   string   `json:"invoice_type"`
	TaxableValue  float64  `json:"taxable_value"`
	IGST          float64  `json:"igst"`
	CGST          float64  `json:"cgst"`
	SGST          float64  `json:"sgst"`
	Cess          float64  `json:"cess"`
	TotalValue    float64  `json:"total_value"`
	Raw           []string `json:"-"`
}

// Register is a parsed sales or purchase register.
type Register struct {
	Kind          RegisterKind    `json:"doc_type"`
	BusinessGSTIN string          `json:"gstin_of_business,omitempty"`
	Period        *Period         `json:"period,omitempty"`
	Entries       []RegisterEntry `json:"entries"`
	Warnings      []string        `json:"warnings"`
	SourceFormat  string          `json:"source_format,omitempty"`
	ParserVersion string          `json:"parser_version"`
}

// RegisterKind selects the register flavour.
type RegisterKind string

const (
	SalesRegister    RegisterKind = "sales_register"
	PurchaseRegister RegisterKind = "purchase_register"
)
