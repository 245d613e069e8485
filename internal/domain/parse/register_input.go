package parse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// registerCSVRow is the clean accounting-software CSV export shape. Exports
// with other headers fall back to the text parser and its synonym table.
type registerCSVRow struct {
	InvoiceNumber string `csv:"invoice_number"`
	InvoiceDate   string `csv:"invoice_date"`
	PartyName     string `csv:"party_name"`
	PartyGSTIN    string `csv:"party_gstin"`
	PlaceOfSupply string `csv:"place_of_supply"`
	ReverseCharge string `csv:"reverse_charge"`
	InvoiceType   string `csv:"invoice_type"`
	TaxableValue  string `csv:"taxable_value"`
	IGST          string `csv:"igst"`
	CGST          string `csv:"cgst"`
	SGST          string `csv:"sgst"`
	Cess          string `csv:"cess"`
	TotalValue    string `csv:"total_value"`
}

// ParseRegisterCSV decodes a register CSV export. Canonical headers decode
// directly; anything else goes through the text-rule parser, which copes
// with synonym headers and ragged rows.
func ParseRegisterCSV(data []byte, kind RegisterKind) (*Register, error) {
	var rows []registerCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil || !csvRowsUsable(rows) {
		return parseRegisterText(string(data), kind), nil
	}

	out := &Register{
		Kind:         kind,
		Entries:      make([]RegisterEntry, 0, len(rows)),
		Warnings:     []string{},
		SourceFormat: "csv",
	}
	if kind == SalesRegister {
		out.ParserVersion = salesRegisterParserVersion
	} else {
		out.ParserVersion = purchaseRegisterParserVersion
	}

	for _, row := range rows {
		entry := RegisterEntry{InvoiceType: "REGULAR"}
		assignRegisterCell(&entry, colInvoiceNumber, row.InvoiceNumber)
		assignRegisterCell(&entry, colInvoiceDate, row.InvoiceDate)
		assignRegisterCell(&entry, colPartyName, row.PartyName)
		assignRegisterCell(&entry, colPartyGSTIN, row.PartyGSTIN)
		assignRegisterCell(&entry, colPlaceOfSupply, row.PlaceOfSupply)
		assignRegisterCell(&entry, colReverseCharge, row.ReverseCharge)
		assignRegisterCell(&entry, colInvoiceType, row.InvoiceType)
		assignRegisterCell(&entry, colTaxableValue, row.TaxableValue)
		assignRegisterCell(&entry, colIGST, row.IGST)
		assignRegisterCell(&entry, colCGST, row.CGST)
		assignRegisterCell(&entry, colSGST, row.SGST)
		assignRegisterCell(&entry, colCess, row.Cess)
		assignRegisterCell(&entry, colTotalValue, row.TotalValue)
		backfillTotal(&entry)

		if entry.InvoiceNumber == "" && entry.TaxableValue == 0 {
			continue
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func csvRowsUsable(rows []registerCSVRow) bool {
	for _, r := range rows {
		if r.InvoiceNumber != "" || r.TaxableValue != "" {
			return true
		}
	}
	return false
}

// ParseRegisterXLSX flattens the first sheet of an XLSX workbook into a
// two-space aligned table and runs the text-rule parser over it.
func ParseRegisterXLSX(data []byte, kind RegisterKind) (*Register, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var sb strings.Builder
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, strings.TrimSpace(c))
		}
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteByte('\n')
	}
	return parseRegisterText(sb.String(), kind), nil
}

func parseRegisterText(text string, kind RegisterKind) *Register {
	if kind == SalesRegister {
		return ParseSalesRegister(text)
	}
	return ParsePurchaseRegister(text)
}
