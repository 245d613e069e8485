package parse

import "strings"

const purchaseRegisterParserVersion = "purchase_register_v1"

// ParsePurchaseRegister turns a purchase register text export into
// entries. On top of the delimited path shared with the sales register it
// handles the accountant-style export: a two-line wrapped header and
// single-space rows where the supplier name is anchored by its GSTIN.
func ParsePurchaseRegister(rawText string) *Register {
	var lines []string
	for _, ln := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}

	out := &Register{
		Kind:          PurchaseRegister,
		Entries:       []RegisterEntry{},
		Warnings:      []string{},
		ParserVersion: purchaseRegisterParserVersion,
	}

	if m := regGSTINLabelRE.FindStringSubmatch(rawText); m != nil {
		out.BusinessGSTIN = strings.ToUpper(m[1])
	}
	out.Period = registerPeriod(rawText, "purchase")

	if len(lines) == 0 {
		out.Warnings = append(out.Warnings, "empty_input")
		return out
	}

	headerLine := lines[0]
	dataStart := 1
	for idx, line := range lines {
		low := strings.ToLower(line)
		if strings.Contains(low, "invoice date") && strings.Contains(low, "supplier") {
			headerLine = line
			dataStart = idx + 1
			if idx+1 < len(lines) {
				next := strings.TrimSpace(lines[idx+1])
				if containsAnyFold(next, "igst", "cgst", "sgst", "invoice value", "taxable value") {
					headerLine = strings.TrimSpace(headerLine) + " " + next
					dataStart = idx + 2
				}
			}
			break
		}
	}

	delimiter := detectDelimiter(headerLine)
	headerCells := splitRow(headerLine, delimiter)
	mapping := mapHeaders(headerCells)
	if len(mapping) == 0 {
		out.Warnings = append(out.Warnings, "no_known_columns_found")
	}
	if delimiter == "spaces" {
		out.SourceFormat = "spaces"
	} else {
		out.SourceFormat = "delimited"
	}

	data := lines[dataStart:]
	i := 0
	for i < len(data) {
		rowLine := strings.TrimSpace(data[i])
		if rowLine == "" ||
			strings.HasPrefix(rowLine, "----") ||
			strings.HasPrefix(strings.ToLower(rowLine), "total invoices") {
			i++
			continue
		}

		if delimiter == "spaces" && regDateLineRE.MatchString(rowLine) {
			rowLines := []string{rowLine}
			j := i + 1
			for j < len(data) {
				nxt := strings.TrimSpace(data[j])
				if nxt == "" {
					j++
					continue
				}
				if regDateLineRE.MatchString(nxt) ||
					strings.HasPrefix(nxt, "----") ||
					strings.HasPrefix(strings.ToLower(nxt), "total") {
					break
				}
				rowLines = append(rowLines, nxt)
				j++
			}
			rowLine = strings.Join(rowLines, " ")
			i = j
		} else {
			i++
		}

		if delimiter == "spaces" {
			if entry, ok := parseFixedWidthRow(rowLine); ok {
				out.Entries = append(out.Entries, entry)
				continue
			}
		}

		cells := splitRow(rowLine, delimiter)
		if len(cells) == 0 {
			continue
		}

		entry := RegisterEntry{InvoiceType: "REGULAR", Raw: cells}
		for idx, canon := range mapping {
			if idx < len(cells) {
				assignRegisterCell(&entry, canon, cells[idx])
			}
		}
		backfillTotal(&entry)

		if entry.InvoiceNumber == "" && entry.TaxableValue == 0 {
			out.Warnings = append(out.Warnings, "row_skipped_no_invoice_number_and_zero_taxable: "+strings.Join(cells, " | "))
			continue
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}
