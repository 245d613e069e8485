package parse

import "strings"

const salesRegisterParserVersion = "sales_register_v1"

// ParseSalesRegister turns a sales register text export into entries.
// Exports come as CSV-ish delimited rows or as wide space-aligned tables;
// space-aligned rows wrap, so a row runs from one date-prefixed line to the
// next.
func ParseSalesRegister(rawText string) *Register {
	var lines []string
	for _, ln := range strings.Split(rawText, "\n") {
		stripped := strings.TrimSpace(ln)
		if stripped == "" || regPageRE.MatchString(stripped) || regRuleRE.MatchString(stripped) {
			continue
		}
		lines = append(lines, ln)
	}

	out := &Register{
		Kind:          SalesRegister,
		Entries:       []RegisterEntry{},
		Warnings:      []string{},
		ParserVersion: salesRegisterParserVersion,
	}
	if len(lines) == 0 {
		out.Warnings = append(out.Warnings, "empty_document")
		return out
	}

	text := strings.Join(lines, "\n")
	if m := regGSTINLabelRE.FindStringSubmatch(text); m != nil {
		out.BusinessGSTIN = strings.ToUpper(m[1])
	}
	out.Period = registerPeriod(text, "sales")

	headerIdx := -1
	for i, ln := range lines {
		low := strings.ToLower(ln)
		if strings.Contains(low, "invoice date") && strings.Contains(low, "invoice") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		out.Warnings = append(out.Warnings, "header_not_found")
		headerIdx = 0
	}

	headerLine := lines[headerIdx]
	delimiter := detectDelimiter(headerLine)
	headerCells := splitRow(headerLine, delimiter)
	mapping := mapHeaders(headerCells)
	if len(mapping) == 0 {
		out.Warnings = append(out.Warnings, "no_known_columns_found")
	}
	out.SourceFormat = delimiter

	i := headerIdx + 1
	for i < len(lines) {
		ln := strings.TrimSpace(lines[i])
		if strings.Contains(strings.ToLower(ln), "total") {
			break
		}

		var cells []string
		if delimiter == "spaces" && regDateLineRE.MatchString(ln) {
			rowLines := []string{ln}
			j := i + 1
			for j < len(lines) {
				nxt := strings.TrimSpace(lines[j])
				if regDateLineRE.MatchString(nxt) || strings.Contains(strings.ToLower(nxt), "total") {
					break
				}
				rowLines = append(rowLines, nxt)
				j++
			}
			cells = splitRow(strings.Join(rowLines, " "), delimiter)
			i = j
		} else {
			cells = splitRow(ln, delimiter)
			i++
		}

		entry := RegisterEntry{InvoiceType: "REGULAR", Raw: cells}
		for idx, canon := range mapping {
			if idx < len(cells) {
				assignRegisterCell(&entry, canon, cells[idx])
			}
		}
		backfillTotal(&entry)

		if entry.InvoiceNumber == "" && entry.TaxableValue == 0 {
			out.Warnings = append(out.Warnings, "row_skipped: "+strings.Join(cells, " | "))
			continue
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}
