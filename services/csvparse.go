package services

import (
	"fmt"
	"strings"

	"storefront-service/apperrors"
	"storefront-service/models"
)

// ImportRow is one logical CSV data row keyed by lowercased header name.
// Number is the 1-based logical row number including the header row, so the
// first data row is row 2.
type ImportRow struct {
	Number int
	Fields map[string]string
}

// ParsedCSV is the structural parse result. Rows that failed structurally
// (too few columns) land in Errors; repairs the forgiving parser made
// (truncated extras, patched quotes) land in Warnings.
type ParsedCSV struct {
	Headers  []string
	Rows     []ImportRow
	Errors   []models.RowError
	Warnings []models.RowWarning
}

// ParseCSV parses comma-delimited text with double-quote field quoting and
// "" as the embedded-quote escape. The parser is forgiving: unbalanced
// quotes are repaired with a synthetic closing quote and rows with
// extra columns are truncated, both recorded in the report. Only file-level
// structural problems (fewer than two logical lines) fail the parse.
func ParseCSV(text string) (*ParsedCSV, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := mergeQuotedNewlines(strings.Split(normalized, "\n"))
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: file must contain a header row and at least one data row", apperrors.ErrParse)
	}

	headerFields, headerRepaired := tokenizeLine(lines[0])
	if headerRepaired {
		return nil, fmt.Errorf("%w: header row has unbalanced quotes", apperrors.ErrParse)
	}
	headers := make([]string, len(headerFields))
	for i, h := range headerFields {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	parsed := &ParsedCSV{Headers: headers}
	for i, line := range lines[1:] {
		rowNum := i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, repaired := tokenizeLine(line)
		if repaired {
			parsed.Warnings = append(parsed.Warnings, models.RowWarning{
				Row:     rowNum,
				Warning: "unbalanced quotes repaired with a synthetic closing quote",
			})
		}

		switch {
		case len(fields) > len(headers):
			parsed.Warnings = append(parsed.Warnings, models.RowWarning{
				Row:     rowNum,
				Warning: fmt.Sprintf("row has %d columns, expected %d; extra values discarded", len(fields), len(headers)),
			})
			fields = fields[:len(headers)]
		case len(fields) < len(headers):
			parsed.Errors = append(parsed.Errors, models.RowError{
				Row: rowNum,
				Error: fmt.Sprintf("row has %d columns but %d headers; values: %s; headers: %s",
					len(fields), len(headers), preview(fields), preview(headers)),
			})
			continue
		}

		row := ImportRow{Number: rowNum, Fields: make(map[string]string, len(headers))}
		for j, h := range headers {
			row.Fields[h] = fields[j]
		}
		parsed.Rows = append(parsed.Rows, row)
	}

	return parsed, nil
}

// mergeQuotedNewlines rejoins physical lines that were split inside a quoted
// field, so a record with an embedded newline becomes one logical line again.
func mergeQuotedNewlines(physical []string) []string {
	var logical []string
	var pending string
	open := false

	for _, line := range physical {
		if open {
			pending += "\n" + line
		} else {
			pending = line
		}
		open = strings.Count(pending, `"`)%2 == 1
		if !open {
			logical = append(logical, pending)
			pending = ""
		}
	}
	if pending != "" {
		// Unterminated quote at EOF: emit as-is and let the tokenizer repair it.
		logical = append(logical, pending)
	}

	// Drop a trailing empty line from the final newline.
	for len(logical) > 0 && strings.TrimSpace(logical[len(logical)-1]) == "" {
		logical = logical[:len(logical)-1]
	}
	return logical
}

// tokenizeLine splits one logical line into fields, honoring quoting and the
// doubled-quote escape. A line ending inside quotes is treated as if a
// closing quote were appended; repaired reports that fix.
func tokenizeLine(line string) (fields []string, repaired bool) {
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}
	fields = append(fields, field.String())
	return fields, inQuotes
}

func preview(values []string) string {
	const maxItems = 6
	shown := values
	truncated := false
	if len(shown) > maxItems {
		shown = shown[:maxItems]
		truncated = true
	}
	out := "[" + strings.Join(shown, ", ")
	if truncated {
		out += ", ..."
	}
	return out + "]"
}
