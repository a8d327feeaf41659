package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files. Each data row becomes one line of
// "header: value" pairs.
type CSVParser struct{}

func (p *CSVParser) Extract(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// First row is headers.
	headers := records[0]

	var out lines
	for _, row := range records[1:] {
		pairs := make([]string, 0, len(row))
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if j < len(headers) && headers[j] != "" {
				pairs = append(pairs, headers[j]+": "+cell)
			} else {
				pairs = append(pairs, cell)
			}
		}
		out.add(strings.Join(pairs, ", "))
	}

	return out.String(), nil
}
