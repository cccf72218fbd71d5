package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Field is a labelled value printed above the table, e.g. "Employee: Juan Dela Cruz".
type Field struct {
	Label string
	Value string
}

// Dataset defines tabular export content. Meta lines precede the table.
type Dataset struct {
	Meta    []Field
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes. Meta lines become two-column rows followed by an empty row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if len(data.Meta) > 0 {
		for _, field := range data.Meta {
			if err := writer.Write([]string{field.Label, field.Value}); err != nil {
				return nil, fmt.Errorf("write csv meta: %w", err)
			}
		}
		if err := writer.Write([]string{"", ""}); err != nil {
			return nil, fmt.Errorf("write csv separator: %w", err)
		}
	}
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
