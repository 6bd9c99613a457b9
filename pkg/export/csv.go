package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is ordered tabular content for a CSV download. Records are
// positional and must match the header width.
type Table struct {
	Header  []string
	Records [][]string
}

// CSVExporter renders a Table into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes, header row first.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if len(table.Header) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, record := range table.Records {
		if len(record) != len(table.Header) {
			return nil, fmt.Errorf("csv record %d has %d fields, header has %d", i, len(record), len(table.Header))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
