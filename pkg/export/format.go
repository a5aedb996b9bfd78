// Package export renders tabular data as CSV or PDF downloads.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

var errNoColumns = errors.New("dataset has no columns")

// Dataset is a table: Columns name each position of every row.
type Dataset struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// AddRow appends one record; missing trailing cells render empty.
func (d *Dataset) AddRow(cells ...string) {
	d.Rows = append(d.Rows, cells)
}

func (d Dataset) cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Renderer encodes a dataset into a file body.
type Renderer interface {
	Render(Dataset) ([]byte, error)
}

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Renderer returns the encoder for f.
func (f Format) Renderer() Renderer {
	if f == FormatPDF {
		return PDFRenderer{}
	}
	return CSVRenderer{}
}

// Render encodes data in format.
func Render(format Format, data Dataset) ([]byte, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if len(data.Columns) == 0 {
		return nil, errNoColumns
	}
	return format.Renderer().Render(data)
}
