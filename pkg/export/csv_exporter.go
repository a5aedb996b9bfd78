package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVRenderer writes a header line followed by one line per row. The title
// is not part of the output.
type CSVRenderer struct{}

func (CSVRenderer) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for i := range record {
			record[i] = data.cell(row, i)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
