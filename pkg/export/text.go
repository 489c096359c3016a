package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/openearth/openclimate/pkg/table"
)

// CSVEncoder writes a header row followed by one line per row. Nil cells
// are empty.
type CSVEncoder struct{}

// Format implements Encoder.
func (CSVEncoder) Format() Format { return FormatCSV }

// Encode implements Encoder.
func (CSVEncoder) Encode(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}

	record := make([]string, len(cols))
	for _, r := range t.Rows() {
		for i, c := range cols {
			record[i] = table.FormatValue(r[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONEncoder writes an array of objects in "records" orientation. Missing
// cells are written as null so every object has every column.
type JSONEncoder struct {
	Indent string
}

// Format implements Encoder.
func (JSONEncoder) Format() Format { return FormatJSON }

// Encode implements Encoder.
func (e JSONEncoder) Encode(w io.Writer, t *table.Table) error {
	cols := t.Columns()
	records := make([]orderedRecord, t.Len())
	for i, r := range t.Rows() {
		records[i] = orderedRecord{cols: cols, row: r}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", e.Indent)
	return enc.Encode(records)
}

// orderedRecord marshals a row with keys in column order.
type orderedRecord struct {
	cols []string
	row  table.Row
}

func (o orderedRecord) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, c := range o.cols {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.row[c])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
