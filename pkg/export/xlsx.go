package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/openearth/openclimate/pkg/table"
)

// XLSXEncoder writes a single-sheet workbook with a header row.
type XLSXEncoder struct {
	// Sheet name; defaults to "data"
	Sheet string
}

// Format implements Encoder.
func (XLSXEncoder) Format() Format { return FormatXLSX }

// Encode implements Encoder.
func (e XLSXEncoder) Encode(w io.Writer, t *table.Table) error {
	sheet := e.Sheet
	if sheet == "" {
		sheet = "data"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range t.Rows() {
		values := make([]interface{}, len(cols))
		for j, c := range cols {
			values[j] = cellValue(r[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}

func cellValue(v any) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case int, int64, float64, bool, string:
		return x
	}
	return table.FormatValue(v)
}
