package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(name string, r io.Reader) (planning.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return planning.Table{}, fmt.Errorf("failed to open xlsx %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return planning.Table{}, fmt.Errorf("xlsx %s has no sheets", name)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return planning.Table{}, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	t := planning.Table{Name: name}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return planning.Table{}, fmt.Errorf("failed to read row from %s: %w", name, err)
		}
		if blankRecord(record) {
			continue
		}
		if t.Header == nil {
			t.Header = trimHeader(record)
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	if err := rows.Error(); err != nil {
		return planning.Table{}, fmt.Errorf("error iterating rows in %s: %w", name, err)
	}
	return t, nil
}
