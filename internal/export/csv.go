package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// WriteCSVDir writes every sheet to dir as <sheet>.csv and
// returns the written paths.
func WriteCSVDir(dir string, sheets []Sheet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	paths := make([]string, 0, len(sheets))
	for _, s := range sheets {
		p := filepath.Join(dir, fileSlug(s.Name)+".csv")
		if err := writeCSV(p, s); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeCSV(path string, s Sheet) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(s.Header); err != nil {
		return fmt.Errorf("failed to write csv header to %s: %w", path, err)
	}
	for _, record := range s.Rows {
		row := make([]string, len(record))
		for i, v := range record {
			row[i] = cellString(v)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row to %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
