package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

// ReadCSV reads a delimited report. UTF-8 and UTF-16 exports are accepted
// with or without a byte order mark; a .tsv name switches to tab delimiters.
func ReadCSV(name string, r io.Reader) (planning.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		reader.Comma = '\t'
	}

	t := planning.Table{Name: name}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return planning.Table{}, fmt.Errorf("failed to read csv %s: %w", name, err)
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
	return t, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimHeader(record []string) []string {
	out := make([]string, len(record))
	for i, h := range record {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}
