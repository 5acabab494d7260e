package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the container format of an input file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatZIP  Format = "zip"
)

var (
	// ErrUnsupportedFormat is returned for files that are not CSV, XLSX or ZIP.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoInput is returned when a load is given no files at all.
	ErrNoInput = errors.New("no input files")
)

// DetectFormat infers the format from the file extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".zip":
		return FormatZIP, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}
