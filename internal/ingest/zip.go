package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

// ReadZIP reads every CSV and XLSX entry of an archive, in archive order.
// Directories, macOS resource forks and other entry types are skipped.
func ReadZIP(name string, data []byte) ([]planning.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip %s: %w", name, err)
	}

	var tables []planning.Table
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || skipEntry(f.Name) {
			continue
		}

		format, err := DetectFormat(f.Name)
		if errors.Is(err, ErrUnsupportedFormat) || format == FormatZIP {
			log.Debug().Str("archive", name).Str("entry", f.Name).Msg("skipping zip entry")
			continue
		}

		t, err := readZIPEntry(name, f, format)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("zip %s contains no csv or xlsx files", name)
	}
	return tables, nil
}

func readZIPEntry(archive string, f *zip.File, format Format) (planning.Table, error) {
	rc, err := f.Open()
	if err != nil {
		return planning.Table{}, fmt.Errorf("failed to open zip entry %s in %s: %w", f.Name, archive, err)
	}
	defer rc.Close()

	entry := archive + "/" + f.Name
	if format == FormatXLSX {
		data, err := io.ReadAll(rc)
		if err != nil {
			return planning.Table{}, fmt.Errorf("failed to read zip entry %s: %w", entry, err)
		}
		return ReadXLSX(entry, bytes.NewReader(data))
	}
	return ReadCSV(entry, rc)
}

func skipEntry(name string) bool {
	base := path.Base(name)
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$")
}
