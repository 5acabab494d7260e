package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

// maxParallelFiles bounds how many files are parsed at once.
const maxParallelFiles = 4

// File is one uploaded or downloaded input file held in memory.
type File struct {
	Name string
	Data []byte
}

// ReadFile parses one file. ZIP archives yield one table per entry.
func ReadFile(f File) ([]planning.Table, error) {
	format, err := DetectFormat(f.Name)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatZIP:
		return ReadZIP(f.Name, f.Data)
	case FormatXLSX:
		t, err := ReadXLSX(f.Name, bytes.NewReader(f.Data))
		if err != nil {
			return nil, err
		}
		return []planning.Table{t}, nil
	default:
		t, err := ReadCSV(f.Name, bytes.NewReader(f.Data))
		if err != nil {
			return nil, err
		}
		return []planning.Table{t}, nil
	}
}

// Load parses files concurrently and concatenates every table they hold
// into one table named name. Input order is preserved.
func Load(ctx context.Context, name string, files []File) (planning.Table, error) {
	if len(files) == 0 {
		return planning.Table{}, fmt.Errorf("%s: %w", name, ErrNoInput)
	}

	parsed := make([][]planning.Table, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tables, err := ReadFile(f)
			if err != nil {
				return err
			}
			parsed[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return planning.Table{}, err
	}

	var all []planning.Table
	for _, tables := range parsed {
		all = append(all, tables...)
	}
	return Concat(name, all...), nil
}

// LoadPaths reads files from disk and loads them like Load.
func LoadPaths(ctx context.Context, name string, paths []string) (planning.Table, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return planning.Table{}, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, File{Name: filepath.Base(p), Data: data})
	}
	return Load(ctx, name, files)
}

// Concat stacks tables, aligning columns by header name. The result's
// header is the union of all headers in first-seen order; cells missing
// from a table are left blank.
func Concat(name string, tables ...planning.Table) planning.Table {
	out := planning.Table{Name: name}
	position := make(map[string]int)
	for _, t := range tables {
		for _, h := range t.Header {
			key := headerKey(h)
			if _, ok := position[key]; !ok {
				position[key] = len(out.Header)
				out.Header = append(out.Header, h)
			}
		}
	}

	for _, t := range tables {
		mapping := make([]int, len(t.Header))
		seen := make(map[string]bool, len(t.Header))
		for i, h := range t.Header {
			key := headerKey(h)
			mapping[i] = -1
			if !seen[key] {
				mapping[i] = position[key]
				seen[key] = true
			}
		}
		for _, record := range t.Rows {
			row := make([]string, len(out.Header))
			for i, v := range record {
				if i < len(mapping) && mapping[i] >= 0 {
					row[mapping[i]] = v
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// headerKey matches columns across files the way the planner resolves them,
// so "Shipment Date" and "shipment_date" land in one column.
func headerKey(h string) string {
	return planning.NormalizeColumnName(h)
}
