package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/ingest"
)

// FileSource is the part of Service the downloader needs.
type FileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string // when set, files are also written to disk
	NameFilter  string // case-insensitive substring, e.g. "mtr" or "ledger"
}

// Downloader pulls report files from a Drive folder.
type Downloader struct {
	source FileSource
}

// NewDownloader creates a new Downloader.
func NewDownloader(source FileSource) *Downloader {
	return &Downloader{source: source}
}

// Download fetches every CSV, XLSX and ZIP file of the folder whose name
// matches the filter. Other files and subfolders are skipped.
func (d *Downloader) Download(ctx context.Context, opts DownloadOptions) ([]ingest.File, error) {
	if opts.DownloadDir != "" {
		if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create download dir: %w", err)
		}
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	filter := strings.ToLower(opts.NameFilter)
	var out []ingest.File
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if f.MimeType == folderMimeType {
			continue
		}
		if _, err := ingest.DetectFormat(f.Name); err != nil {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(f.Name), filter) {
			continue
		}

		var buf bytes.Buffer
		if err := d.source.DownloadFile(ctx, f.ID, &buf); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}

		if opts.DownloadDir != "" {
			localPath := filepath.Join(opts.DownloadDir, filepath.Base(f.Name))
			if err := os.WriteFile(localPath, buf.Bytes(), 0o644); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", localPath, err)
			}
		}

		log.Debug().Str("file", f.Name).Int("bytes", buf.Len()).Msg("downloaded drive file")
		out = append(out, ingest.File{Name: f.Name, Data: buf.Bytes()})
	}

	return out, nil
}
