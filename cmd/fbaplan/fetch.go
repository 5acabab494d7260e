package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/fbaplan/backend-go/internal/app"
	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
	"github.com/andresuchdata/fbaplan/backend-go/internal/drive"
	"github.com/andresuchdata/fbaplan/backend-go/pkg/logger"
)

const (
	sourceDrive  = "drive"
	sourceBucket = "bucket"
)

func fetchCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download report files from Google Drive or object storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Where to fetch from: drive or bucket",
				Value: sourceDrive,
			},
			&cli.StringFlag{
				Name:  "folder",
				Usage: "Drive folder id, or a slash separated folder path",
				Value: cfg.Drive.FolderID,
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Object key prefix when fetching from the bucket",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Only fetch files whose name contains this text",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Directory the files are written to",
				Value: cfg.App.UploadDir,
			},
		},
		Action: func(c *cli.Context) error {
			dest := c.String("dest")
			switch c.String("source") {
			case sourceDrive:
				return fetchDrive(c, cfg, dest)
			case sourceBucket:
				return fetchBucket(c, cfg, dest)
			default:
				return fmt.Errorf("unknown source %q (want %s or %s)", c.String("source"), sourceDrive, sourceBucket)
			}
		},
	}
}

func fetchDrive(c *cli.Context, cfg *config.Config, dest string) error {
	svc, err := drive.NewService(c.Context, cfg.Drive)
	if err != nil {
		return err
	}

	folder := c.String("folder")
	if folder == "" {
		return fmt.Errorf("a drive folder is required")
	}
	if strings.Contains(folder, "/") {
		folder, err = svc.FindFolderByPath(c.Context, folder)
		if err != nil {
			return err
		}
	}

	files, err := drive.NewDownloader(svc).Download(c.Context, drive.DownloadOptions{
		FolderID:    folder,
		DownloadDir: dest,
		NameFilter:  c.String("filter"),
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Str("folder", folder).Str("dest", dest).Int("files", len(files)).Msg("fetched drive files")
	return nil
}

func fetchBucket(c *cli.Context, cfg *config.Config, dest string) error {
	rt, err := app.Build(c.Context, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	files, err := rt.Service.FetchObjects(c.Context, c.String("prefix"))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create dest dir: %w", err)
	}

	filter := strings.ToLower(c.String("filter"))
	written := 0
	for _, f := range files {
		name := filepath.Base(f.Name)
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		if err := os.WriteFile(filepath.Join(dest, name), f.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
	}

	logger.Log.Info().Str("prefix", c.String("prefix")).Str("dest", dest).Int("files", written).Msg("fetched bucket objects")
	return nil
}
