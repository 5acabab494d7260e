package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/fbaplan/backend-go/internal/app"
	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
	"github.com/andresuchdata/fbaplan/backend-go/internal/export"
	"github.com/andresuchdata/fbaplan/backend-go/internal/ingest"
	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/service"
	"github.com/andresuchdata/fbaplan/backend-go/pkg/logger"
)

func planCommand(cfg *config.Config) *cli.Command {
	defaults := cfg.Planning.Params().WithDefaults()

	return &cli.Command{
		Name:  "plan",
		Usage: "Build the inventory plan workbook from local report files",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "sales",
				Usage:    "MTR sales report file or directory (repeatable)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "inventory",
				Usage:    "Inventory ledger file or directory (repeatable)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Planning horizon in days (0 uses the default)",
				Value: defaults.HorizonDays,
			},
			&cli.StringFlag{
				Name:  "service-level",
				Usage: "Target service level: 90, 95 or 98",
				Value: fmt.Sprint(int(defaults.ServiceLevel)),
			},
			&cli.IntFlag{
				Name:  "window",
				Usage: "Trailing history window in days (0 = full history)",
				Value: defaults.WindowDays,
			},
			&cli.IntFlag{
				Name:  "slow-moving-days",
				Usage: "Days of cover above which a SKU is slow moving (0 uses the default)",
				Value: defaults.SlowMovingDays,
			},
			&cli.IntFlag{
				Name:  "inactive-days",
				Usage: "Days without a sale after which a SKU is inactive (0 uses the default)",
				Value: defaults.InactiveDays,
			},
			&cli.IntFlag{
				Name:  "top-cities",
				Usage: "Rows kept in the top cities summary (0 uses the default)",
				Value: defaults.TopCities,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Workbook path (defaults to a timestamped file in the output dir)",
			},
			&cli.StringFlag{
				Name:  "csv-dir",
				Usage: "Also write every table as CSV into this directory",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Upload the workbook to object storage",
			},
		},
		Action: func(c *cli.Context) error {
			sl, err := planning.ParseServiceLevel(c.String("service-level"))
			if err != nil {
				return err
			}
			params := planning.Params{
				HorizonDays:    orDefault(c.Int("horizon"), defaults.HorizonDays),
				ServiceLevel:   sl,
				WindowDays:     c.Int("window"),
				SlowMovingDays: orDefault(c.Int("slow-moving-days"), defaults.SlowMovingDays),
				InactiveDays:   orDefault(c.Int("inactive-days"), defaults.InactiveDays),
				TopCities:      orDefault(c.Int("top-cities"), defaults.TopCities),
			}
			if err := params.Validate(); err != nil {
				return err
			}

			sales, err := readInputs(c.StringSlice("sales"))
			if err != nil {
				return err
			}
			inventory, err := readInputs(c.StringSlice("inventory"))
			if err != nil {
				return err
			}

			rt, err := app.Build(c.Context, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Service.Export(c.Context, service.PlanRequest{
				Sales:     sales,
				Inventory: inventory,
				Params:    params,
			}, c.Bool("publish"))
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = filepath.Join(cfg.App.OutputDir, res.FileName)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
			if err := os.WriteFile(out, res.Data, 0644); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}

			if dir := c.String("csv-dir"); dir != "" {
				paths, err := export.WriteCSVDir(dir, export.Sheets(res.Report))
				if err != nil {
					return err
				}
				logger.Log.Info().Str("dir", dir).Int("files", len(paths)).Msg("wrote csv tables")
			}

			s := res.Report.Summary
			logger.Log.Info().
				Str("workbook", out).
				Str("object_key", res.ObjectKey).
				Int("skus", s.SKUCount).
				Float64("units_sold", s.TotalUnitsSold).
				Float64("current_stock", s.CurrentStock).
				Float64("dispatch_qty", s.RecommendedDispatch).
				Msg("plan complete")
			return nil
		},
	}
}

// orDefault treats an explicit 0 as "keep the configured default".
func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// readInputs reads the given files. Directories contribute every supported
// report file directly inside them, in name order.
func readInputs(paths []string) ([]ingest.File, error) {
	var files []ingest.File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", p, err)
			}
			files = append(files, ingest.File{Name: filepath.Base(p), Data: data})
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read dir %s: %w", p, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := ingest.DetectFormat(e.Name()); err != nil {
				continue
			}
			data, err := os.ReadFile(filepath.Join(p, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
			}
			files = append(files, ingest.File{Name: e.Name(), Data: data})
		}
	}
	if len(files) == 0 {
		return nil, ingest.ErrNoInput
	}
	return files, nil
}
