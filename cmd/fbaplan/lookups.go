package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/fbaplan/backend-go/internal/app"
	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
	"github.com/andresuchdata/fbaplan/backend-go/pkg/logger"
)

func lookupsCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "lookups",
		Usage: "Manage the region cluster and fulfillment center lookups",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Replace the stored lookups with the contents of a YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Lookups YAML file",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					if !cfg.Database.Enabled() {
						return errors.New("lookups import needs DATABASE_URL or DB_HOST")
					}

					lf, err := config.ReadLookupFile(c.String("file"))
					if err != nil {
						return err
					}

					runCfg := *cfg
					runCfg.App.LookupsFile = ""
					rt, err := app.Build(c.Context, &runCfg)
					if err != nil {
						return err
					}
					defer rt.Close()

					if err := rt.Service.ImportLookups(c.Context, lf.Clusters, lf.FulfillmentCenters); err != nil {
						return err
					}

					logger.Log.Info().
						Int("clusters", len(lf.Clusters)).
						Int("fulfillment_centers", len(lf.FulfillmentCenters)).
						Msg("imported lookups")
					return nil
				},
			},
		},
	}
}
