package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/cache"
	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/repository"
	"github.com/andresuchdata/fbaplan/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/fbaplan/backend-go/internal/service"
	"github.com/andresuchdata/fbaplan/backend-go/internal/storage"
)

// Runtime bundles the planning service with the connections backing it.
type Runtime struct {
	Service    *service.PlanningService
	Storage    storage.ObjectStorage
	LookupRepo repository.LookupRepository

	db *postgres.DB
}

// Close releases the database pool, if one was opened.
func (r *Runtime) Close() {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}

// Build wires the planning service from configuration. Optional backends
// (database, redis, object storage) are only connected when configured.
// Lookups come from the lookups file when one is set, otherwise from the
// database.
func Build(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	var lookups planning.Lookups
	if cfg.App.LookupsFile != "" {
		lf, err := config.ReadLookupFile(cfg.App.LookupsFile)
		if err != nil {
			return nil, err
		}
		lookups = lf.Lookups()
		log.Info().Str("file", cfg.App.LookupsFile).Int("clusters", len(lf.Clusters)).
			Int("fulfillment_centers", len(lf.FulfillmentCenters)).Msg("loaded lookups file")
	}

	if cfg.Database.Enabled() {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.db = db
		rt.LookupRepo = postgres.NewLookupRepository(db)
		if err := rt.LookupRepo.EnsureSchema(ctx); err != nil {
			rt.Close()
			return nil, err
		}
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("report cache unavailable, continuing without cache")
		reportCache = cache.NewNoopReportCache()
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Storage = client
	}

	svc, err := service.NewPlanningService(service.Options{
		Lookups:       lookups,
		InventoryKeys: cfg.Planning.Keys(),
		Cache:         reportCache,
		Storage:       rt.Storage,
		LookupRepo:    rt.LookupRepo,
		BrandName:     cfg.Planning.BrandName,
		StoragePrefix: cfg.Storage.Prefix,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc

	if cfg.App.LookupsFile == "" && rt.LookupRepo != nil {
		if err := svc.ReloadLookups(ctx); err != nil {
			rt.Close()
			return nil, err
		}
	}

	return rt, nil
}
