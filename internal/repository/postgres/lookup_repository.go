package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/repository"
)

const lookupSchema = `
    CREATE TABLE IF NOT EXISTS region_clusters (
        region     TEXT PRIMARY KEY,
        cluster    TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS fulfillment_centers (
        code       TEXT PRIMARY KEY,
        name       TEXT NOT NULL DEFAULT '',
        region     TEXT NOT NULL DEFAULT '',
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
`

type regionCluster struct {
	Region  string `db:"region"`
	Cluster string `db:"cluster"`
}

type lookupRepository struct {
	db *DB
}

func NewLookupRepository(db *DB) repository.LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) EnsureSchema(ctx context.Context) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range strings.Split(lookupSchema, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create lookup tables: %w", err)
			}
		}
		return nil
	})
}

func (r *lookupRepository) LoadLookups(ctx context.Context) (planning.Lookups, error) {
	var clusters []regionCluster
	if err := r.db.SelectContext(ctx, &clusters, `SELECT region, cluster FROM region_clusters`); err != nil {
		return planning.Lookups{}, fmt.Errorf("failed to load region clusters: %w", err)
	}

	var centers []planning.FulfillmentCenter
	if err := r.db.SelectContext(ctx, &centers, `SELECT code, name, region FROM fulfillment_centers`); err != nil {
		return planning.Lookups{}, fmt.Errorf("failed to load fulfillment centers: %w", err)
	}

	log.Debug().
		Int("clusters", len(clusters)).
		Int("fulfillment_centers", len(centers)).
		Msg("loaded lookup tables")

	return planning.NewLookups(clusterMap(clusters), centers), nil
}

// ReplaceLookups swaps both tables for the given contents in one transaction.
func (r *lookupRepository) ReplaceLookups(ctx context.Context, clusters map[string]string, centers []planning.FulfillmentCenter) error {
	// Normalize through NewLookups so stored keys match lookup semantics
	normalized := planning.NewLookups(clusters, centers)

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM region_clusters`); err != nil {
			return fmt.Errorf("failed to clear region clusters: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM fulfillment_centers`); err != nil {
			return fmt.Errorf("failed to clear fulfillment centers: %w", err)
		}

		if rows := clusterRows(normalized.Clusters); len(rows) > 0 {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO region_clusters (region, cluster) VALUES (:region, :cluster)`, rows); err != nil {
				return fmt.Errorf("failed to insert region clusters: %w", err)
			}
		}
		if rows := centerRows(normalized.FulfillmentCenters); len(rows) > 0 {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO fulfillment_centers (code, name, region) VALUES (:code, :name, :region)`, rows); err != nil {
				return fmt.Errorf("failed to insert fulfillment centers: %w", err)
			}
		}
		return nil
	})
}

func clusterMap(rows []regionCluster) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Region] = row.Cluster
	}
	return out
}

func clusterRows(clusters map[string]string) []regionCluster {
	rows := make([]regionCluster, 0, len(clusters))
	for region, cluster := range clusters {
		rows = append(rows, regionCluster{Region: region, Cluster: cluster})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Region < rows[j].Region })
	return rows
}

func centerRows(centers map[string]planning.FulfillmentCenter) []planning.FulfillmentCenter {
	rows := make([]planning.FulfillmentCenter, 0, len(centers))
	for _, fc := range centers {
		rows = append(rows, fc)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows
}
