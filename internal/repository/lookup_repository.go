package repository

import (
	"context"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

// LookupRepository persists the deployment lookup tables: the region to
// cluster map and the fulfillment center directory.
type LookupRepository interface {
	EnsureSchema(ctx context.Context) error
	LoadLookups(ctx context.Context) (planning.Lookups, error)
	ReplaceLookups(ctx context.Context, clusters map[string]string, centers []planning.FulfillmentCenter) error
}
