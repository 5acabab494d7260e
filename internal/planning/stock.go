package planning

import (
	"time"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

type stockPair struct {
	sku       string
	warehouse string
}

// LatestSnapshots keeps, for every (sku, warehouse code) pair, the snapshots
// dated on the pair's most recent as-of date. Several rows sharing that date
// (e.g. one per disposition) are all kept. Undated rows only count when the
// pair has no dated row at all.
func LatestSnapshots(snapshots []domain.InventorySnapshot) []domain.InventorySnapshot {
	latest := make(map[stockPair]time.Time)
	for _, s := range snapshots {
		p := stockPair{sku: s.SKU, warehouse: s.WarehouseCode}
		if cur, ok := latest[p]; !ok || s.AsOf.After(cur) {
			latest[p] = s.AsOf
		}
	}

	out := make([]domain.InventorySnapshot, 0, len(latest))
	for _, s := range snapshots {
		if s.AsOf.Equal(latest[stockPair{sku: s.SKU, warehouse: s.WarehouseCode}]) {
			out = append(out, s)
		}
	}
	return out
}

// StockByGroup sums the ending balance of authoritative snapshots per group.
// Groupings that cannot be keyed on inventory yield an empty map.
func StockByGroup(latest []domain.InventorySnapshot, grouping Grouping, lookups Lookups) map[domain.GroupKey]float64 {
	out := make(map[domain.GroupKey]float64)
	if !grouping.Stockable() {
		return out
	}
	for _, s := range latest {
		key, _ := grouping.InventoryKey(s, lookups)
		out[key] += s.EndingBalance
	}
	return out
}
