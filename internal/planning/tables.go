package planning

import (
	"sort"
	"time"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// riskTables derives the dead, slow-moving and excess subsets of a plan.
func riskTables(plan []domain.PlanningRow, params Params) (dead, slow, excess []domain.PlanningRow) {
	dead, slow, excess = []domain.PlanningRow{}, []domain.PlanningRow{}, []domain.PlanningRow{}
	excessCover := 2 * float64(params.HorizonDays)
	for _, row := range plan {
		if row.TotalHistorySales == 0 && row.CurrentStock > 0 {
			dead = append(dead, row)
		}
		if row.DaysOfCover > float64(params.SlowMovingDays) {
			slow = append(slow, row)
		}
		if row.DaysOfCover > excessCover {
			excess = append(excess, row)
		}
	}

	byCover := func(rows []domain.PlanningRow) {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].DaysOfCover > rows[j].DaysOfCover })
	}
	byCover(slow)
	byCover(excess)
	sort.SliceStable(dead, func(i, j int) bool { return dead[i].CurrentStock > dead[j].CurrentStock })
	return dead, slow, excess
}

// inactiveSKUs lists SKUs whose last sale is more than thresholdDays before
// the last shipment date of the whole dataset.
func inactiveSKUs(records []domain.SalesRecord, stock map[domain.GroupKey]float64, thresholdDays int) []domain.InactiveSKU {
	out := []domain.InactiveSKU{}
	if len(records) == 0 {
		return out
	}

	lastSale := make(map[string]time.Time)
	var latest time.Time
	for _, r := range records {
		if r.ShipmentDate.After(lastSale[r.SKU]) {
			lastSale[r.SKU] = r.ShipmentDate
		}
		if r.ShipmentDate.After(latest) {
			latest = r.ShipmentDate
		}
	}

	for sku, last := range lastSale {
		days := daysBetween(last, latest)
		if days <= thresholdDays {
			continue
		}
		out = append(out, domain.InactiveSKU{
			SKU:               sku,
			LastSaleDate:      last,
			DaysSinceLastSale: days,
			CurrentStock:      stock[domain.GroupKey{SKU: sku}],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysSinceLastSale != out[j].DaysSinceLastSale {
			return out[i].DaysSinceLastSale > out[j].DaysSinceLastSale
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}

// summarize totals units per label, largest first. Blank labels are
// skipped; limit > 0 keeps only the first limit rows.
func summarize(records []domain.SalesRecord, label func(domain.SalesRecord) string, limit int) []domain.SummaryRow {
	units := make(map[string]float64)
	var total float64
	for _, r := range records {
		l := label(r)
		if l == "" {
			continue
		}
		units[l] += r.Quantity
		total += r.Quantity
	}

	out := make([]domain.SummaryRow, 0, len(units))
	for l, u := range units {
		row := domain.SummaryRow{Label: l, Units: u}
		if total > 0 {
			row.Share = roundFloat(u/total, 4)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Label < out[j].Label
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
