package planning

import (
	"sort"
	"time"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// FullHistory selects every sales record.
const FullHistory = 0

// WindowSelection is the sales subset used for demand figures.
type WindowSelection struct {
	Records       []domain.SalesRecord
	Start         time.Time
	End           time.Time
	Days          int // effective history_window_days, never below 1
	RequestedDays int
	FellBack      bool // a rolling window was empty and full history was used
}

// SelectWindow keeps records shipped on or after (latest shipment date -
// days + 1). days == FullHistory keeps everything. An empty rolling window
// falls back to full history and is flagged.
func SelectWindow(records []domain.SalesRecord, days int) WindowSelection {
	sel := WindowSelection{RequestedDays: days, Days: 1}
	if len(records) == 0 {
		return sel
	}

	subset := records
	if days > FullHistory {
		latest := records[0].ShipmentDate
		for _, r := range records[1:] {
			if r.ShipmentDate.After(latest) {
				latest = r.ShipmentDate
			}
		}
		cutoff := latest.AddDate(0, 0, -days+1)

		filtered := make([]domain.SalesRecord, 0, len(records))
		for _, r := range records {
			if !r.ShipmentDate.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			sel.FellBack = true
		} else {
			subset = filtered
		}
	}

	sel.Records = subset
	sel.Start, sel.End = subset[0].ShipmentDate, subset[0].ShipmentDate
	for _, r := range subset[1:] {
		if r.ShipmentDate.Before(sel.Start) {
			sel.Start = r.ShipmentDate
		}
		if r.ShipmentDate.After(sel.End) {
			sel.End = r.ShipmentDate
		}
	}
	sel.Days = daysBetween(sel.Start, sel.End) + 1
	if sel.Days < 1 {
		sel.Days = 1
	}
	return sel
}

// DemandGroup is the historical demand of one entity group.
type DemandGroup struct {
	Key      domain.GroupKey
	Total    float64
	Daily    map[time.Time]float64
	LastSale time.Time
}

// Series returns the per-day demand in date order, one value per day with sales.
func (g *DemandGroup) Series() []float64 {
	days := make([]time.Time, 0, len(g.Daily))
	for d := range g.Daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = g.Daily[d]
	}
	return out
}

// AggregateDemand sums sales per group and per group-day.
func AggregateDemand(records []domain.SalesRecord, grouping Grouping, lookups Lookups) map[domain.GroupKey]*DemandGroup {
	groups := make(map[domain.GroupKey]*DemandGroup)
	for _, r := range records {
		key := grouping.SalesKey(r, lookups)
		g, ok := groups[key]
		if !ok {
			g = &DemandGroup{Key: key, Daily: make(map[time.Time]float64)}
			groups[key] = g
		}
		g.Total += r.Quantity
		g.Daily[r.ShipmentDate] += r.Quantity
		if r.ShipmentDate.After(g.LastSale) {
			g.LastSale = r.ShipmentDate
		}
	}
	return groups
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
