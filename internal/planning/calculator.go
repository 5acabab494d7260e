package planning

import (
	"math"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// ReplenishmentInput carries the demand and stock figures of one group.
type ReplenishmentInput struct {
	TotalHistorySales float64
	HistoryWindowDays int
	DemandStdDev      float64
	CurrentStock      float64
}

// ReplenishmentCalculator turns demand and stock figures into a plan.
type ReplenishmentCalculator struct {
	horizonDays int
	zValue      float64
}

// NewReplenishmentCalculator creates a calculator for a horizon and safety multiplier.
func NewReplenishmentCalculator(horizonDays int, zValue float64) *ReplenishmentCalculator {
	return &ReplenishmentCalculator{
		horizonDays: horizonDays,
		zValue:      zValue,
	}
}

// Calculate computes every metric of a planning row except its identity.
func (rc *ReplenishmentCalculator) Calculate(in ReplenishmentInput) domain.PlanningRow {
	row := domain.PlanningRow{
		TotalHistorySales:   in.TotalHistorySales,
		HistoryWindowDays:   in.HistoryWindowDays,
		PlanningHorizonDays: rc.horizonDays,
		DemandStdDev:        in.DemandStdDev,
		CurrentStock:        in.CurrentStock,
	}
	if row.HistoryWindowDays < 1 {
		row.HistoryWindowDays = 1
	}

	// 1. Average daily sale over the effective window
	row.AvgDailySale = row.TotalHistorySales / float64(row.HistoryWindowDays)

	// 2. Safety stock = z × σ × √horizon
	row.SafetyStock = SafetyStock(rc.zValue, row.DemandStdDev, rc.horizonDays)

	// 3. Required stock = expected horizon demand + safety stock
	row.RequiredStock = row.AvgDailySale*float64(rc.horizonDays) + row.SafetyStock

	// 4. Recommended dispatch, never negative
	row.RecommendedDispatchQty = math.Max(0, row.RequiredStock-row.CurrentStock)

	// 5. Days of cover with a floor of 1 in the denominator only
	row.DaysOfCover = row.CurrentStock / math.Max(row.AvgDailySale, 1)
	row.InfiniteCover = row.AvgDailySale <= 0 && row.CurrentStock > 0

	// 6. Health tag
	row.HealthTag = Classify(row.AvgDailySale, row.CurrentStock, row.DaysOfCover, rc.horizonDays)

	return row
}

// Classify assigns a health tag; the first matching rule wins.
func Classify(avgDailySale, currentStock, daysOfCover float64, horizonDays int) domain.HealthTag {
	horizon := float64(horizonDays)
	switch {
	case avgDailySale <= 0 && currentStock > 0:
		return domain.HealthDead
	case daysOfCover < 0.5*horizon:
		return domain.HealthAtRisk
	case daysOfCover > 2*horizon:
		return domain.HealthExcess
	default:
		return domain.HealthHealthy
	}
}
