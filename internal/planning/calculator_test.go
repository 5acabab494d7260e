package planning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

func TestReplenishmentCalculator(t *testing.T) {
	t.Parallel()

	calc := NewReplenishmentCalculator(30, 1.65)

	t.Run("understocked sku", func(t *testing.T) {
		t.Parallel()
		row := calc.Calculate(ReplenishmentInput{
			TotalHistorySales: 30,
			HistoryWindowDays: 15,
			DemandStdDev:      10,
			CurrentStock:      10,
		})

		assert.Equal(t, 2.0, row.AvgDailySale)
		assert.InDelta(t, 1.65*10*math.Sqrt(30), row.SafetyStock, 1e-9)
		assert.InDelta(t, 60+row.SafetyStock, row.RequiredStock, 1e-9)
		assert.InDelta(t, row.RequiredStock-10, row.RecommendedDispatchQty, 1e-9)
		assert.Equal(t, 5.0, row.DaysOfCover)
		assert.False(t, row.InfiniteCover)
		assert.Equal(t, domain.HealthAtRisk, row.HealthTag)
	})

	t.Run("surplus never dispatches negative", func(t *testing.T) {
		t.Parallel()
		row := calc.Calculate(ReplenishmentInput{
			TotalHistorySales: 30,
			HistoryWindowDays: 30,
			CurrentStock:      500,
		})
		assert.Equal(t, 0.0, row.RecommendedDispatchQty)
		assert.Equal(t, domain.HealthExcess, row.HealthTag)
	})

	t.Run("zero window is floored to one day", func(t *testing.T) {
		t.Parallel()
		row := calc.Calculate(ReplenishmentInput{TotalHistorySales: 4})
		assert.Equal(t, 1, row.HistoryWindowDays)
		assert.Equal(t, 4.0, row.AvgDailySale)
	})

	t.Run("no sales with stock is infinite cover", func(t *testing.T) {
		t.Parallel()
		row := calc.Calculate(ReplenishmentInput{HistoryWindowDays: 10, CurrentStock: 50})
		assert.Equal(t, 50.0, row.DaysOfCover)
		assert.True(t, row.InfiniteCover)
		assert.Equal(t, domain.HealthDead, row.HealthTag)
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		avg   float64
		stock float64
		doc   float64
		want  domain.HealthTag
	}{
		{"dead wins over excess", 0, 50, 500, domain.HealthDead},
		{"no sales no stock", 0, 0, 0, domain.HealthAtRisk},
		{"low cover", 2, 10, 5, domain.HealthAtRisk},
		{"exactly half horizon", 1, 15, 15, domain.HealthHealthy},
		{"exactly twice horizon", 1, 60, 60, domain.HealthHealthy},
		{"above twice horizon", 1, 61, 61, domain.HealthExcess},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.avg, tt.stock, tt.doc, 30))
		})
	}
}
