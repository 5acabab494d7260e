package planning

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundUnits rounds v half away from zero to a whole unit.
func roundUnits(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
