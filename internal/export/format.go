package export

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// displayPlaces is the precision of fractional figures in exported tables.
const displayPlaces = 2

var printer = message.NewPrinter(language.English)

// cellValue rounds floats for display; other values pass through.
func cellValue(v interface{}) interface{} {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	rounded, _ := decimal.NewFromFloat(f).Round(displayPlaces).Float64()
	return rounded
}

// cellString renders a cell for CSV output.
func cellString(v interface{}) string {
	switch x := cellValue(v).(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02")
	case nil:
		return ""
	default:
		return printer.Sprint(x)
	}
}

// units renders a quantity with thousands separators, e.g. "12,345".
func units(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// fractional renders a figure with thousands separators and two decimals.
func fractional(v float64) string {
	return printer.Sprintf("%.2f", v)
}
