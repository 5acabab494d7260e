package planning

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ServiceLevel is a target probability (in percent) of not stocking out
// during the planning horizon.
type ServiceLevel int

const (
	ServiceLevel90 ServiceLevel = 90
	ServiceLevel95 ServiceLevel = 95
	ServiceLevel98 ServiceLevel = 98
)

// zScores is fixed; service levels outside it are rejected.
var zScores = map[ServiceLevel]float64{
	ServiceLevel90: 1.28,
	ServiceLevel95: 1.65,
	ServiceLevel98: 2.05,
}

// ZScore returns the safety multiplier of the service level.
func (s ServiceLevel) ZScore() (float64, error) {
	z, ok := zScores[s]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported service level %d%%", ErrInvalidParams, int(s))
	}
	return z, nil
}

// ServiceLevels lists the supported service levels in ascending order.
func ServiceLevels() []ServiceLevel {
	out := make([]ServiceLevel, 0, len(zScores))
	for s := range zScores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseServiceLevel accepts "95", "95%" or "0.95".
func ParseServiceLevel(v string) (ServiceLevel, error) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "%")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid service level %q", ErrInvalidParams, v)
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	s := ServiceLevel(math.Round(f))
	if _, err := s.ZScore(); err != nil {
		return 0, err
	}
	return s, nil
}

// SampleStdDev returns the sample (n-1) standard deviation of values.
// Fewer than two values yield 0, as does any non-finite result.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0
	}
	return sd
}

// SafetyStock = z * stddev * sqrt(horizon days).
func SafetyStock(z, stddev float64, horizonDays int) float64 {
	return z * stddev * math.Sqrt(float64(horizonDays))
}
