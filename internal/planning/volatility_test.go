package planning

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleStdDev(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, SampleStdDev(nil))
	assert.Equal(t, 0.0, SampleStdDev([]float64{42}))
	assert.InDelta(t, math.Sqrt(50), SampleStdDev([]float64{10, 20}), 1e-9)
	assert.InDelta(t, 2.138, SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-3)
	assert.Equal(t, 0.0, SampleStdDev([]float64{math.Inf(1), 1}))
}

func TestSafetyStock(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 90.37, SafetyStock(1.65, 10, 30), 0.01)
	assert.Equal(t, 0.0, SafetyStock(1.65, 0, 30))
}

func TestServiceLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ServiceLevel
		z    float64
	}{
		{"90", ServiceLevel90, 1.28},
		{"95%", ServiceLevel95, 1.65},
		{"0.98", ServiceLevel98, 2.05},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			s, err := ParseServiceLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)

			z, err := s.ZScore()
			require.NoError(t, err)
			assert.Equal(t, tt.z, z)
		})
	}

	t.Run("unsupported level", func(t *testing.T) {
		t.Parallel()
		_, err := ParseServiceLevel("97")
		assert.True(t, errors.Is(err, ErrInvalidParams))

		_, err = ParseServiceLevel("high")
		assert.True(t, errors.Is(err, ErrInvalidParams))
	})

	assert.Equal(t, []ServiceLevel{ServiceLevel90, ServiceLevel95, ServiceLevel98}, ServiceLevels())
}
