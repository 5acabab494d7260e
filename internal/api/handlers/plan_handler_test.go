package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

func formContext(t *testing.T, form url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestParseParams(t *testing.T) {
	defaults := planning.Params{
		HorizonDays:    45,
		ServiceLevel:   planning.ServiceLevel90,
		WindowDays:     60,
		SlowMovingDays: 100,
		InactiveDays:   30,
		TopCities:      10,
	}

	t.Run("zero keeps the configured default", func(t *testing.T) {
		got, err := parseParams(formContext(t, url.Values{
			"horizon_days":     {"0"},
			"slow_moving_days": {"0"},
			"inactive_days":    {"0"},
			"top_cities":       {"0"},
			"window_days":      {"0"},
		}), defaults)
		require.NoError(t, err)

		want := defaults
		want.WindowDays = planning.FullHistory
		assert.Equal(t, want, got)
	})

	t.Run("explicit values override", func(t *testing.T) {
		got, err := parseParams(formContext(t, url.Values{
			"horizon_days":  {"14"},
			"service_level": {"0.98"},
			"top_cities":    {"3"},
		}), defaults)
		require.NoError(t, err)
		assert.Equal(t, 14, got.HorizonDays)
		assert.Equal(t, planning.ServiceLevel98, got.ServiceLevel)
		assert.Equal(t, 3, got.TopCities)
		assert.Equal(t, 100, got.SlowMovingDays)
	})

	t.Run("negative threshold is rejected", func(t *testing.T) {
		_, err := parseParams(formContext(t, url.Values{"inactive_days": {"-1"}}), defaults)
		assert.True(t, errors.Is(err, planning.ErrInvalidParams))
	})
}
