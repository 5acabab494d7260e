package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

func TestReportKey(t *testing.T) {
	t.Parallel()

	params := planning.DefaultParams()
	a, b := Digest("jan.csv", []byte("jan")), Digest("feb.csv", []byte("feb"))
	inv := Digest("ledger.csv", []byte("ledger"))

	key := ReportKey(params, []string{a, b}, []string{inv})
	assert.True(t, strings.HasPrefix(key, "fbaplan:report:"))

	assert.Equal(t, key, ReportKey(params, []string{b, a}, []string{inv}), "file order is irrelevant")
	assert.NotEqual(t, key, ReportKey(params, []string{a}, []string{b, inv}), "table membership matters")

	other := params
	other.HorizonDays = 45
	assert.NotEqual(t, key, ReportKey(other, []string{a, b}, []string{inv}))
}

func TestDigestIncludesExtension(t *testing.T) {
	t.Parallel()

	data := []byte("Sku\tQuantity\nA\t1\n")
	assert.Equal(t, Digest("mtr.csv", data), Digest("other/MTR.CSV", data), "only the extension is fingerprinted, case-insensitively")
	assert.NotEqual(t, Digest("mtr.csv", data), Digest("mtr.tsv", data))

	params := planning.DefaultParams()
	inv := []string{Digest("ledger.csv", []byte("ledger"))}
	assert.NotEqual(t,
		ReportKey(params, []string{Digest("mtr.csv", data)}, inv),
		ReportKey(params, []string{Digest("mtr.tsv", data)}, inv))
}

func TestNoopReportCache(t *testing.T) {
	t.Parallel()

	c, err := NewReportCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetReport(ctx, "k", &domain.Report{}))
	report, ok, err := c.GetReport(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, report)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestNewReportCacheOptions(t *testing.T) {
	t.Parallel()

	opts, err := newReportCacheOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.redis.Addr)
	assert.Equal(t, 2, opts.redis.DB)
	assert.Equal(t, defaultReportTTL, opts.ttl)
	assert.Equal(t, "fbaplan:report:", opts.namespace)

	opts, err = newReportCacheOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/3", ReportTTLSeconds: 60})
	require.NoError(t, err)
	assert.Equal(t, "secret", opts.redis.Password)
	assert.Equal(t, 3, opts.redis.DB)
	assert.Equal(t, time.Minute, opts.ttl)

	key := ReportKey(planning.DefaultParams(), nil, nil)
	assert.True(t, strings.HasPrefix(key, opts.namespace), "report keys live under the invalidation namespace")

	_, err = newReportCacheOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}
