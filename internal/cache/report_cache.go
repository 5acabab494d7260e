package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

const (
	reportKeyPrefix     = "fbaplan:report"
	reportScanBatchSize = 100
)

// ReportCache stores finished planning reports keyed by their inputs.
type ReportCache interface {
	GetReport(ctx context.Context, key string) (*domain.Report, bool, error)
	SetReport(ctx context.Context, key string, report *domain.Report) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	opts, err := newReportCacheOptions(cfg)
	if err != nil {
		return nil, err
	}
	return dialReportCache(opts)
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, key string) (*domain.Report, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached report: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, key string, report *domain.Report) error {
	if report == nil {
		return nil
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// InvalidateAll unlinks every report under the cache namespace, in batches
// of reportScanBatchSize keys.
func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.namespace+"*", reportScanBatchSize).Iterator()
	batch := make([]string, 0, reportScanBatchSize)
	removed := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("report cache: unlink failed: %w", err)
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == reportScanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("report cache: scan failed: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	log.Debug().Int("reports", removed).Msg("report cache invalidated")
	return nil
}

func (c *noopReportCache) GetReport(context.Context, string) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (c *noopReportCache) SetReport(context.Context, string, *domain.Report) error {
	return nil
}

func (c *noopReportCache) InvalidateAll(context.Context) error {
	return nil
}

// Digest fingerprints one input file. The extension is part of the
// fingerprint since it selects the parser (a .tsv splits on tabs where the
// same bytes as .csv do not).
func Digest(name string, data []byte) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(filepath.Ext(name))))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ReportKey builds the cache key of a run from the digests of its sales and
// inventory files and its parameters. File order within a table does not
// matter, the table a file belongs to does.
func ReportKey(params planning.Params, salesDigests, inventoryDigests []string) string {
	sales := append([]string(nil), salesDigests...)
	inventory := append([]string(nil), inventoryDigests...)
	sort.Strings(sales)
	sort.Strings(inventory)

	parts := []string{
		fmt.Sprintf("h=%d", params.HorizonDays),
		fmt.Sprintf("sl=%d", params.ServiceLevel),
		fmt.Sprintf("w=%d", params.WindowDays),
		fmt.Sprintf("slow=%d", params.SlowMovingDays),
		fmt.Sprintf("inactive=%d", params.InactiveDays),
		fmt.Sprintf("cities=%d", params.TopCities),
		"sales=" + strings.Join(sales, ","),
		"inventory=" + strings.Join(inventory, ","),
	}

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s", reportKeyPrefix, hex.EncodeToString(hash[:]))
}
