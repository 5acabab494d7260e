package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/fbaplan/backend-go/internal/config"
)

const (
	defaultReportTTL = 15 * time.Minute
	redisDialTimeout = 5 * time.Second
)

// reportCacheOptions is the resolved redis setup of the report cache.
type reportCacheOptions struct {
	redis     *redis.Options
	ttl       time.Duration
	namespace string
}

func newReportCacheOptions(cfg config.CacheConfig) (reportCacheOptions, error) {
	opts := reportCacheOptions{
		ttl:       time.Duration(cfg.ReportTTLSeconds) * time.Second,
		namespace: reportKeyPrefix + ":",
	}
	if opts.ttl <= 0 {
		opts.ttl = defaultReportTTL
	}

	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return opts, fmt.Errorf("invalid redis url: %w", err)
		}
		opts.redis = parsed
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	opts.redis = &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	return opts, nil
}

// dialReportCache connects and pings before the cache is handed out, so a
// misconfigured redis is reported at startup.
func dialReportCache(opts reportCacheOptions) (*redisReportCache, error) {
	client := redis.NewClient(opts.redis)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("report cache: redis ping %s failed: %w", opts.redis.Addr, err)
	}

	return &redisReportCache{client: client, ttl: opts.ttl, namespace: opts.namespace}, nil
}
