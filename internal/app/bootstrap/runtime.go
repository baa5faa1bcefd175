package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
	"github.com/wolfman30/bookit-storefront/internal/checkout"
	appconfig "github.com/wolfman30/bookit-storefront/internal/config"
	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the checkout session backend: Redis when a client
// is available, otherwise an in-process store that does not survive restarts
// and is not shared between replicas.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) checkout.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.SessionTTL
	if redisClient != nil {
		logger.Info("checkout sessions stored in redis", "ttl", ttl.String())
		return checkout.NewRedisStore(redisClient, ttl)
	}
	if cfg.IsProduction() {
		logger.Warn("REDIS_ADDR not set; checkout sessions are process-local")
	}
	return checkout.NewMemoryStore(ttl)
}

// BuildBookitClient wires the upstream API client.
func BuildBookitClient(cfg *appconfig.Config, logger *logging.Logger, observer bookit.Observer) *bookit.Client {
	opts := []bookit.Option{
		bookit.WithListingBaseURL(cfg.ListingBaseURL),
		bookit.WithTimeout(cfg.APITimeout),
	}
	if observer != nil {
		opts = append(opts, bookit.WithObserver(observer))
	}
	return bookit.NewClient(cfg.APIBaseURL, logger, opts...)
}
