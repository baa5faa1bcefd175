package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/bookit-storefront/internal/api/router"
	"github.com/wolfman30/bookit-storefront/internal/app/bootstrap"
	"github.com/wolfman30/bookit-storefront/internal/checkout"
	appconfig "github.com/wolfman30/bookit-storefront/internal/config"
	httpmiddleware "github.com/wolfman30/bookit-storefront/internal/http/middleware"
	"github.com/wolfman30/bookit-storefront/internal/observability/metrics"
	"github.com/wolfman30/bookit-storefront/internal/web"
	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookit storefront",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"listing_base_url", cfg.ListingBaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires the storefront. cleanup releases the Redis connection.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*http.Server, func(), error) {
	metricsHandler, storefrontMetrics := setupMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	api := bootstrap.BuildBookitClient(cfg, logger, storefrontMetrics)
	sessions := bootstrap.BuildSessionStore(redisClient, cfg, logger)
	checkoutService := checkout.NewService(api, sessions, logger, storefrontMetrics)

	pages, err := web.NewHandler(api, checkoutService, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.Run(ctx)
	}

	r := router.New(&router.Config{
		Logger:         logger,
		Pages:          pages,
		MetricsHandler: metricsHandler,
		RateLimiter:    limiter,
		CSRFAuthKey:    []byte(cfg.CSRFAuthKey),
		CookieSecure:   cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, cleanup, nil
}

func setupMetrics() (http.Handler, *metrics.StorefrontMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewStorefrontMetrics(reg)
}
