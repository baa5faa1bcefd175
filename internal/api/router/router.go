package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/bookit-storefront/internal/http/middleware"
	"github.com/wolfman30/bookit-storefront/internal/web"
	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Pages          *web.Handler
	MetricsHandler http.Handler
	// RateLimiter is optional; nil disables per-IP limiting.
	RateLimiter *httpmiddleware.RateLimiter

	CSRFAuthKey  []byte
	CookieSecure bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Operational endpoints
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Storefront pages
	r.Group(func(pages chi.Router) {
		if cfg.RateLimiter != nil {
			pages.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}
		pages.Use(httpmiddleware.CSRF(httpmiddleware.CSRFOptions{
			AuthKey: cfg.CSRFAuthKey,
			Secure:  cfg.CookieSecure,
			Logger:  cfg.Logger,
		}))
		if cfg.Pages != nil {
			cfg.Pages.Routes(pages)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
