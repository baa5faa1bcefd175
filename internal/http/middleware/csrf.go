package middleware

import (
	"crypto/rand"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

// CSRFOptions configures form protection.
type CSRFOptions struct {
	// AuthKey must be 32 bytes. A random key is generated when empty, which
	// invalidates outstanding forms on restart.
	AuthKey []byte
	Secure  bool
	Logger  *logging.Logger
}

// CSRF protects unsafe methods with gorilla/csrf. Plain-HTTP deployments are
// marked so the origin check does not demand TLS.
func CSRF(opts CSRFOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	key := opts.AuthKey
	if len(key) != 32 {
		if len(key) > 0 {
			logger.Warn("csrf auth key must be 32 bytes; generating a random key")
		}
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("middleware: generate csrf key: " + err.Error())
		}
	}

	protect := csrf.Protect(key,
		csrf.Secure(opts.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context(), logger).Warn("csrf validation failed",
				"path", r.URL.Path,
				"reason", csrf.FailureReason(r),
			)
			http.Error(w, "Forbidden - invalid or expired form. Please reload the page.", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if opts.Secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
