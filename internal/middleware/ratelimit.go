package middleware

import (
	"net/http"

	"github.com/go-chi/httprate"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/utils"
)

// RateLimit throttles requests per client IP. A disabled config yields a
// pass-through middleware.
func RateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		cfg.Limit,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, r, apperr.ErrTooManyRequests())
		}),
	)
}
