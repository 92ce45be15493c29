package middleware

import (
	"net/http"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/utils"
)

// ReadinessChecker reports whether the database can serve queries right now.
type ReadinessChecker interface {
	Ready() bool
}

// RequireDB fails fast with 503 while the database is not ready, instead of
// letting the request block on a dead connection.
func RequireDB(checker ReadinessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil || !checker.Ready() {
				utils.WriteError(w, r, apperr.ErrDBUnavailable(nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
