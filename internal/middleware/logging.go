package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/logger"
	"CONTACTS_BACK-END/internal/utils"
)

// RequestLogger writes one access-log line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		l := logger.WithRequestID(middleware.GetReqID(r.Context()))
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// Recoverer is the last-resort handler: a panic becomes a logged 500 with
// a generic body.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			l := logger.WithRequestID(middleware.GetReqID(r.Context()))
			l.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			utils.WriteJSONResponse(w, http.StatusInternalServerError, map[string]string{
				"message": apperr.ErrInternal(nil).Message,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
