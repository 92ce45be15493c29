package routes

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/handlers"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/utils"
)

// Deps carries everything the router needs. Google is optional; without it
// the Google endpoints are not mounted.
type Deps struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Contacts *handlers.ContactHandler
	Google   *handlers.GoogleAuthHandler

	Tokens *middleware.TokenManager
	DB     middleware.ReadinessChecker

	ListRequiresAuth bool
	RateLimit        config.RateLimitConfig
	// StaticDir holds a built frontend served for non-API GET requests.
	StaticDir string
}

// New builds the application router
func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, errors.New("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, errors.New("nil Auth handler")
	}
	if deps.Contacts == nil {
		return nil, errors.New("nil Contacts handler")
	}
	if deps.Tokens == nil {
		return nil, errors.New("nil token manager")
	}

	auth := middleware.AuthMiddleware(deps.Tokens)
	requireDB := middleware.RequireDB(deps.DB)
	limit := middleware.RateLimit(deps.RateLimit)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer)

	// Health check routes
	r.Get("/healthz", deps.Health.HealthCheck)
	r.Get("/livez", deps.Health.LivenessCheck)
	r.Get("/readyz", deps.Health.ReadinessCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", deps.Health.APIStatus)

		r.Route("/user", func(r chi.Router) {
			r.Use(requireDB)

			r.With(limit).Post("/register", utils.Handle(deps.Auth.Register))
			r.With(limit).Post("/login", utils.Handle(deps.Auth.Login))
			r.With(auth).Get("/profile", utils.Handle(deps.Auth.GetProfile))

			if deps.Google != nil {
				r.Get("/google/login", utils.Handle(deps.Google.GoogleLogin))
				r.Get("/google/callback", deps.Google.GoogleCallback)
			}
		})

		r.Route("/contact", func(r chi.Router) {
			r.Use(requireDB)

			r.With(auth).Post("/new", utils.Handle(deps.Contacts.Create))
			if deps.ListRequiresAuth {
				r.With(auth).Get("/userid/{id}", utils.Handle(deps.Contacts.ListByUser))
			} else {
				r.Get("/userid/{id}", utils.Handle(deps.Contacts.ListByUser))
			}
		})
	})

	notFound := notFoundHandler(deps.StaticDir)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r, nil
}

// NewCORS builds the CORS policy from config. Reflecting mode answers any
// origin with that origin.
func NewCORS(cfg config.CORSConfig) *cors.Cors {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
	}
	if cfg.ReflectOrigin {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(origin string) bool { return true }
	}
	return cors.New(opts)
}

// notFoundHandler answers unknown routes with the JSON 404. When staticDir is
// set, GET requests outside /api fall back to the single-page app.
func notFoundHandler(staticDir string) http.HandlerFunc {
	notFound := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, r, apperr.ErrRouteNotFound())
	}
	if staticDir == "" {
		return notFound
	}

	files := http.FileServer(http.Dir(staticDir))
	index := filepath.Join(staticDir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			notFound(w, r)
			return
		}

		path := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := os.Stat(index); err != nil {
			notFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
