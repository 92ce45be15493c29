// @title Contacts API
// @version 1.0
// @description Contact management backend: accounts, session tokens and per-user contacts

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey AuthHeader
// @in header
// @name Auth

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "CONTACTS_BACK-END/docs" // This is required for swagger
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/handlers"
	"CONTACTS_BACK-END/internal/logger"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/routes"
	"CONTACTS_BACK-END/internal/store"
	"CONTACTS_BACK-END/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "console")
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The pool connects lazily, so the server starts even when Postgres is
	// down; the monitor flips readiness once it answers.
	pool, err := store.NewPool(ctx, &cfg.Database, cfg.GetDSN())
	if err != nil {
		log.Error().Err(err).Msg("invalid database configuration, API will answer 503")
	}

	var pinger store.Pinger
	if pool != nil {
		pinger = pool
		defer pool.Close()
	}
	monitor := store.NewMonitor(pinger, cfg.Database.PingInterval, cfg.Database.ConnTimeout, func(ctx context.Context) error {
		return store.Migrate(ctx, pool)
	})
	monitor.Check(ctx)
	go monitor.Run(ctx)

	// --- HTTP Handlers ---

	tokens := middleware.NewTokenManager(&cfg.JWT)
	users := store.NewUserStore(pool, cfg.Database.QueryTimeout)
	contacts := store.NewContactStore(pool, cfg.Database.QueryTimeout)

	deps := routes.Deps{
		Health:           handlers.NewHealthHandler(monitor),
		Auth:             handlers.NewAuthHandler(users, utils.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, &cfg.Auth),
		Contacts:         handlers.NewContactHandler(contacts, cfg.Auth.ListRequiresAuth),
		Tokens:           tokens,
		DB:               monitor,
		ListRequiresAuth: cfg.Auth.ListRequiresAuth,
		RateLimit:        cfg.RateLimit,
		StaticDir:        cfg.Server.StaticDir,
	}
	if cfg.IsGoogleOAuthConfigured() {
		deps.Google = handlers.NewGoogleAuthHandler(users, tokens, handlers.NewGoogleProvider(&cfg.GoogleOAuth), &cfg.GoogleOAuth)
	}

	router, err := routes.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	// --- HTTP Server + Graceful Shutdown ---

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.NewCORS(cfg.CORS).Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Env).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
