package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/unimag/internal/config"
	"github.com/dimitrije/unimag/internal/database"
	"github.com/dimitrije/unimag/internal/handlers"
	"github.com/dimitrije/unimag/internal/logger"
	authmw "github.com/dimitrije/unimag/internal/middleware"
	"github.com/dimitrije/unimag/internal/provider"
	"github.com/dimitrije/unimag/internal/session"
	"github.com/dimitrije/unimag/internal/telemetry"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode, cfg.LogRedact)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		logg.Fatal("failed to init tracing", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	httpClient := telemetry.HTTPClient(&http.Client{Timeout: cfg.Supabase.HTTPTimeout})

	var storage provider.SessionStorage = provider.NewMemoryStorage()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logg.Fatal("invalid REDIS_URL", "error", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logg.Fatal("failed to connect to redis", "error", err)
		}
		storage = provider.NewRedisStorage(rdb, cfg.SessionKey, cfg.SessionTTL)
		logg.Info("session storage: redis")
	}

	var profiles provider.ProfileSource
	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logg.Fatal("failed to connect to database", "error", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logg.Fatal("failed to run migrations", "error", err)
		}
		profiles = provider.NewPostgresProfiles(db)
		logg.Info("profile source: postgres")
	}

	gateway := provider.NewClient(provider.Options{
		URL:              cfg.Supabase.URL,
		AnonKey:          cfg.Supabase.AnonKey,
		JWTSecret:        cfg.Supabase.JWTSecret,
		ResetRedirectURL: cfg.PasswordResetURL(),
		HTTPClient:       httpClient,
		Storage:          storage,
		Profiles:         profiles,
		Logger:           logg,
	})

	store := session.New(gateway, logg)
	defer store.Dispose()

	if err := store.Initialize(ctx); err != nil {
		// A provider outage at startup leaves the store signed out; it
		// recovers on the next sign-in.
		logg.Warn("could not restore session", "error", err)
	}

	sessionHandler := handlers.NewSessionHandler(store, logg)
	authHandler := handlers.NewAuthHandler(store, gateway, logg)
	profileHandler := handlers.NewProfileHandler(store, logg)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.BaseURL},
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", authmw.APIKeyHeader},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	local := api.Group("")
	local.Use(authmw.APIKey(cfg.APIKey))

	local.Get("/session", sessionHandler.Get)
	local.Get("/session/events", sessionHandler.Events)

	local.Post("/auth/signup", authHandler.SignUp)
	local.Post("/auth/signin", authHandler.SignIn)
	local.Post("/auth/signout", authHandler.SignOut)
	local.Post("/auth/password/reset", authHandler.ResetPassword)
	local.Post("/auth/password/recovery", authHandler.VerifyRecovery)

	protected := local.Group("")
	protected.Use(authmw.RequireIdentity(store))

	protected.Patch("/profile", profileHandler.Update)
	protected.Post("/auth/password", authHandler.UpdatePassword)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logg.Info("shutting down server")
		// Closing the store first ends open event streams.
		store.Dispose()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error("server stopped", "error", err)
	}
}
