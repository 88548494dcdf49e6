package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/arashmdn/student-portal/internal/audit"
	"github.com/arashmdn/student-portal/internal/database"
	"github.com/arashmdn/student-portal/internal/guard"
	"github.com/arashmdn/student-portal/internal/http/handlers"
	mw "github.com/arashmdn/student-portal/internal/http/middleware"
	"github.com/arashmdn/student-portal/internal/platform/auth"
	"github.com/arashmdn/student-portal/internal/repo/postgres"
	"github.com/arashmdn/student-portal/internal/service"
	"github.com/arashmdn/student-portal/pkg/config"
	"github.com/arashmdn/student-portal/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Audit sink: NATS when configured, structured log otherwise.
	var sink audit.Sink = audit.NewLogSink()
	if cfg.NATS.URL != "" {
		natsSink, err := audit.NewNATSSink(cfg.NATS.URL)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsSink.Close()
		sink = natsSink
	}

	// Lockout guard: redis-backed when enabled, in-process otherwise.
	var lockout guard.LockoutGuard
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid redis URL", "error", err)
			os.Exit(1)
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		opts.DB = cfg.Redis.DB
		client := redis.NewClient(opts)
		defer client.Close()
		lockout = guard.NewRedisGuard(client, cfg.Admin.LockoutThreshold, cfg.Admin.LockoutDuration)
	} else {
		memGuard := guard.NewMemoryGuard(cfg.Admin.LockoutThreshold, cfg.Admin.LockoutDuration)
		go func() {
			ticker := time.NewTicker(cfg.Admin.LockoutDuration)
			defer ticker.Stop()
			for range ticker.C {
				memGuard.Sweep()
			}
		}()
		lockout = memGuard
	}

	usersRepo := postgres.NewUsersRepo(pool)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authService := service.NewAuthService(usersRepo, hasher, tokens, sink)

	if err := authService.SeedDefaultRoles(ctx); err != nil {
		logger.Error("failed to seed roles", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           300,
	}))

	handlers.New(authService, lockout, tokens).Mount(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting portal API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
