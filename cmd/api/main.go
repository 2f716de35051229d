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

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/cloudportal/internal/auth"
	"github.com/vaughan-dsouza/cloudportal/internal/cloudstack"
	"github.com/vaughan-dsouza/cloudportal/internal/config"
	"github.com/vaughan-dsouza/cloudportal/internal/db"
	"github.com/vaughan-dsouza/cloudportal/internal/handlers"
	"github.com/vaughan-dsouza/cloudportal/internal/logging"
	"github.com/vaughan-dsouza/cloudportal/internal/metrics"
	"github.com/vaughan-dsouza/cloudportal/internal/ratelimit"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn.DB, cfg.Database.Driver); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	users := store.NewUserStore(dbConn)
	m := metrics.New()

	deps := handlers.Deps{
		Auth:           auth.NewService(users, tokens, cfg.BcryptCost, log.WithField("component", "auth")),
		Tokens:         tokens,
		Users:          users,
		Quotas:         store.NewQuotaStore(dbConn),
		Hierarchy:      store.NewHierarchyStore(dbConn),
		CloudStack:     cloudstack.PlaceholderClient{},
		Checks:         map[string]handlers.Pinger{"database": dbConn.PingContext},
		Metrics:        m,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: proxies,
		Log:            log.WithField("component", "http"),
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		deps.Limiter = ratelimit.NewRedisLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow, "portal:login")
		deps.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.WithField("addr", cfg.Redis.Addr).Info("login rate limiting enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewHandler(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "driver": cfg.Database.Driver}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
