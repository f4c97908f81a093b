package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/uth-confms/confms/pkg/accounts"
	"github.com/uth-confms/confms/pkg/api"
	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/auth"
	"github.com/uth-confms/confms/pkg/authz"
	"github.com/uth-confms/confms/pkg/config"
	"github.com/uth-confms/confms/pkg/observability"
	"github.com/uth-confms/confms/pkg/recovery"
	"github.com/uth-confms/confms/pkg/workflow"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.Level(), os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnLifetime)

	if err := db.Ping(); err != nil {
		return err
	}
	logger.Info("connected to postgres")

	// Stores
	accountStore, err := accounts.NewPostgresStore(db)
	if err != nil {
		return err
	}
	roleStore, err := authz.NewPostgresStore(db)
	if err != nil {
		return err
	}
	workflowStore, err := workflow.NewPostgresStore(db)
	if err != nil {
		return err
	}

	// Audit trail
	var auditor audit.Logger = audit.NopLogger{}
	var searcher api.AuditSearcher
	var sweeper *audit.RetentionSweeper
	if cfg.Audit.Enabled {
		dbLogger, err := audit.NewDBLogger(db)
		if err != nil {
			return err
		}
		auditor = dbLogger
		searcher = dbLogger

		if cfg.Audit.FilePath != "" {
			fileLogger, err := audit.NewFileLogger(cfg.Audit.FilePath)
			if err != nil {
				return err
			}
			defer fileLogger.Close()
			auditor = audit.NewMultiLogger(dbLogger, fileLogger)
		}

		policy := audit.RetentionPolicy{Enabled: true, RetentionDays: cfg.Audit.RetentionDays}
		sweeper = audit.NewRetentionSweeper(dbLogger, policy, logger)
		if err := sweeper.Start(cfg.Audit.SweepSchedule); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	// Metrics
	var metrics *observability.Metrics
	var registry *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	// Role cache, optionally backed by Redis
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		logger.WithField("addr", cfg.Redis.URL).Info("role cache backed by redis")
	}
	roleCache, err := authz.NewRoleCache(cfg.Auth.RoleCacheSize, cfg.Auth.RoleCacheTTL, rdb, metrics)
	if err != nil {
		return err
	}

	// Services
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.TokenSecret), cfg.Auth.TokenTTL)

	authzSvc := authz.NewService(roleStore, roleCache, auditor, logger, metrics)
	accountSvc := accounts.NewService(accountStore, hasher, tokens, authzSvc, auditor, logger, metrics)
	recoverySvc := recovery.NewService(accountStore, hasher, auditor, logger)
	workflowSvc := workflow.NewService(workflowStore, authzSvc, auditor, logger, metrics)

	server := api.NewServer(api.Deps{
		Accounts: accountSvc,
		Recovery: recoverySvc,
		Authz:    authzSvc,
		Workflow: workflowSvc,
		Auditor:  searcher,
		Tokens:   tokens,
		Logger:   logger,
		Metrics:  metrics,
	})

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if registry != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("api server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("health server shutdown failed")
		}
		return nil
	})

	return g.Wait()
}
