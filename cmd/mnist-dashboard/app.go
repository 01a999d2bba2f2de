package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mnist-dashboard/internal/adapters/primary/http/handlers"
	"mnist-dashboard/internal/adapters/primary/http/middleware"
	"mnist-dashboard/internal/adapters/secondary/filecache"
	"mnist-dashboard/internal/adapters/secondary/httpsource"
	"mnist-dashboard/internal/adapters/secondary/kube"
	"mnist-dashboard/internal/adapters/secondary/loom"
	"mnist-dashboard/internal/adapters/secondary/memory"
	"mnist-dashboard/internal/adapters/secondary/objectstore"
	"mnist-dashboard/internal/adapters/secondary/postgres"
	"mnist-dashboard/internal/config"
	output "mnist-dashboard/internal/core/ports/output"
	"mnist-dashboard/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	runs    output.TrainingRunRepository
	trainer *services.TrainerService
	sampler *services.SamplerService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)

	a := &app{cfg: cfg}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Dataset source, cached on local disk
	var upstream output.DatasetSource
	switch cfg.Dataset.Source {
	case "minio":
		upstream, err = objectstore.NewMinioSource(&cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio source: %w", err)
		}
	default:
		upstream = httpsource.NewClient(cfg.Dataset.BaseURL, cfg.Dataset.Timeout)
	}
	cache := filecache.New(afero.NewOsFs(), cfg.Dataset.CacheDir, upstream)
	log.WithFields(log.Fields{
		"source":    upstream.Name(),
		"cache_dir": cfg.Dataset.CacheDir,
	}).Info("dataset source configured")

	datasetSvc := services.NewDatasetService(cache, services.DatasetOptions{
		VerifyChecksums: cfg.Dataset.VerifyChecksums,
		TrainLimit:      cfg.Dataset.TrainLimit,
		TestLimit:       cfg.Dataset.TestLimit,
	})

	// Training run registry (Postgres when enabled, otherwise in-memory)
	if cfg.Database.Enabled {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		a.runs = postgres.NewTrainingRunRepository(pool)
		log.Info("database connection established")
	} else {
		a.runs = memory.NewTrainingRunRepository()
		log.Info("database disabled, keeping training runs in memory")
	}

	// Kubernetes status publisher (Optional - based on config)
	var publisher output.StatusPublisher
	if cfg.Kubernetes.Enabled {
		p, err := kube.NewStatusPublisher(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("status publisher init failed (continuing without K8s integration): %v", err)
		} else {
			publisher = p
			log.Info("status publisher initialized")
		}
	} else {
		log.Info("Kubernetes integration disabled")
	}

	// Core Services (Application Layer)
	a.trainer = services.NewTrainerService(
		datasetSvc,
		loom.NewNetworkFactory(cfg.Trainer.UseGPU),
		a.runs,
		publisher,
		services.TrainerOptions{
			Hyperparameters: cfg.Trainer.Hyperparameters(),
			MinAccuracy:     cfg.Trainer.MinAccuracy,
			Policy:          services.AccuracyPolicy(cfg.Trainer.AccuracyPolicy),
		},
	)
	a.sampler = services.NewSamplerService(0)

	return a, nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return pool, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	h := handlers.New(a.trainer, a.sampler, a.runs)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging("/healthz", "/readyz"), gin.Recovery())

	h.RegisterPages(router)
	h.RegisterRoutes(router.Group("/api/v1"))
	if a.pool != nil {
		h.RegisterHealth(router, a.pool)
	} else {
		h.RegisterHealth(router, nil)
	}

	if a.cfg.Trainer.Warmup {
		log.Info("warm-up enabled, training in background")
		a.trainer.Warmup()
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	model, err := a.trainer.GetOrTrain(ctx)
	if err != nil {
		log.WithError(err).Error("training failed")
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), model.Evaluation.Banner())
	return nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
