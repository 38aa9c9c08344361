package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/viz-backend/config"
	httpapi "github.com/GoSim-25-26J-441/viz-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/viz-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/viz-backend/internal/ids"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/cache"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/plugins"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/repository"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/service"
)

const serviceName = "viz-backend"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN(),
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	db := bootstrap.SQLDB(pool)
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	var detailCache service.DetailCache
	if rdb != nil {
		defer rdb.Close()
		detailCache = cache.NewDetailCache(rdb, cfg.Redis.CacheTTL)
	} else {
		logger.Info("REDIS_ADDR not set, detail cache disabled")
	}

	codec, err := ids.New(cfg.App.IDSecret)
	if err != nil {
		return err
	}
	schemas := domain.NewSchemas(codec)

	registry, err := plugins.Load(cfg.App.PluginsFile)
	if err != nil {
		logger.Warn("plugin registry not loaded, plugin fields will be empty", "error", err)
	}
	reloader := plugins.NewReloader(registry, logger)
	if err := reloader.Start(cfg.App.PluginsReloadCron); err != nil {
		return err
	}
	defer reloader.Stop()

	svc := service.NewVisualizationService(repository.NewRepo(db), detailCache, registry, schemas, logger)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		DB:             pool,
		Cache:          httpapi.RedisPinger(rdb),
		Visualizations: svc,
		Schemas:        schemas,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.App.Environment, "version", cfg.App.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
