package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/exploitz3r0/xq/config"
	appmodel "github.com/exploitz3r0/xq/internal/app/model"
	apprepository "github.com/exploitz3r0/xq/internal/app/repository"
	appserver "github.com/exploitz3r0/xq/internal/app/server"
	appservice "github.com/exploitz3r0/xq/internal/app/service"
	"github.com/exploitz3r0/xq/internal/infra/logger"
	infraPrometheus "github.com/exploitz3r0/xq/internal/infra/prometheus"
	infraSQLite "github.com/exploitz3r0/xq/internal/infra/sqlite"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("listen_addr", cfg.Server.Addr()),
		zap.String("sqlite_path", cfg.SQLite.Path),
		zap.Int("code_length", cfg.Links.CodeLength),
		zap.Int("recent_limit", cfg.Links.RecentLimit),
	)

	gormDB, err := infraSQLite.NewGorm(cfg.SQLite)
	if err != nil {
		log.Fatal("Failed to open SQLite database", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraSQLite.AutoMigrate(ctx, gormDB, &appmodel.Link{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	log.Info("Connected to SQLite successfully")

	linkRepo := apprepository.NewLinkRepository(gormDB)

	codeFilter := appservice.NewCodeFilter()
	codes, err := linkRepo.AllCodes(ctx)
	if err != nil {
		log.Fatal("Failed to seed code filter", zap.Error(err))
	}
	codeFilter.Seed(codes)
	log.Info("Seeded code filter", zap.Int("codes", len(codes)))

	linkService := appservice.NewLinkService(
		linkRepo,
		appservice.NewCodeGenerator(cfg.Links.CodeLength),
		codeFilter,
	)

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	server := appserver.New(appserver.Dependencies{
		Logger:      log,
		Links:       linkService,
		RecentLimit: cfg.Links.RecentLimit,
	})

	if err := server.Listen(cfg.Server.Addr()); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
