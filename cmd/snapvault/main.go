package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/mashenjun/snapvault/internal/config"
	"github.com/mashenjun/snapvault/internal/db"
	"github.com/mashenjun/snapvault/internal/handler"
	"github.com/mashenjun/snapvault/internal/job"
	"github.com/mashenjun/snapvault/internal/middleware"
	"github.com/mashenjun/snapvault/internal/observability"
	"github.com/mashenjun/snapvault/internal/repo"
	"github.com/mashenjun/snapvault/internal/schedule"
	"github.com/mashenjun/snapvault/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "snapvault",
		Short: "snapvault versioned snapshot server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run snapvault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Int("versions_to_keep", cfg.Retention.VersionsToKeep),
		zap.Int("prune_batch_size", cfg.Retention.BatchSize),
		zap.Int("prune_max_batches", cfg.Retention.MaxBatches),
	)

	metrics := observability.NewMetrics("snapvault")
	dashRepo := repo.NewDashboardRepo(conn)
	versionRepo := repo.NewVersionRepo(conn)

	dashboardService, err := service.NewDashboardService(dashRepo, versionRepo, cfg.VersionCacheSize, metrics)
	if err != nil {
		return fmt.Errorf("init dashboard service: %w", err)
	}
	pruner := service.NewRetentionPruner(versionRepo, service.RetentionPolicy{
		VersionsToKeep: cfg.Retention.VersionsToKeep,
		BatchSize:      cfg.Retention.BatchSize,
		MaxBatches:     cfg.Retention.MaxBatches,
	}, metrics)

	deps := handler.RouterDeps{
		Dashboards: handler.NewDashboardHandler(dashboardService),
		Versions:   handler.NewVersionHandler(dashboardService),
		Admin:      handler.NewAdminHandler(pruner),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.New()
	if err := scheduler.AddJob(job.NewVersionRetentionJob(pruner), cfg.Retention.CronSpec); err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
