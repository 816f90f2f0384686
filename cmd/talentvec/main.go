package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/config"
	"github.com/talentvec/talentvec/internal/db"
	"github.com/talentvec/talentvec/internal/filestore"
	"github.com/talentvec/talentvec/internal/handler"
	"github.com/talentvec/talentvec/internal/job"
	"github.com/talentvec/talentvec/internal/middleware"
	"github.com/talentvec/talentvec/internal/repo"
	"github.com/talentvec/talentvec/internal/schedule"
	"github.com/talentvec/talentvec/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "talentvec",
		Short: "resume semantic search backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the talentvec server",
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
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_model", cfg.AI.EmbedModel),
	)

	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	timeout := time.Duration(cfg.AI.Timeout) * time.Second
	embedder, err := ai.NewEmbedder(provider, cfg.AI.EmbedModel, timeout)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	chunkRepo := repo.NewChunkRepo(conn)
	chunkService := service.NewChunkService(chunkRepo, embedder, cfg.AI.BatchSize)
	searchService := service.NewSearchService(chunkRepo, embedder)

	var answerService *service.AnswerService
	if cfg.AI.GenModel != "" {
		generator, err := ai.NewGenerator(provider, cfg.AI.GenModel, timeout)
		if err != nil {
			return fmt.Errorf("init generator: %w", err)
		}
		answerService = service.NewAnswerService(searchService, generator)
	}

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Chunks:    handler.NewChunkHandler(chunkService),
		Search:    handler.NewSearchHandler(searchService),
		Answers:   handler.NewAnswerHandler(answerService),
		Files:     handler.NewFileHandler(store, chunkService),
		JWTSecret: []byte(cfg.JWTSecret),
		AskWindow: time.Duration(cfg.AskRateSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigin),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.ReembedEnable {
		reembed := service.NewReembedService(chunkRepo, embedder, cfg.Jobs.ReembedBatch)
		if err := scheduler.AddJob(job.NewReembedJob(reembed), cfg.Jobs.ReembedCron); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()
	logutil.GetLogger(context.Background()).Info("http server listening", zap.Int("port", cfg.Port))

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
