package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/versedb/versed/internal/ai"
	"github.com/versedb/versed/internal/config"
	"github.com/versedb/versed/internal/db"
	"github.com/versedb/versed/internal/embedcache"
	"github.com/versedb/versed/internal/handler"
	"github.com/versedb/versed/internal/job"
	"github.com/versedb/versed/internal/middleware"
	"github.com/versedb/versed/internal/prompt"
	"github.com/versedb/versed/internal/repo"
	"github.com/versedb/versed/internal/retriever"
	"github.com/versedb/versed/internal/schedule"
	"github.com/versedb/versed/internal/service"
	"github.com/versedb/versed/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "versed",
		Short: "lyrics catalog and grounded chat server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the versed server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			_ = godotenv.Load()
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

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := db.EnsureSchema(database); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "run one offline vectorization pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			_ = godotenv.Load()
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
			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := db.EnsureSchema(database); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			indexService := buildIndexService(cfg, database)
			report, err := indexService.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			logutil.GetLogger(context.Background()).Info("reindex done",
				zap.Int("songs", report.Songs),
				zap.Int("indexed", report.Indexed),
				zap.Int("failed", report.Failed))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reindexCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildInferenceClient(cfg *config.Config) *ai.Client {
	return ai.NewClient(ai.ClientOptions{
		Credential:      credentialFromEnv(cfg),
		Builder:         providerBuilder(cfg),
		EmbedModel:      cfg.AI.EmbedModel,
		ChatModels:      cfg.AI.ChatModels,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
		CallTimeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
}

// credentialFromEnv checks the environment first on every call so a rotated
// key takes effect without a restart; the config value is the fallback.
func credentialFromEnv(cfg *config.Config) ai.CredentialFunc {
	configured := providerArgs(cfg)["api_key"]
	fallback, _ := configured.(string)
	return func() string {
		if key := os.Getenv("VERSED_API_KEY"); key != "" {
			return key
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
		return fallback
	}
}

func providerBuilder(cfg *config.Config) ai.ProviderBuilder {
	return func(credential string) (ai.IProvider, error) {
		args := providerArgs(cfg)
		args["api_key"] = credential
		return ai.NewProvider(cfg.AI.Provider, args)
	}
}

func providerArgs(cfg *config.Config) map[string]interface{} {
	args := map[string]interface{}{}
	if cfg.AI.Data != nil {
		if data, err := json.Marshal(cfg.AI.Data); err == nil {
			_ = json.Unmarshal(data, &args)
		}
	}
	return args
}

func buildIndexService(cfg *config.Config, database *sql.DB) *service.IndexService {
	songRepo := repo.NewSongRepo(database)
	store := vectorstore.NewPGStore(database)
	client := buildInferenceClient(cfg)
	return service.NewIndexService(songRepo, client, store, cfg.Index.BatchSize)
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Strings("chat_models", cfg.AI.ChatModels),
	)

	songRepo := repo.NewSongRepo(database)
	store := vectorstore.NewPGStore(database)
	client := buildInferenceClient(cfg)

	queryCache := embedcache.New(
		embedcache.WithTTL(time.Duration(cfg.Cache.TTLSeconds)*time.Second),
		embedcache.WithCapacity(cfg.Cache.Capacity, cfg.Cache.EvictCount),
	)
	searchRetriever := retriever.New(client, queryCache, store)
	assembler := prompt.NewAssembler()

	chatService := service.NewChatService(searchRetriever, assembler, client, cfg.Retrieval.TopK, nil)
	catalogService := service.NewCatalogService(songRepo)
	indexService := service.NewIndexService(songRepo, client, store, cfg.Index.BatchSize)

	deps := handler.RouterDeps{
		Chat:           handler.NewChatHandler(chatService),
		Songs:          handler.NewSongHandler(catalogService),
		Index:          handler.NewIndexHandler(indexService),
		ChatRateWindow: time.Duration(cfg.Retrieval.ChatRateLimit) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewReindexJob(indexService), cfg.Index.ReindexCron); err != nil {
		return fmt.Errorf("schedule reindex: %w", err)
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
