package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database    DatabaseConfig   `json:"database"`
	Port        int              `json:"port"`
	LogConfig   logger.LogConfig `json:"log_config"`
	CORSOrigins []string         `json:"cors_origins"`
	AI          AIConfig         `json:"ai"`
	Retrieval   RetrievalConfig  `json:"retrieval"`
	Cache       CacheConfig      `json:"cache"`
	Index       IndexConfig      `json:"index"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider        string      `json:"provider"`
	Data            interface{} `json:"data"`
	EmbedModel      string      `json:"embed_model"`
	ChatModels      []string    `json:"chat_models"`
	MaxOutputTokens int         `json:"max_output_tokens"`
	TimeoutSeconds  int         `json:"timeout_seconds"`
}

type RetrievalConfig struct {
	TopK          int `json:"top_k"`
	ChatRateLimit int `json:"chat_rate_limit_seconds"`
}

type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds"`
	Capacity   int `json:"capacity"`
	EvictCount int `json:"evict_count"`
}

type IndexConfig struct {
	ReindexCron string `json:"reindex_cron"`
	BatchSize   int    `json:"batch_size"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "text-embedding-3-large"
	}
	if len(cfg.AI.ChatModels) == 0 {
		cfg.AI.ChatModels = []string{"gpt-4-turbo", "gpt-4o", "gpt-3.5-turbo"}
	}
	if cfg.AI.MaxOutputTokens == 0 {
		cfg.AI.MaxOutputTokens = 1000
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 15
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 100
	}
	if cfg.Cache.EvictCount == 0 {
		cfg.Cache.EvictCount = 20
	}
	if cfg.Index.ReindexCron == "" {
		cfg.Index.ReindexCron = "0 3 * * *"
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 100
	}
	return &cfg, nil
}
