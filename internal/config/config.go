package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port       int              `json:"port"`
	JWTSecret  string           `json:"jwt_secret"`
	LogConfig  logger.LogConfig `json:"log_config"`
	Database   DatabaseConfig   `json:"database"`
	AI         AIConfig         `json:"ai"`
	FileStore  FileStoreConfig  `json:"file_store"`
	Jobs       JobsConfig       `json:"jobs"`
	CORSOrigin []string         `json:"cors_origin"`
	// AskRateSeconds throttles each client on the answer endpoint to one
	// request per this many seconds. Zero disables the throttle.
	AskRateSeconds int `json:"ask_rate_seconds"`
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
	Provider   string                 `json:"provider"`
	EmbedModel string                 `json:"embed_model"`
	GenModel   string                 `json:"gen_model"`
	Timeout    int                    `json:"timeout"`
	BatchSize  int                    `json:"batch_size"`
	Data       map[string]interface{} `json:"data"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobsConfig struct {
	ReembedEnable bool   `json:"reembed_enable"`
	ReembedCron   string `json:"reembed_cron"`
	ReembedBatch  int    `json:"reembed_batch"`
}

func Load(path string) (*Config, error) {
	// secrets may live in a .env next to the binary; a missing file is fine
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database.dsn or database.host/db_name is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.AI.BatchSize == 0 {
		cfg.AI.BatchSize = 16
	}
	if key := os.Getenv("TALENTVEC_AI_API_KEY"); key != "" {
		if cfg.AI.Data == nil {
			cfg.AI.Data = map[string]interface{}{}
		}
		cfg.AI.Data["api_key"] = key
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Jobs.ReembedCron == "" {
		cfg.Jobs.ReembedCron = "*/10 * * * *"
	}
	if cfg.Jobs.ReembedBatch == 0 {
		cfg.Jobs.ReembedBatch = 50
	}
	return &cfg, nil
}
