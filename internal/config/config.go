package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port             int              `json:"port"`
	Database         DatabaseConfig   `json:"database"`
	Retention        RetentionConfig  `json:"retention"`
	VersionCacheSize int              `json:"version_cache_size"`
	CORSAllowlist    []string         `json:"cors_allowlist"`
	LogConfig        logger.LogConfig `json:"log_config"`
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

// RetentionConfig holds the process-wide defaults for version pruning. The
// prune operation itself takes the policy as an explicit argument; these are
// only the values used when the caller does not override them.
type RetentionConfig struct {
	VersionsToKeep int    `json:"versions_to_keep"`
	BatchSize      int    `json:"batch_size"`
	MaxBatches     int    `json:"max_batches"`
	CronSpec       string `json:"cron_spec"`
}

const (
	DefaultVersionsToKeep = 20
	DefaultBatchSize      = 50
	DefaultMaxBatches     = 10
)

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
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Retention.VersionsToKeep <= 0 {
		cfg.Retention.VersionsToKeep = DefaultVersionsToKeep
	}
	if cfg.Retention.BatchSize <= 0 {
		cfg.Retention.BatchSize = DefaultBatchSize
	}
	if cfg.Retention.MaxBatches <= 0 {
		cfg.Retention.MaxBatches = DefaultMaxBatches
	}
	if cfg.Retention.CronSpec == "" {
		cfg.Retention.CronSpec = "*/10 * * * *"
	}
	if cfg.VersionCacheSize < 0 {
		return nil, fmt.Errorf("version_cache_size must not be negative")
	}
	if cfg.VersionCacheSize == 0 {
		cfg.VersionCacheSize = 512
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	return &cfg, nil
}
