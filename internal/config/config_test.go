package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesRetentionDefaults(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "database": {"host": "localhost", "user": "snapvault", "db_name": "snapvault"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retention.VersionsToKeep != DefaultVersionsToKeep {
		t.Fatalf("unexpected versions_to_keep: %d", cfg.Retention.VersionsToKeep)
	}
	if cfg.Retention.BatchSize != DefaultBatchSize || cfg.Retention.MaxBatches != DefaultMaxBatches {
		t.Fatalf("unexpected batch defaults: %d x %d", cfg.Retention.BatchSize, cfg.Retention.MaxBatches)
	}
	if cfg.Retention.CronSpec == "" {
		t.Fatal("cron spec default missing")
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("unexpected db port: %d", cfg.Database.Port)
	}
}

func TestLoadRejectsMissingDatabase(t *testing.T) {
	path := writeConfig(t, `{"port": 8080}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing database config")
	}
}

func TestLoadKeepsExplicitRetention(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "database": {"dsn": "postgres://x"}, "retention": {"versions_to_keep": 5, "batch_size": 10, "max_batches": 10}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retention.VersionsToKeep != 5 || cfg.Retention.BatchSize != 10 || cfg.Retention.MaxBatches != 10 {
		t.Fatalf("retention overridden: %+v", cfg.Retention)
	}
}
