package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Export.Format != "turtle" {
		t.Errorf("expected default format turtle, got %s", cfg.Export.Format)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.NATS.URL != "" {
		t.Error("expected publishing disabled by default")
	}
	if cfg.NATS.Subject != "graph.ingest.entity" {
		t.Errorf("expected default subject graph.ingest.entity, got %s", cfg.NATS.Subject)
	}
	if cfg.NATS.Bucket != "SEMCODEC_RECORDS" {
		t.Errorf("expected default bucket SEMCODEC_RECORDS, got %s", cfg.NATS.Bucket)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "format alias",
			modify:  func(c *Config) { c.Export.Format = "ttl" },
			wantErr: false,
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Export.Format = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "empty prefix namespace",
			modify:  func(c *Config) { c.Export.Prefixes = map[string]string{"ex": ""} },
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "nats url without subject",
			modify:  func(c *Config) { c.NATS.URL = "nats://localhost:4222"; c.NATS.Subject = "" },
			wantErr: true,
		},
		{
			name:    "bucket with dots",
			modify:  func(c *Config) { c.NATS.Bucket = "records.v1" },
			wantErr: true,
		},
		{
			name:    "empty bucket",
			modify:  func(c *Config) { c.NATS.Bucket = "" },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.NATS.Timeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	level, err := LogConfig{Level: "debug"}.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel() error = %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", level)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
export:
  format: jsonld
  base_iri: "https://data.example.org/"
  prefixes:
    ex: "https://example.org/"
  output: catalog.jsonld
log:
  level: debug
metrics:
  textfile: metrics.prom
nats:
  url: "nats://test:4222"
  timeout: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Export.Format != "jsonld" {
		t.Errorf("expected format jsonld, got %s", cfg.Export.Format)
	}
	if cfg.Export.BaseIRI != "https://data.example.org/" {
		t.Errorf("expected base IRI https://data.example.org/, got %s", cfg.Export.BaseIRI)
	}
	if cfg.Export.Prefixes["ex"] != "https://example.org/" {
		t.Errorf("expected ex prefix, got %v", cfg.Export.Prefixes)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Metrics.Textfile != "metrics.prom" {
		t.Errorf("expected metrics textfile metrics.prom, got %s", cfg.Metrics.Textfile)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
	if cfg.NATS.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.NATS.Timeout)
	}
	// Defaults survive for keys the file does not set
	if cfg.NATS.Subject != "graph.ingest.entity" {
		t.Errorf("expected default subject, got %s", cfg.NATS.Subject)
	}
}

func TestLoadFromJSONFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.jsonc")

	content := `{
  // JSON with comments
  "export": {"format": "ntriples",},
  "log": {"level": "warn"},
}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Export.Format != "ntriples" {
		t.Errorf("expected format ntriples, got %s", cfg.Export.Format)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Log.Level)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Export.Prefixes = map[string]string{"a": "https://a.example/"}
	override := &Config{
		Export: ExportConfig{
			Format:   "jsonld",
			Prefixes: map[string]string{"b": "https://b.example/"},
		},
		NATS: NATSConfig{
			URL: "nats://override:4222",
		},
	}

	base.Merge(override)

	if base.Export.Format != "jsonld" {
		t.Errorf("expected format jsonld, got %s", base.Export.Format)
	}
	if len(base.Export.Prefixes) != 2 {
		t.Errorf("expected prefixes to be merged, got %v", base.Export.Prefixes)
	}
	// Subject should remain from base since override didn't set it
	if base.NATS.Subject != "graph.ingest.entity" {
		t.Errorf("expected subject to remain default, got %s", base.NATS.Subject)
	}
	if base.NATS.URL != "nats://override:4222" {
		t.Errorf("expected NATS URL nats://override:4222, got %s", base.NATS.URL)
	}

	base.Merge(nil)
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Export.Format = "ntriples"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Export.Format != "ntriples" {
		t.Errorf("expected format ntriples, got %s", loaded.Export.Format)
	}
}
