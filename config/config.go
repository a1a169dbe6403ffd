// Package config provides configuration loading and management for semcodec.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semcodec/export"
)

// Config represents the complete semcodec configuration
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	NATS    NATSConfig    `yaml:"nats"`
}

// ExportConfig configures RDF export
type ExportConfig struct {
	// Format is the serialization format (turtle, ntriples, jsonld)
	Format string `yaml:"format"`
	// BaseIRI is the JSON-LD base IRI
	BaseIRI string `yaml:"base_iri"`
	// Prefixes adds namespace prefixes for Turtle and JSON-LD output
	Prefixes map[string]string `yaml:"prefixes"`
	// Output is the default output path (empty = stdout)
	Output string `yaml:"output"`
	// Source labels triples published to the graph
	Source string `yaml:"source"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// MetricsConfig configures metrics output
type MetricsConfig struct {
	// Textfile is a Prometheus textfile written after each run (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// NATSConfig configures the NATS connection used to publish graph entities
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL string `yaml:"url"`
	// Subject is the ingestion subject
	Subject string `yaml:"subject"`
	// Timeout bounds connecting and publishing
	Timeout time.Duration `yaml:"timeout"`
	// Bucket is the KV bucket holding stored records
	Bucket string `yaml:"bucket"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			Format: string(export.FormatTurtle),
			Source: "semcodec",
		},
		Log: LogConfig{
			Level: "info",
		},
		NATS: NATSConfig{
			URL:     "", // Publishing disabled
			Subject: "graph.ingest.entity",
			Timeout: 10 * time.Second,
			Bucket:  "SEMCODEC_RECORDS",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	for prefix, ns := range c.Export.Prefixes {
		if prefix == "" || ns == "" {
			return fmt.Errorf("export.prefixes: empty prefix or namespace")
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	if c.NATS.Timeout < 0 {
		return fmt.Errorf("nats.timeout must not be negative")
	}
	if !validBucket(c.NATS.Bucket) {
		return fmt.Errorf("nats.bucket %q: use letters, digits, '-' or '_'", c.NATS.Bucket)
	}
	return nil
}

// validBucket matches the names NATS accepts for KV buckets.
func validBucket(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// LoadFromFile loads configuration from a YAML file. Files ending in .json,
// .jsonc or .hujson are read as JSON with comments.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		if data, err = hujson.Standardize(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile atomically saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Export
	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
	if other.Export.BaseIRI != "" {
		c.Export.BaseIRI = other.Export.BaseIRI
	}
	if len(other.Export.Prefixes) > 0 {
		if c.Export.Prefixes == nil {
			c.Export.Prefixes = make(map[string]string, len(other.Export.Prefixes))
		}
		for k, v := range other.Export.Prefixes {
			c.Export.Prefixes[k] = v
		}
	}
	if other.Export.Output != "" {
		c.Export.Output = other.Export.Output
	}
	if other.Export.Source != "" {
		c.Export.Source = other.Export.Source
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.Bucket != "" {
		c.NATS.Bucket = other.NATS.Bucket
	}
	if other.NATS.Timeout != 0 {
		c.NATS.Timeout = other.NATS.Timeout
	}
}
