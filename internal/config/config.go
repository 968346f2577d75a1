// Package config provides configuration management for the tracker scraper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("at least one extraction source is required")
	ErrMissingBaseURL           = errors.New("source.base_url is required when api_endpoints are set")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidMinRecords        = errors.New("extraction.min_records must be non-negative")
	ErrInvalidMaxPages          = errors.New("extraction.max_pages must be at least 1")
	ErrInvalidPoliteness        = errors.New("extraction.politeness_delay_ms must be non-negative")
	ErrMissingBaseName          = errors.New("output.base_name is required")
	ErrInvalidOutputFormat      = errors.New("output.formats entries must be 'csv' or 'xlsx'")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete scraper configuration.
type Config struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ScraperConfig contains scraper-specific settings.
type ScraperConfig struct {
	Source     SourceConfig     `yaml:"source"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Retry      RetryPolicy      `yaml:"retry"`
}

// SourceConfig describes the upstream tracker. All URLs are
// upstream-controlled and may change without notice; the strategy
// fallback order tolerates that.
type SourceConfig struct {
	BaseURL      string   `yaml:"base_url"`
	TrackerPage  string   `yaml:"tracker_page"`
	APIEndpoints []string `yaml:"api_endpoints"`
	FileURLs     []string `yaml:"file_urls"`
}

// HasSource reports whether any extraction mechanism is configured.
func (s *SourceConfig) HasSource() bool {
	return len(s.APIEndpoints) > 0 || len(s.FileURLs) > 0 || s.TrackerPage != ""
}

// RetryPolicy defines retry behavior for HTTP fetches.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// ExtractionConfig tunes the coordinator.
type ExtractionConfig struct {
	MinRecords        int `yaml:"min_records"`
	MaxPages          int `yaml:"max_pages"`
	PolitenessDelayMs int `yaml:"politeness_delay_ms"`
}

// PolitenessDelay returns the pause between network-bound attempts.
func (e *ExtractionConfig) PolitenessDelay() time.Duration {
	return time.Duration(e.PolitenessDelayMs) * time.Millisecond
}

// OutputConfig defines where the finalized dataset lands.
type OutputConfig struct {
	BasePath string   `yaml:"base_path"`
	BaseName string   `yaml:"base_name"`
	Formats  []string `yaml:"formats"`
}

// Path builds the output path for a given file extension.
func (o *OutputConfig) Path(ext string) string {
	return filepath.Join(o.BasePath, o.BaseName+"."+ext)
}

// HasFormat reports whether a tabular format is enabled.
func (o *OutputConfig) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}

	return false
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	SampleRecords int    `yaml:"sample_records"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	BufferSizeKb int `yaml:"buffer_size_kb"`
}

// DefaultConfig returns the configuration preloaded with the tracker's
// known endpoints and download locations.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Source: SourceConfig{
				BaseURL:     "https://globalenergymonitor.org",
				TrackerPage: "https://globalenergymonitor.org/projects/global-coal-plant-tracker/tracker/",
				APIEndpoints: []string{
					"/api/coal-plants",
					"/api/tracker/coal-plants",
					"/projects/global-coal-plant-tracker/api/data",
					"/wp-json/gem/v1/coal-plants",
					"/data/coal-plants.json",
					"/tracker-data/coal-plants",
				},
				FileURLs: []string{
					"https://globalenergymonitor.org/wp-content/uploads/2024/07/Global-Coal-Plant-Tracker-July-2024.xlsx",
					"https://globalenergymonitor.org/wp-content/uploads/2024/04/Global-Coal-Plant-Tracker-April-2024.xlsx",
					"https://globalenergymonitor.org/wp-content/uploads/2024/01/Global-Coal-Plant-Tracker-January-2024.xlsx",
					"https://globalenergymonitor.org/wp-content/uploads/2023/07/Global-Coal-Plant-Tracker-July-2023.xlsx",
					"https://globalenergymonitor.org/data/coal-plants.csv",
					"https://globalenergymonitor.org/tracker-data/global-coal-plant-tracker.csv",
				},
			},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			Extraction: ExtractionConfig{
				MinRecords:        10,
				MaxPages:          100,
				PolitenessDelayMs: 1000,
			},
			Output: OutputConfig{
				BasePath: "data",
				BaseName: "global_coal_plant_tracker_data",
				Formats:  []string{"csv", "xlsx"},
			},
			Logging: LoggingConfig{
				Level:         "info",
				SampleRecords: 5,
			},
		},
		Advanced: AdvancedConfig{
			BufferSizeKb: 10240,
		},
	}
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Scraper.Source.HasSource() {
		return ErrNoSources
	}

	if len(c.Scraper.Source.APIEndpoints) > 0 && c.Scraper.Source.BaseURL == "" {
		return ErrMissingBaseURL
	}

	// Validate retry policy
	if c.Scraper.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Scraper.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Scraper.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Scraper.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate extraction config
	if c.Scraper.Extraction.MinRecords < 0 {
		return ErrInvalidMinRecords
	}

	if c.Scraper.Extraction.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	if c.Scraper.Extraction.PolitenessDelayMs < 0 {
		return ErrInvalidPoliteness
	}

	// Validate output config
	if c.Scraper.Output.BaseName == "" {
		return ErrMissingBaseName
	}

	for _, format := range c.Scraper.Output.Formats {
		if format != "csv" && format != "xlsx" {
			return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, format)
		}
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Scraper.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Endpoints: %d, FileURLs: %d, MaxAttempts: %d, Output: %s}",
		len(c.Scraper.Source.APIEndpoints),
		len(c.Scraper.Source.FileURLs),
		c.Scraper.Retry.MaxAttempts,
		c.Scraper.Output.BasePath,
	)
}
