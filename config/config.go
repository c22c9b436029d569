package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port              int `yaml:"port"`
	ReadTimeoutMS     int `yaml:"read_timeout_ms"`
	WriteTimeoutMS    int `yaml:"write_timeout_ms"`
	ShutdownTimeoutMS int `yaml:"shutdown_timeout_ms"`
}

// SourceConfig describes the Copin positions API.
type SourceConfig struct {
	BaseURL        string  `yaml:"base_url"`
	PageLimit      int     `yaml:"page_limit"`
	PageDelayMS    int     `yaml:"page_delay_ms"`
	RetryAttempts  int     `yaml:"retry_attempts"`
	RetryBaseMS    int     `yaml:"retry_base_ms"`
	RetryFactor    float64 `yaml:"retry_factor"`
	RequestTimeout int     `yaml:"request_timeout_ms"`
}

// FetchConfig tunes the batch orchestrator.
type FetchConfig struct {
	BatchSize     int `yaml:"batch_size"`
	BatchDelayMS  int `yaml:"batch_delay_ms"`
	CallTimeoutMS int `yaml:"call_timeout_ms"`
}

// AggregationConfig defines selection parameters for the token rollup.
type AggregationConfig struct {
	MinSampleSize  int      `yaml:"min_sample_size"`
	MaxResults     int      `yaml:"max_results"`
	PriorityTokens []string `yaml:"priority_tokens"`
}

// CacheConfig defines TTL and bypass behavior for the fast cache.
type CacheConfig struct {
	Key        string `yaml:"key"`
	TTLMins    int    `yaml:"ttl_minutes"`
	Bypass     bool   `yaml:"bypass"`      // development: always recompute
	AllowClear bool   `yaml:"allow_clear"` // whether DELETE /cache does anything
}

// SyncConfig controls the scheduled refresh cadence.
type SyncConfig struct {
	RefreshMins int `yaml:"refresh_minutes"`
}

// DataConfig contains persistence settings. DatabaseURL selects the Postgres
// archive backend; when empty the SQLite file at DBPath is used instead.
type DataConfig struct {
	DatabaseURL string `yaml:"database_url"`
	DBPath      string `yaml:"db_path"`
}

// TrackingConfig lists the wallets and protocols to poll. Injected here rather
// than hardcoded so tests can substitute small fixture lists.
type TrackingConfig struct {
	Wallets   []string `yaml:"wallets"`
	Protocols []string `yaml:"protocols"`
}

// Config aggregates all app configuration knobs.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Source      SourceConfig      `yaml:"source"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Cache       CacheConfig       `yaml:"cache"`
	Sync        SyncConfig        `yaml:"sync"`
	Data        DataConfig        `yaml:"data"`
	Tracking    TrackingConfig    `yaml:"tracking"`
}

// Load reads configuration from disk, falling back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	configPath := path
	if configPath == "" {
		configPath = filepath.Join("config", "default.yaml")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: unable to read %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unable to parse %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns baseline configuration values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:              8081,
			ReadTimeoutMS:     10000,
			WriteTimeoutMS:    30000,
			ShutdownTimeoutMS: 5000,
		},
		Source: SourceConfig{
			BaseURL:        "https://api.copin.io",
			PageLimit:      100,
			PageDelayMS:    100,
			RetryAttempts:  3,
			RetryBaseMS:    200,
			RetryFactor:    2.0,
			RequestTimeout: 10000,
		},
		Fetch: FetchConfig{
			BatchSize:     5,
			BatchDelayMS:  500,
			CallTimeoutMS: 8000,
		},
		Aggregation: AggregationConfig{
			MinSampleSize:  5,
			MaxResults:     6,
			PriorityTokens: []string{"BTC", "ETH", "SOL"},
		},
		Cache: CacheConfig{
			Key:        "positions:latest",
			TTLMins:    120,
			Bypass:     false,
			AllowClear: true,
		},
		Sync: SyncConfig{
			RefreshMins: 60,
		},
		Data: DataConfig{
			DBPath: "data/smartmoney.db",
		},
		Tracking: TrackingConfig{
			Wallets:   defaultWallets,
			Protocols: defaultProtocols,
		},
	}
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.ReadTimeoutMS == 0 {
		c.Server.ReadTimeoutMS = def.Server.ReadTimeoutMS
	}
	if c.Server.WriteTimeoutMS == 0 {
		c.Server.WriteTimeoutMS = def.Server.WriteTimeoutMS
	}
	if c.Server.ShutdownTimeoutMS == 0 {
		c.Server.ShutdownTimeoutMS = def.Server.ShutdownTimeoutMS
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = def.Source.BaseURL
	}
	if c.Source.PageLimit <= 0 {
		c.Source.PageLimit = def.Source.PageLimit
	}
	if c.Source.PageDelayMS <= 0 {
		c.Source.PageDelayMS = def.Source.PageDelayMS
	}
	if c.Source.RetryAttempts <= 0 {
		c.Source.RetryAttempts = def.Source.RetryAttempts
	}
	if c.Source.RetryBaseMS <= 0 {
		c.Source.RetryBaseMS = def.Source.RetryBaseMS
	}
	if c.Source.RetryFactor <= 0 {
		c.Source.RetryFactor = def.Source.RetryFactor
	}
	if c.Source.RequestTimeout <= 0 {
		c.Source.RequestTimeout = def.Source.RequestTimeout
	}
	if c.Fetch.BatchSize <= 0 {
		c.Fetch.BatchSize = def.Fetch.BatchSize
	}
	if c.Fetch.BatchDelayMS <= 0 {
		c.Fetch.BatchDelayMS = def.Fetch.BatchDelayMS
	}
	if c.Fetch.CallTimeoutMS <= 0 {
		c.Fetch.CallTimeoutMS = def.Fetch.CallTimeoutMS
	}
	if c.Aggregation.MinSampleSize <= 0 {
		c.Aggregation.MinSampleSize = def.Aggregation.MinSampleSize
	}
	if c.Aggregation.MaxResults <= 0 {
		c.Aggregation.MaxResults = def.Aggregation.MaxResults
	}
	if len(c.Aggregation.PriorityTokens) == 0 {
		c.Aggregation.PriorityTokens = def.Aggregation.PriorityTokens
	}
	if c.Cache.Key == "" {
		c.Cache.Key = def.Cache.Key
	}
	if c.Cache.TTLMins <= 0 {
		c.Cache.TTLMins = def.Cache.TTLMins
	}
	if c.Sync.RefreshMins <= 0 {
		c.Sync.RefreshMins = def.Sync.RefreshMins
	}
	if c.Data.DBPath == "" {
		c.Data.DBPath = def.Data.DBPath
	}
	if len(c.Tracking.Wallets) == 0 {
		c.Tracking.Wallets = def.Tracking.Wallets
	}
	if len(c.Tracking.Protocols) == 0 {
		c.Tracking.Protocols = def.Tracking.Protocols
	}
}
