package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := Default()
	if cfg.Server.Port != def.Server.Port {
		t.Errorf("port = %d, want default %d", cfg.Server.Port, def.Server.Port)
	}
	if cfg.Source.BaseURL != def.Source.BaseURL {
		t.Errorf("base url = %q, want default %q", cfg.Source.BaseURL, def.Source.BaseURL)
	}
	if len(cfg.Tracking.Wallets) == 0 || len(cfg.Tracking.Protocols) == 0 {
		t.Error("default tracking lists must not be empty")
	}
}

func TestLoadMergesPartialFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	yaml := `
server:
  port: 9000
aggregation:
  min_sample_size: 10
tracking:
  wallets:
    - "0x0171d947ee6ce0f487490bD4f8D89878FF2d88BA"
  protocols:
    - GMX
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000 from file", cfg.Server.Port)
	}
	if cfg.Aggregation.MinSampleSize != 10 {
		t.Errorf("min sample = %d, want 10 from file", cfg.Aggregation.MinSampleSize)
	}
	// Untouched sections keep their defaults.
	def := Default()
	if cfg.Aggregation.MaxResults != def.Aggregation.MaxResults {
		t.Errorf("max results = %d, want default %d", cfg.Aggregation.MaxResults, def.Aggregation.MaxResults)
	}
	if cfg.Cache.Key != def.Cache.Key {
		t.Errorf("cache key = %q, want default %q", cfg.Cache.Key, def.Cache.Key)
	}
	if len(cfg.Tracking.Wallets) != 1 || cfg.Tracking.Protocols[0] != "GMX" {
		t.Errorf("tracking not taken from file: %+v", cfg.Tracking)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("malformed yaml must fail loudly, not fall back to defaults")
	}
}

func TestDefaultTrackingListsAreWellFormed(t *testing.T) {
	cfg := Default()

	seen := make(map[string]bool)
	for _, w := range cfg.Tracking.Wallets {
		if seen[w] {
			t.Errorf("duplicate wallet %s", w)
		}
		seen[w] = true
	}
	for _, p := range cfg.Tracking.Protocols {
		if p == "" {
			t.Error("empty protocol entry")
		}
	}
}
