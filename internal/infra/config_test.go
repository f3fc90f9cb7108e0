package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Ticker != "UBTC/USDC" {
		t.Errorf("default ticker = %q", cfg.Bot.Ticker)
	}
	if cfg.Bot.AmountPerLevel != 5 || cfg.Bot.TTLSeconds != 20 {
		t.Errorf("defaults not applied: %+v", cfg.Bot)
	}
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("bot:\n  ticker: HYPE/USDC\n  amount_per_level: 12\n  min_spread_pct: 0.1\n  ttl_seconds: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HL_TICKER", "@142")
	t.Setenv("HL_TTL", "45")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Ticker != "@142" {
		t.Errorf("env should override file ticker, got %q", cfg.Bot.Ticker)
	}
	if cfg.Bot.TTLSeconds != 45 {
		t.Errorf("env should override file ttl, got %v", cfg.Bot.TTLSeconds)
	}
	if cfg.Bot.AmountPerLevel != 12 {
		t.Errorf("file value lost, got %v", cfg.Bot.AmountPerLevel)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"Defaults Valid", func(c *Config) {}, true},
		{"Empty Ticker", func(c *Config) { c.Bot.Ticker = " " }, false},
		{"Zero Amount", func(c *Config) { c.Bot.AmountPerLevel = 0 }, false},
		{"Negative Spread", func(c *Config) { c.Bot.MinSpreadPct = -0.1 }, false},
		{"Zero Spread OK", func(c *Config) { c.Bot.MinSpreadPct = 0 }, true},
		{"Zero TTL", func(c *Config) { c.Bot.TTLSeconds = 0 }, false},
		{"Agent Without Key", func(c *Config) { c.Bot.UseAgent = true }, false},
		{"Agent With Key", func(c *Config) {
			c.Bot.UseAgent = true
			c.Bot.AgentPrivateKey = "0xabc"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HL_AGENT_PRIVATE_KEY", "")
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
