package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the process needs: bot parameters, the web
// shim surface, and logging. Loaded once at startup and immutable
// afterwards. Environment variables override file values so secrets
// never have to live in the file.
type Config struct {
	Bot struct {
		Ticker         string  `yaml:"ticker"`
		AmountPerLevel float64 `yaml:"amount_per_level"` // USD notional per order
		MinSpreadPct   float64 `yaml:"min_spread_pct"`   // e.g. 0.05 = 0.05%
		MakerOnly      bool    `yaml:"maker_only"`
		TTLSeconds     float64 `yaml:"ttl_seconds"`
		UseTestnet     bool    `yaml:"use_testnet"`
		UseAgent       bool    `yaml:"use_agent"`

		// Never set these in the file; use HL_PRIVATE_KEY and
		// HL_AGENT_PRIVATE_KEY.
		PrivateKey      string `yaml:"private_key"`
		AgentPrivateKey string `yaml:"agent_private_key"`
	} `yaml:"bot"`

	WebUI struct {
		Addr         string   `yaml:"addr"`
		AuthToken    string   `yaml:"auth_token"`
		AllowOrigins []string `yaml:"allow_origins"`
		AllowHeaders []string `yaml:"allow_headers"`
		AllowMethods []string `yaml:"allow_methods"`
	} `yaml:"webui"`

	Journal struct {
		Path string `yaml:"path"` // sqlite file; empty disables the journal
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig mirrors the historical env defaults of the bot.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Bot.Ticker = "UBTC/USDC"
	cfg.Bot.AmountPerLevel = 5
	cfg.Bot.MinSpreadPct = 0.05
	cfg.Bot.TTLSeconds = 20
	cfg.WebUI.Addr = ":8080"
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads the YAML file at path (a missing file is fine: the
// bot historically ran on env vars alone), applies env overrides, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity. Key presence is checked at
// bot start, not here, so the web shim can boot without one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Ticker) == "" {
		return fmt.Errorf("ticker is required")
	}
	if c.Bot.AmountPerLevel <= 0 {
		return fmt.Errorf("amount_per_level must be positive")
	}
	if c.Bot.MinSpreadPct < 0 {
		return fmt.Errorf("min_spread_pct must not be negative")
	}
	if c.Bot.TTLSeconds <= 0 {
		return fmt.Errorf("ttl_seconds must be positive")
	}
	if c.Bot.UseAgent && c.Bot.AgentPrivateKey == "" && os.Getenv("HL_AGENT_PRIVATE_KEY") == "" {
		return fmt.Errorf("use_agent requires an agent private key")
	}
	return nil
}

// overrideWithEnv applies the HL_* environment variables over the file
// values. Env wins: it is where deployments keep secrets.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("HL_TICKER"); v != "" {
		cfg.Bot.Ticker = v
	}
	if v := os.Getenv("HL_GRID_AMOUNT_PER_LEVEL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bot.AmountPerLevel = f
		}
	}
	if v := os.Getenv("HL_GRID_MIN_SPREAD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bot.MinSpreadPct = f
		}
	}
	if v := os.Getenv("HL_TTL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bot.TTLSeconds = f
		}
	}
	if v := os.Getenv("HL_USE_TESTNET"); v != "" {
		cfg.Bot.UseTestnet = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HL_USE_AGENT"); v != "" {
		cfg.Bot.UseAgent = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HL_PRIVATE_KEY"); v != "" {
		cfg.Bot.PrivateKey = v
	}
	if v := os.Getenv("HL_AGENT_PRIVATE_KEY"); v != "" {
		cfg.Bot.AgentPrivateKey = v
	}
	if v := os.Getenv("WEBUI_AUTH_TOKEN"); v != "" {
		cfg.WebUI.AuthToken = strings.TrimSpace(v)
	}
	if v := os.Getenv("WEBUI_ADDR"); v != "" {
		cfg.WebUI.Addr = v
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.WebUI.AllowOrigins = splitCSV(v)
	}
	if v := os.Getenv("ALLOW_HEADERS"); v != "" {
		cfg.WebUI.AllowHeaders = splitCSV(v)
	}
	if v := os.Getenv("ALLOW_METHODS"); v != "" {
		cfg.WebUI.AllowMethods = splitCSV(v)
	}
	if v := os.Getenv("HL_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("HL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
