package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Quote providers
const (
	ProviderFinnhub      = "finnhub"
	ProviderAlphaVantage = "alphavantage"
)

// UI modes
const (
	UITerminal = "tui"
	UIHeadless = "headless"
)

// DefaultSymbols are tracked when no symbols are configured.
var DefaultSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "META"}

// Config holds all configuration for the quote dashboard.
type Config struct {
	// Upstream selection and credentials
	Provider           string `mapstructure:"provider"`
	FinnhubAPIKey      string `mapstructure:"finnhub_api_key"`
	AlphavantageAPIKey string `mapstructure:"alphavantage_api_key"`

	// Base URLs for API endpoints (configurable for testing)
	FinnhubBaseURL      string `mapstructure:"finnhub_base_url"`
	AlphavantageBaseURL string `mapstructure:"alphavantage_base_url"`

	// Items to fetch
	StockSymbols []string `mapstructure:"stock_symbols"`

	// Refresh behaviour
	RefreshInterval       time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	MaxConcurrency        int           `mapstructure:"max_concurrency"`
	ManualRefreshInterval time.Duration `mapstructure:"manual_refresh_interval"`

	// Surfaces and logging
	HTTPAddr string `mapstructure:"http_addr"`
	UI       string `mapstructure:"ui"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// APIKey returns the token for the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderAlphaVantage {
		return c.AlphavantageAPIKey
	}
	return c.FinnhubAPIKey
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Expected environment variables:
//   - QUOTE_PROVIDER (optional, finnhub or alphavantage, defaults to finnhub)
//   - FINNHUB_API_KEY (required for finnhub)
//   - ALPHAVANTAGE_API_KEY (required for alphavantage)
//   - FINNHUB_BASE_URL, ALPHAVANTAGE_BASE_URL (optional, defaults to production)
//   - STOCK_SYMBOLS (optional, comma separated)
//   - REFRESH_INTERVAL, REQUEST_TIMEOUT, MANUAL_REFRESH_INTERVAL (optional, Go durations)
//   - MAX_CONCURRENCY (optional)
//   - HTTP_ADDR (optional, "off" disables the HTTP API)
//   - QUOTEBOARD_UI (optional, tui or headless)
//   - LOG_LEVEL, LOG_FILE (optional)
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", ProviderFinnhub)
	v.SetDefault("finnhub_api_key", "")
	v.SetDefault("alphavantage_api_key", "")
	v.SetDefault("finnhub_base_url", "https://finnhub.io/api/v1")
	v.SetDefault("alphavantage_base_url", "https://www.alphavantage.co/query")
	v.SetDefault("stock_symbols", DefaultSymbols)
	v.SetDefault("refresh_interval", 5*time.Minute)
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("max_concurrency", 0)
	v.SetDefault("manual_refresh_interval", 10*time.Second)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("ui", UITerminal)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "quoteboard.log")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.quoteboard")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindings := map[string]string{
		"provider":                "QUOTE_PROVIDER",
		"finnhub_api_key":         "FINNHUB_API_KEY",
		"alphavantage_api_key":    "ALPHAVANTAGE_API_KEY",
		"finnhub_base_url":        "FINNHUB_BASE_URL",
		"alphavantage_base_url":   "ALPHAVANTAGE_BASE_URL",
		"stock_symbols":           "STOCK_SYMBOLS",
		"refresh_interval":        "REFRESH_INTERVAL",
		"request_timeout":         "REQUEST_TIMEOUT",
		"max_concurrency":         "MAX_CONCURRENCY",
		"manual_refresh_interval": "MANUAL_REFRESH_INTERVAL",
		"http_addr":               "HTTP_ADDR",
		"ui":                      "QUOTEBOARD_UI",
		"log_level":               "LOG_LEVEL",
		"log_file":                "LOG_FILE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Unmarshal config into struct; durations and comma separated lists are
	// decoded by viper's default hooks.
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize cleans up user input and validates the result.
func (c *Config) normalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.UI = strings.ToLower(strings.TrimSpace(c.UI))
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	if strings.EqualFold(c.HTTPAddr, "off") {
		c.HTTPAddr = ""
	}

	symbols, err := NormalizeSymbols(c.StockSymbols)
	if err != nil {
		return err
	}
	c.StockSymbols = symbols

	var problems []string

	switch c.Provider {
	case ProviderFinnhub:
		if c.FinnhubAPIKey == "" {
			problems = append(problems, "missing required configuration: FINNHUB_API_KEY")
		}
	case ProviderAlphaVantage:
		if c.AlphavantageAPIKey == "" {
			problems = append(problems, "missing required configuration: ALPHAVANTAGE_API_KEY")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown provider %q", c.Provider))
	}

	switch c.UI {
	case UITerminal, UIHeadless:
	default:
		problems = append(problems, fmt.Sprintf("unknown ui %q", c.UI))
	}

	if c.RefreshInterval <= 0 {
		problems = append(problems, "refresh_interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.MaxConcurrency < 0 {
		problems = append(problems, "max_concurrency must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// NormalizeSymbols trims and upper-cases symbols, dropping empty entries.
// The result must be non-empty and free of duplicates.
func NormalizeSymbols(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		// A single env value may still hold several comma separated symbols.
		for _, s := range strings.Split(entry, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if seen[s] {
				return nil, fmt.Errorf("duplicate symbol %q", s)
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no stock symbols configured")
	}
	return out, nil
}
