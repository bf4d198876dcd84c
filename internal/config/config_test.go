package config

import (
	"strings"
	"testing"
	"time"
)

var allEnvVars = []string{
	"QUOTE_PROVIDER",
	"FINNHUB_API_KEY",
	"ALPHAVANTAGE_API_KEY",
	"FINNHUB_BASE_URL",
	"ALPHAVANTAGE_BASE_URL",
	"STOCK_SYMBOLS",
	"REFRESH_INTERVAL",
	"REQUEST_TIMEOUT",
	"MAX_CONCURRENCY",
	"MANUAL_REFRESH_INTERVAL",
	"HTTP_ADDR",
	"QUOTEBOARD_UI",
	"LOG_LEVEL",
	"LOG_FILE",
}

// clearEnv blanks every variable Load reads; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)

	envVars := map[string]string{
		"FINNHUB_API_KEY":         "test_finnhub_key",
		"FINNHUB_BASE_URL":        "https://test.finnhub.io",
		"STOCK_SYMBOLS":           "aapl, googl ,TSLA",
		"REFRESH_INTERVAL":        "30s",
		"REQUEST_TIMEOUT":         "2s",
		"MAX_CONCURRENCY":         "2",
		"MANUAL_REFRESH_INTERVAL": "1m",
		"HTTP_ADDR":               "127.0.0.1:9000",
		"QUOTEBOARD_UI":           "Headless",
		"LOG_LEVEL":               "debug",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	stringTests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Provider", cfg.Provider, ProviderFinnhub},
		{"FinnhubAPIKey", cfg.FinnhubAPIKey, "test_finnhub_key"},
		{"FinnhubBaseURL", cfg.FinnhubBaseURL, "https://test.finnhub.io"},
		{"APIKey", cfg.APIKey(), "test_finnhub_key"},
		{"HTTPAddr", cfg.HTTPAddr, "127.0.0.1:9000"},
		{"UI", cfg.UI, UIHeadless},
		{"LogLevel", cfg.LogLevel, "debug"},
		{"Symbols", strings.Join(cfg.StockSymbols, ","), "AAPL,GOOGL,TSLA"},
	}
	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}

	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v, want 2s", cfg.RequestTimeout)
	}
	if cfg.ManualRefreshInterval != time.Minute {
		t.Errorf("ManualRefreshInterval = %v, want 1m", cfg.ManualRefreshInterval)
	}
	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2", cfg.MaxConcurrency)
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINNHUB_API_KEY", "test_finnhub_key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Provider", cfg.Provider, "finnhub"},
		{"FinnhubBaseURL", cfg.FinnhubBaseURL, "https://finnhub.io/api/v1"},
		{"AlphavantageBaseURL", cfg.AlphavantageBaseURL, "https://www.alphavantage.co/query"},
		{"Symbols", strings.Join(cfg.StockSymbols, ","), "AAPL,GOOGL,MSFT,AMZN,META"},
		{"HTTPAddr", cfg.HTTPAddr, ":8080"},
		{"UI", cfg.UI, "tui"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, "quoteboard.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}

	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("RefreshInterval = %v, want 5m", cfg.RefreshInterval)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", cfg.MaxConcurrency)
	}
}

func TestLoad_AlphaVantageProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUOTE_PROVIDER", "AlphaVantage")
	t.Setenv("ALPHAVANTAGE_API_KEY", "av_key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Provider != ProviderAlphaVantage {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderAlphaVantage)
	}
	if cfg.APIKey() != "av_key" {
		t.Errorf("APIKey() = %q, want av_key", cfg.APIKey())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    map[string]string
		wantErrText string
	}{
		{
			name:        "missing finnhub key",
			setupEnv:    map[string]string{},
			wantErrText: "FINNHUB_API_KEY",
		},
		{
			name: "missing alphavantage key",
			setupEnv: map[string]string{
				"QUOTE_PROVIDER":  "alphavantage",
				"FINNHUB_API_KEY": "unused",
			},
			wantErrText: "ALPHAVANTAGE_API_KEY",
		},
		{
			name: "unknown provider",
			setupEnv: map[string]string{
				"QUOTE_PROVIDER":  "bloomberg",
				"FINNHUB_API_KEY": "k",
			},
			wantErrText: `unknown provider "bloomberg"`,
		},
		{
			name: "unknown ui",
			setupEnv: map[string]string{
				"FINNHUB_API_KEY": "k",
				"QUOTEBOARD_UI":   "gui",
			},
			wantErrText: `unknown ui "gui"`,
		},
		{
			name: "duplicate symbols",
			setupEnv: map[string]string{
				"FINNHUB_API_KEY": "k",
				"STOCK_SYMBOLS":   "AAPL,aapl",
			},
			wantErrText: `duplicate symbol "AAPL"`,
		},
		{
			name: "negative interval",
			setupEnv: map[string]string{
				"FINNHUB_API_KEY":  "k",
				"REFRESH_INTERVAL": "-1s",
			},
			wantErrText: "refresh_interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.setupEnv {
				t.Setenv(key, value)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}

			if !strings.Contains(err.Error(), tt.wantErrText) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrText)
			}
		})
	}
}

func TestNormalizeSymbols(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    string
		wantErr bool
	}{
		{"upper-cases and trims", []string{" aapl", "msft "}, "AAPL,MSFT", false},
		{"splits comma separated entries", []string{"AAPL,GOOGL", "AMZN"}, "AAPL,GOOGL,AMZN", false},
		{"drops blanks", []string{"", "AAPL", " , "}, "AAPL", false},
		{"empty", nil, "", true},
		{"duplicate", []string{"AAPL", "aapl"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSymbols(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeSymbols(%v) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeSymbols(%v) returned unexpected error: %v", tt.in, err)
			}
			if joined := strings.Join(got, ","); joined != tt.want {
				t.Errorf("NormalizeSymbols(%v) = %q, want %q", tt.in, joined, tt.want)
			}
		})
	}
}

func TestLoad_HTTPDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINNHUB_API_KEY", "k")
	t.Setenv("HTTP_ADDR", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.HTTPAddr != "" {
		t.Errorf("HTTPAddr = %q, want empty", cfg.HTTPAddr)
	}
}
