package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// maxBasePrice bounds HISTORY_BASE_PRICE to the range competitor prices are
// accepted in.
const maxBasePrice = 100_000.0

// Config is the runtime configuration, read from the environment.
type Config struct {
	Port          int           `envconfig:"PORT" default:"8080"`
	ScrapeDelay   time.Duration `envconfig:"SCRAPE_DELAY" default:"2s"`
	SourceTimeout time.Duration `envconfig:"SOURCE_TIMEOUT" default:"20s"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	MaxResults    int           `envconfig:"MAX_RESULTS" default:"10"`
	UserAgent     string        `envconfig:"USER_AGENT"`
	PoshmarkURL   string        `envconfig:"POSHMARK_URL" default:"https://poshmark.com"`
	MercariURL    string        `envconfig:"MERCARI_URL" default:"https://www.mercari.com"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"text"`

	History HistoryConfig
	EBay    EBayConfig
	Watch   WatchConfig
}

// HistoryConfig shapes the synthetic price history.
type HistoryConfig struct {
	Days       int     `envconfig:"HISTORY_DAYS" default:"90"`
	BasePrice  float64 `envconfig:"HISTORY_BASE_PRICE" default:"100"`
	Trend      float64 `envconfig:"HISTORY_TREND" default:"0"`
	Volatility float64 `envconfig:"HISTORY_VOLATILITY" default:"0.02"`
	Seed       int64   `envconfig:"HISTORY_SEED" default:"0"`
}

// EBayConfig holds the Browse API credentials. The client is disabled when
// either credential is empty.
type EBayConfig struct {
	ClientID      string `envconfig:"EBAY_CLIENT_ID"`
	ClientSecret  string `envconfig:"EBAY_CLIENT_SECRET"`
	MarketplaceID string `envconfig:"EBAY_MARKETPLACE_ID" default:"EBAY_US"`
	Sandbox       bool   `envconfig:"EBAY_SANDBOX" default:"false"`
	Limit         int    `envconfig:"EBAY_LIMIT" default:"100"`
}

// WatchConfig drives the scheduled watch command.
type WatchConfig struct {
	Schedule string   `envconfig:"WATCH_SCHEDULE" default:"@every 1h"`
	Keywords []string `envconfig:"WATCH_KEYWORDS"`
}

// Load reads a .env file when present and maps the environment onto Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.ScrapeDelay < 0 {
		errs = append(errs, errors.New("SCRAPE_DELAY must not be negative"))
	}
	if c.SourceTimeout <= 0 {
		errs = append(errs, errors.New("SOURCE_TIMEOUT must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.MaxResults <= 0 {
		errs = append(errs, errors.New("MAX_RESULTS must be positive"))
	}
	if c.History.Days <= 0 {
		errs = append(errs, errors.New("HISTORY_DAYS must be positive"))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"HISTORY_BASE_PRICE", c.History.BasePrice},
		{"HISTORY_TREND", c.History.Trend},
		{"HISTORY_VOLATILITY", c.History.Volatility},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			errs = append(errs, fmt.Errorf("%s must be a finite number", f.name))
		}
	}
	if c.History.BasePrice < 0 || c.History.BasePrice > maxBasePrice {
		errs = append(errs, fmt.Errorf("HISTORY_BASE_PRICE must be between 0 and %v", maxBasePrice))
	}
	if c.History.Volatility < 0 {
		errs = append(errs, errors.New("HISTORY_VOLATILITY must not be negative"))
	}
	if (c.EBay.ClientID == "") != (c.EBay.ClientSecret == "") {
		errs = append(errs, errors.New("EBAY_CLIENT_ID and EBAY_CLIENT_SECRET must be set together"))
	}
	if c.EBay.Limit <= 0 || c.EBay.Limit > 200 {
		errs = append(errs, fmt.Errorf("EBAY_LIMIT %d out of range 1-200", c.EBay.Limit))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be text or json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// EBayEnabled reports whether eBay credentials are configured.
func (c *Config) EBayEnabled() bool {
	return c.EBay.ClientID != "" && c.EBay.ClientSecret != ""
}

// NewLogger builds the process logger writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
