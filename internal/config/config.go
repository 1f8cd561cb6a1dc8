// Package config loads the tickerchat client configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor TICKERCHAT_CONFIG names a file.
const DefaultPath = "config/tickerchat.yaml"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the tickerchat client.
type Config struct {
	Server  Server  `yaml:"server"`
	Tickers Tickers `yaml:"tickers"`
	Alpaca  Alpaca  `yaml:"alpaca"`
	Chat    Chat    `yaml:"chat"`
	Logging Logging `yaml:"logging"`
	UI      UI      `yaml:"ui"`
}

// Server locates the chat backend.
type Server struct {
	URL         string        `yaml:"url"`
	ChatPath    string        `yaml:"chat_path"`
	Origin      string        `yaml:"origin"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Tickers configures where the reference ticker list comes from.
type Tickers struct {
	Source     string        `yaml:"source"` // "http", "alpaca" or "file"
	URL        string        `yaml:"url"`
	Path       string        `yaml:"path"`
	UserAgent  string        `yaml:"user_agent"`
	CachePath  string        `yaml:"cache_path"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Alpaca holds credentials for the broker asset list.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// Chat controls exchange behaviour.
type Chat struct {
	MaxQueriesPerMin int `yaml:"max_queries_per_min"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// UI configures the terminal client.
type UI struct {
	WordWrap int    `yaml:"word_wrap"`
	Style    string `yaml:"style"`
}

// Default returns the configuration used for fields a file leaves unset.
func Default() *Config {
	return &Config{
		Server: Server{
			URL:         "ws://localhost:8000",
			ChatPath:    "/chat",
			DialTimeout: 10 * time.Second,
		},
		Tickers: Tickers{
			Source:     "http",
			UserAgent:  "tickerchat/1.0",
			Retries:    3,
			RetryDelay: 500 * time.Millisecond,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			File:   "tickerchat.log",
		},
		UI: UI{
			WordWrap: 100,
			Style:    "dark",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. When optional is true a missing file is not an
// error.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve picks the config path: the flag value, then TICKERCHAT_CONFIG,
// then DefaultPath. optional is true only for the default path.
func Resolve(flagPath string) (path string, optional bool) {
	if flagPath != "" {
		return flagPath, false
	}
	if p := os.Getenv("TICKERCHAT_CONFIG"); p != "" {
		return p, false
	}
	return DefaultPath, true
}

// Validate checks fields that would otherwise fail later at dial time.
func (c *Config) Validate() error {
	switch c.Tickers.Source {
	case "http", "alpaca", "file":
	default:
		return fmt.Errorf("tickers.source %q: want http, alpaca or file", c.Tickers.Source)
	}
	if c.Tickers.Source == "file" && c.Tickers.Path == "" {
		return errors.New("tickers.path is required for the file source")
	}
	if _, err := url.Parse(c.Server.URL); err != nil {
		return fmt.Errorf("server.url: %w", err)
	}
	return nil
}

// ChatURL is the websocket endpoint for exchanges.
func (c *Config) ChatURL() string {
	return joinURL(c.Server.URL, c.Server.ChatPath)
}

// TickerURL is the reference list endpoint. When tickers.url is unset it is
// derived from the server URL, swapping a ws scheme for http.
func (c *Config) TickerURL() string {
	if c.Tickers.URL != "" {
		return c.Tickers.URL
	}
	base := c.Server.URL
	switch {
	case strings.HasPrefix(base, "wss://"):
		base = "https://" + strings.TrimPrefix(base, "wss://")
	case strings.HasPrefix(base, "ws://"):
		base = "http://" + strings.TrimPrefix(base, "ws://")
	}
	return joinURL(base, "/ticker-list")
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TICKERCHAT_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("TICKERCHAT_TICKER_URL"); v != "" {
		cfg.Tickers.URL = v
	}
	if v := os.Getenv("TICKERCHAT_TICKER_SOURCE"); v != "" {
		cfg.Tickers.Source = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
