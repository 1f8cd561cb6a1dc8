package ticker

import (
	"fmt"
	"log/slog"

	"tickerchat/internal/config"
)

// NewLoader builds the Loader described by cfg.Tickers. The cache is opened
// when a cache path is set; failing to open it only disables caching.
func NewLoader(cfg *config.Config, log *slog.Logger) (*Loader, error) {
	var src Source
	switch cfg.Tickers.Source {
	case "http":
		src = NewHTTPSource(cfg.TickerURL(), cfg.Tickers.UserAgent)
	case "alpaca":
		src = NewAlpacaSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
	case "file":
		src = &FileSource{Path: cfg.Tickers.Path}
	default:
		return nil, fmt.Errorf("unknown ticker source %q", cfg.Tickers.Source)
	}

	l := &Loader{
		Source:     src,
		Retries:    cfg.Tickers.Retries,
		RetryDelay: cfg.Tickers.RetryDelay,
		Log:        log,
	}
	if cfg.Tickers.CachePath != "" {
		cache, err := OpenCache(cfg.Tickers.CachePath)
		if err != nil {
			log.Warn("opening ticker cache", "path", cfg.Tickers.CachePath, "error", err)
		} else {
			l.Cache = cache
		}
	}
	return l, nil
}

// Close releases the cache, if any.
func (l *Loader) Close() error {
	if l == nil || l.Cache == nil {
		return nil
	}
	return l.Cache.Close()
}
