package ticker

import (
	"context"
	"log/slog"
	"time"

	"tickerchat/internal/util"
)

// Loader fetches the reference list with retries and falls back to the
// cache. It never fails: the worst outcome is an empty index, which leaves
// autocomplete disabled.
type Loader struct {
	Source     Source
	Cache      *Cache // optional
	Retries    int
	RetryDelay time.Duration
	Log        *slog.Logger
}

// Load returns the index to use. fromCache reports whether the live source
// failed and the cached copy was used instead.
func (l *Loader) Load(ctx context.Context) (ix *Index, fromCache bool) {
	var records []Record
	err := util.Retry(ctx, l.Retries, l.RetryDelay, func(attempt int) error {
		var err error
		records, err = l.Source.Load(ctx)
		if err != nil {
			l.Log.Warn("loading ticker list", "attempt", attempt+1, "error", err)
		}
		return err
	})
	if err == nil {
		l.Log.Info("ticker list loaded", "count", len(records))
		if l.Cache != nil {
			if err := l.Cache.Save(ctx, records); err != nil {
				l.Log.Warn("saving ticker cache", "error", err)
			}
		}
		return NewIndex(records), false
	}

	if l.Cache != nil {
		cached, cerr := l.Cache.Load(ctx)
		if cerr == nil {
			l.Log.Info("ticker list loaded from cache", "count", len(cached))
			return NewIndex(cached), true
		}
		l.Log.Warn("loading ticker cache", "error", cerr)
	}
	l.Log.Error("ticker autocomplete disabled", "error", err)
	return NewIndex(nil), false
}
