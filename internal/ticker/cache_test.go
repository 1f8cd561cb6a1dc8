package ticker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "sub", "tickers.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if _, err := c.Load(ctx); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("Load on empty cache = %v, want ErrEmptyList", err)
	}
	if at, err := c.SavedAt(ctx); err != nil || !at.IsZero() {
		t.Errorf("SavedAt = %v, %v; want zero, nil", at, err)
	}

	first := []Record{{Ticker: "MSFT", Title: "Microsoft"}, {Ticker: "AAPL", Title: "Apple"}}
	if err := c.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := []Record{{Ticker: "GOOGL", Title: "Alphabet"}}
	if err := c.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "GOOGL" {
		t.Errorf("Load = %+v, want only GOOGL", got)
	}
	if at, _ := c.SavedAt(ctx); at.IsZero() {
		t.Error("SavedAt is zero after Save")
	}
}

func TestCacheKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)
	in := []Record{{Ticker: "C", Title: "c"}, {Ticker: "A", Title: "a"}, {Ticker: "B", Title: "b"}}
	if err := c.Save(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if got[i].Ticker != in[i].Ticker {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Ticker, in[i].Ticker)
		}
	}
}
