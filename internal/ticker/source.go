package ticker

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// ErrEmptyList is returned when a source yields no usable records.
var ErrEmptyList = errors.New("ticker list is empty")

// Source produces the reference list.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Compile-time interface checks.
var _ Source = (*HTTPSource)(nil)
var _ Source = (*AlpacaSource)(nil)
var _ Source = (*FileSource)(nil)

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

// HTTPSource fetches a JSON object whose values are ticker records, the
// shape of the SEC company_tickers.json file served at /ticker-list.
type HTTPSource struct {
	URL       string
	UserAgent string
	Client    *http.Client
}

// NewHTTPSource creates a source with a 10s client timeout.
func NewHTTPSource(url, userAgent string) *HTTPSource {
	return &HTTPSource{
		URL:       url,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Load performs the GET and decodes the body.
func (s *HTTPSource) Load(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", s.URL, resp.StatusCode)
	}
	return DecodeRecords(resp.Body)
}

// ---------------------------------------------------------------------------
// Alpaca
// ---------------------------------------------------------------------------

// AlpacaSource lists active US equities from the Alpaca trading API.
type AlpacaSource struct {
	client *alpaca.Client
}

// NewAlpacaSource creates a source from API credentials. An empty baseURL
// uses the SDK default.
func NewAlpacaSource(apiKey, apiSecret, baseURL string) *AlpacaSource {
	return &AlpacaSource{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

// Load returns tradable assets ordered by symbol.
func (s *AlpacaSource) Load(ctx context.Context) ([]Record, error) {
	type result struct {
		assets []alpaca.Asset
		err    error
	}
	// The SDK call takes no context; run it aside so ctx still bounds it.
	done := make(chan result, 1)
	go func() {
		assets, err := s.client.GetAssets(alpaca.GetAssetsRequest{
			Status:     "active",
			AssetClass: "us_equity",
		})
		done <- result{assets, err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, fmt.Errorf("GetAssets: %w", r.err)
	}

	records := make([]Record, 0, len(r.assets))
	for _, a := range r.assets {
		if !a.Tradable || a.Symbol == "" {
			continue
		}
		records = append(records, Record{Ticker: a.Symbol, Title: a.Name})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Ticker < records[j].Ticker })
	if len(records) == 0 {
		return nil, ErrEmptyList
	}
	return records, nil
}

// ---------------------------------------------------------------------------
// File
// ---------------------------------------------------------------------------

// FileSource reads a local list: .csv files with a ticker and title column,
// anything else as JSON.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (s *FileSource) Load(_ context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(s.Path), ".csv") {
		return decodeCSV(f)
	}
	return DecodeRecords(f)
}

// decodeCSV reads a headered CSV. Columns named "ticker" (or "symbol") and
// "title" (or "name") are used; otherwise the first two columns.
func decodeCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	tickerIdx, titleIdx := 0, 1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "ticker", "symbol":
			tickerIdx = i
		case "title", "name":
			titleIdx = i
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if len(row) <= tickerIdx || len(row) <= titleIdx {
			continue
		}
		sym := strings.TrimSpace(row[tickerIdx])
		if sym == "" {
			continue
		}
		records = append(records, Record{Ticker: sym, Title: strings.TrimSpace(row[titleIdx])})
	}
	if len(records) == 0 {
		return nil, ErrEmptyList
	}
	return records, nil
}

// ---------------------------------------------------------------------------
// JSON decoding
// ---------------------------------------------------------------------------

// DecodeRecords decodes either a JSON array of records or a JSON object
// mapping arbitrary keys to records. Object values are ordered the way a
// JavaScript object enumerates them: integer keys ascending, then the other
// keys in document order. Entries without a string ticker and title are
// skipped.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding ticker list: %w", err)
	}

	var raws []json.RawMessage
	switch tok {
	case json.Delim('['):
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("decoding ticker list: %w", err)
			}
			raws = append(raws, raw)
		}
	case json.Delim('{'):
		type keyed struct {
			index uint64
			isIdx bool
			raw   json.RawMessage
		}
		var entries []keyed
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("decoding ticker list: %w", err)
			}
			key, _ := kt.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("decoding ticker list: %w", err)
			}
			idx, isIdx := arrayIndex(key)
			entries = append(entries, keyed{index: idx, isIdx: isIdx, raw: raw})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.isIdx != b.isIdx {
				return a.isIdx
			}
			if a.isIdx {
				return a.index < b.index
			}
			return false
		})
		for _, e := range entries {
			raws = append(raws, e.raw)
		}
	default:
		return nil, fmt.Errorf("decoding ticker list: unexpected %v", tok)
	}

	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		var v struct {
			Ticker *string `json:"ticker"`
			Title  *string `json:"title"`
		}
		if err := json.Unmarshal(raw, &v); err != nil || v.Ticker == nil || v.Title == nil {
			continue
		}
		records = append(records, Record{Ticker: *v.Ticker, Title: *v.Title})
	}
	if len(records) == 0 {
		return nil, ErrEmptyList
	}
	return records, nil
}

// arrayIndex reports whether key is a canonical array index ("0", "17", but
// not "01" or "-1").
func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}
