package ticker

import (
	"fmt"
	"testing"
)

func sampleIndex() *Index {
	return NewIndex([]Record{
		{Ticker: "AAPL", Title: "Apple Inc."},
		{Ticker: "MSFT", Title: "Microsoft Corp"},
		{Ticker: "AAP", Title: "Advance Auto Parts"},
		{Ticker: "GOOGL", Title: "Alphabet Inc."},
	})
}

func tickers(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Ticker
	}
	return out
}

func TestSearchAfterHash(t *testing.T) {
	res := sampleIndex().Search("tell me about #aap")
	if res.Query != "aap" {
		t.Errorf("Query = %q, want %q", res.Query, "aap")
	}
	got := fmt.Sprint(tickers(res.Matches))
	if got != "[AAPL AAP]" {
		t.Errorf("Matches = %s, want [AAPL AAP]", got)
	}
	if !res.Visible {
		t.Error("Visible = false, want true")
	}
}

func TestSearchWithoutHashUsesWholeInput(t *testing.T) {
	res := sampleIndex().Search("  Micro ")
	if got := fmt.Sprint(tickers(res.Matches)); got != "[MSFT]" {
		t.Errorf("Matches = %s, want [MSFT]", got)
	}
}

func TestSearchMatchesTitle(t *testing.T) {
	res := sampleIndex().Search("#inc")
	if got := fmt.Sprint(tickers(res.Matches)); got != "[AAPL GOOGL]" {
		t.Errorf("Matches = %s, want [AAPL GOOGL]", got)
	}
}

func TestSearchEmptyQueryHidden(t *testing.T) {
	for _, input := range []string{"", "   ", "ask #", "ask #   "} {
		res := sampleIndex().Search(input)
		if res.Visible || len(res.Matches) != 0 {
			t.Errorf("Search(%q) = %+v, want hidden and empty", input, res)
		}
	}
}

func TestSearchNoMatchHidden(t *testing.T) {
	res := sampleIndex().Search("#zzzz")
	if res.Visible {
		t.Error("Visible = true with no matches")
	}
}

func TestSearchCap(t *testing.T) {
	var recs []Record
	for i := 0; i < 25; i++ {
		recs = append(recs, Record{Ticker: fmt.Sprintf("X%02d", i), Title: "Example"})
	}
	res := NewIndex(recs).Search("x")
	if len(res.Matches) != MaxResults {
		t.Fatalf("len(Matches) = %d, want %d", len(res.Matches), MaxResults)
	}
	if res.Matches[0].Ticker != "X00" || res.Matches[9].Ticker != "X09" {
		t.Errorf("Matches not in index order: %v", tickers(res.Matches))
	}
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	if ix.Len() != 0 {
		t.Errorf("Len = %d, want 0", ix.Len())
	}
	if res := ix.Search("#a"); res.Visible {
		t.Error("nil index returned visible suggestions")
	}
}

func TestApplySelection(t *testing.T) {
	tests := []struct {
		input, ticker, want string
	}{
		{"tell me about #aap", "aapl", "tell me about AAPL "},
		{"#ms", "MSFT", "MSFT "},
		{"a #b and #go", "googl", "a #b and GOOGL "},
		{"apple", "aapl", "AAPL "},
	}
	for _, tt := range tests {
		if got := ApplySelection(tt.input, tt.ticker); got != tt.want {
			t.Errorf("ApplySelection(%q, %q) = %q, want %q", tt.input, tt.ticker, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	r := NewRecord("AAPL", "Apple Inc.")
	if got, want := r.Label(), "AAPL — Apple Inc."; got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
}
