package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tickerchat/internal/chat"
	"tickerchat/internal/ticker"
	"tickerchat/internal/transport"
)

func testServer(t *testing.T, r Responder) *httptest.Server {
	t.Helper()
	tickers := []ticker.Record{}
	for i := 0; i < 12; i++ {
		tickers = append(tickers, ticker.Record{Ticker: "T" + string(rune('A'+i)), Title: "Test " + string(rune('A'+i))})
	}
	s := NewServer("127.0.0.1:0", tickers, r, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat"
}

func TestTickerListRoundTrip(t *testing.T) {
	srv := testServer(t, &ScriptResponder{})

	recs, err := ticker.NewHTTPSource(srv.URL+"/ticker-list", "").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 12 {
		t.Fatalf("len = %d, want 12", len(recs))
	}
	// Numeric key order, not lexical ("10" after "9").
	if recs[10].Ticker != "TK" || recs[11].Ticker != "TL" {
		t.Errorf("tail = %s %s, want TK TL", recs[10].Ticker, recs[11].Ticker)
	}
}

func runExchange(t *testing.T, srv *httptest.Server, query string) *chat.Transcript {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := &transport.Dialer{URL: wsURL(srv), Timeout: time.Second}
	tr := chat.NewTranscript()
	c := chat.NewController(tr, d.ChatDialer(), nil, nil)
	defer c.Close()

	if err := c.Submit(ctx, query); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return tr
}

func TestChatExchange(t *testing.T) {
	r := &ScriptResponder{
		Articles: []Article{
			{URL: "https://news.example.com/apple-beats", Images: []chat.ImageCandidate{
				{Size: "large", URL: "https://img.example.com/l.jpg"},
				{Size: "thumb", URL: "https://img.example.com/t.jpg"},
			}},
			{URL: "https://news.example.com/apple-beats", Headline: "Duplicate"},
			{URL: "https://news.example.com/iphone", Headline: "iPhone sales"},
		},
		Answer: func(q string) string { return "Apple is up today." },
	}
	srv := testServer(t, r)

	tr := runExchange(t, srv, "how is AAPL")
	turns := tr.Turns()
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	got := turns[1]
	if !got.Sealed || got.Status != "" {
		t.Errorf("turn sealed=%v status=%q, want sealed with no status", got.Sealed, got.Status)
	}
	if got.Text != "Apple is up today." {
		t.Errorf("Text = %q", got.Text)
	}
	// The second article repeats the first URL; the first one wins.
	if len(got.Resources) != 2 {
		t.Fatalf("resources = %d, want 2", len(got.Resources))
	}
	if got.Resources[0].Headline != "" {
		t.Errorf("duplicate replaced the first resource: %+v", got.Resources[0])
	}
	if got.Resources[0].ThumbnailURL != "https://img.example.com/t.jpg" {
		t.Errorf("thumbnail = %q", got.Resources[0].ThumbnailURL)
	}
	if got.Resources[1].Headline != "iPhone sales" {
		t.Errorf("headline = %q", got.Resources[1].Headline)
	}
	if tr.Error() != "" {
		t.Errorf("banner = %q, want none", tr.Error())
	}
}

type failingResponder struct{}

func (failingResponder) Respond(_ context.Context, _ string, emit func(Frame) error) error {
	text := "partial"
	if err := emit(Frame{Response: &text}); err != nil {
		return err
	}
	return errors.New("model unavailable")
}

func TestChatResponderError(t *testing.T) {
	srv := testServer(t, failingResponder{})

	tr := runExchange(t, srv, "anything")
	last, _ := tr.Last()
	if !last.Sealed || last.Text != "partial" {
		t.Errorf("last = %+v, want sealed with partial text", last)
	}
	if tr.Error() != "" {
		t.Errorf("server error frame raised the banner: %q", tr.Error())
	}
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub()
	if n := h.CloseAll(); n != 0 {
		t.Errorf("CloseAll on empty hub = %d, want 0", n)
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}
