// Package tickerchat is a headless client for the ticker chat service: it
// runs single exchanges and fetches the ticker reference list.
package tickerchat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tickerchat/internal/chat"
	"tickerchat/internal/ticker"
	"tickerchat/internal/transport"
)

var (
	// ErrTransport reports that the exchange's channel failed.
	ErrTransport = errors.New("tickerchat: " + chat.TransportErrorMessage)
	// ErrIncomplete reports that the channel closed before the answer was
	// sealed. The partial answer is still returned.
	ErrIncomplete = errors.New("tickerchat: answer incomplete")
	// ErrEmptyQuery is returned for blank queries; nothing is sent.
	ErrEmptyQuery = errors.New("tickerchat: empty query")
)

// Resource is a link attached to an answer.
type Resource struct {
	URL       string
	Headline  string
	Thumbnail string
}

// Answer is the assistant's reply to one query.
type Answer struct {
	Text      string
	Resources []Resource
	Sealed    bool
}

// Client talks to one chat server.
type Client struct {
	chatURL   string
	tickerURL string
	timeout   time.Duration
	log       *slog.Logger
}

// NewClient creates a client. chatURL is the WebSocket endpoint and
// tickerURL the reference-list endpoint.
func NewClient(chatURL, tickerURL string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		chatURL:   chatURL,
		tickerURL: tickerURL,
		timeout:   10 * time.Second,
		log:       log,
	}
}

// Ask runs one exchange and returns once the answer is sealed or the
// channel ends.
func (c *Client) Ask(ctx context.Context, query string) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, ErrEmptyQuery
	}
	d := &transport.Dialer{URL: c.chatURL, Timeout: c.timeout, Log: c.log}
	tr := chat.NewTranscript()
	ctrl := chat.NewController(tr, d.ChatDialer(), nil, c.log)
	defer ctrl.Close()

	if err := ctrl.Submit(ctx, query); err != nil {
		return Answer{}, errors.Join(ErrTransport, err)
	}
	if err := ctrl.Wait(ctx); err != nil {
		return Answer{}, err
	}

	last, _ := tr.Last()
	ans := toAnswer(last)
	switch {
	case tr.Error() != "":
		return ans, ErrTransport
	case !ans.Sealed:
		return ans, ErrIncomplete
	}
	return ans, nil
}

// Tickers fetches the reference list and indexes it.
func (c *Client) Tickers(ctx context.Context) (*ticker.Index, error) {
	recs, err := ticker.NewHTTPSource(c.tickerURL, "tickerchat/1.0").Load(ctx)
	if err != nil {
		return nil, err
	}
	return ticker.NewIndex(recs), nil
}

func toAnswer(t chat.Turn) Answer {
	if t.Role != chat.RoleAssistant {
		return Answer{}
	}
	ans := Answer{Text: t.Text, Sealed: t.Sealed}
	for _, r := range t.Resources {
		ans.Resources = append(ans.Resources, Resource{
			URL:       r.URL,
			Headline:  r.Headline,
			Thumbnail: r.ThumbnailURL,
		})
	}
	return ans
}
