// Package transport carries chat exchanges over a WebSocket. Each exchange
// uses its own connection: the client sends one query and reads event frames
// until the server closes or the caller moves on.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"tickerchat/internal/chat"
)

// ErrClosed is returned by Send after the connection has been closed.
var ErrClosed = errors.New("transport: connection closed")

var _ chat.Channel = (*Conn)(nil)

// readLimit bounds a single inbound frame.
const readLimit = 1 << 20

// Dialer opens WebSocket connections to the chat endpoint.
type Dialer struct {
	URL     string
	Origin  string
	Timeout time.Duration
	Log     *slog.Logger
}

// Dial opens a connection. Timeout, when set, bounds the handshake only.
func (d *Dialer) Dial(ctx context.Context) (*Conn, error) {
	dialCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	opts := &websocket.DialOptions{}
	if d.Origin != "" {
		opts.HTTPHeader = http.Header{"Origin": []string{d.Origin}}
	}
	ws, resp, err := websocket.Dial(dialCtx, d.URL, opts)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s: status %d: %w", d.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing %s: %w", d.URL, err)
	}
	ws.SetReadLimit(readLimit)

	log := d.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log.Debug("connected", "url", d.URL)
	return newConn(ws, log), nil
}

// ChatDialer adapts d to the chat controller.
func (d *Dialer) ChatDialer() chat.Dialer {
	return chat.DialerFunc(func(ctx context.Context) (chat.Channel, error) {
		c, err := d.Dial(ctx)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Conn is one exchange's connection.
type Conn struct {
	ws  *websocket.Conn
	log *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn, log *slog.Logger) *Conn {
	return &Conn{ws: ws, log: log}
}

// Send writes v as a JSON text frame.
func (c *Conn) Send(ctx context.Context, v any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := wsjson.Write(ctx, c.ws, v); err != nil {
		return fmt.Errorf("sending: %w", err)
	}
	return nil
}

// Receive returns the payload of the next frame. A normal close by either
// side is reported as io.EOF.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if c.closed.Load() {
		return nil, io.EOF
	}
	_, data, err := c.ws.Read(ctx)
	if err == nil {
		return data, nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return nil, io.EOF
	}
	if c.closed.Load() {
		return nil, io.EOF
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("receiving: %w", err)
}

// Close sends a normal closure. Later calls return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.ws.Close(websocket.StatusNormalClosure, "")
		c.log.Debug("connection closed", "error", c.closeErr)
	})
	return c.closeErr
}
