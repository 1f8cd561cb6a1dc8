package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"tickerchat/internal/util"
)

// Channel is a duplex, message-oriented connection carrying one exchange.
// Receive returns io.EOF once the peer closes the channel normally. Close
// may be called more than once.
type Channel interface {
	Send(ctx context.Context, v any) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens a fresh Channel for each exchange.
type Dialer interface {
	Dial(ctx context.Context) (Channel, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context) (Channel, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context) (Channel, error) { return f(ctx) }

// Controller runs exchanges against a transcript. Only one exchange is
// active; starting another closes the previous channel and drops any of its
// events still in flight. An exchange abandoned this way keeps its open
// turn: it is never sealed on the client's initiative.
type Controller struct {
	transcript *Transcript
	dialer     Dialer
	limiter    *util.RateLimiter
	log        *slog.Logger

	mu     sync.Mutex
	gen    uint64
	active Channel
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller. limiter may be nil for no rate limit.
func NewController(t *Transcript, d Dialer, limiter *util.RateLimiter, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		transcript: t,
		dialer:     d,
		limiter:    limiter,
		log:        log,
	}
}

// Transcript returns the transcript the controller writes to.
func (c *Controller) Transcript() *Transcript { return c.transcript }

// Submit appends the user's text and starts an exchange for it. Blank input
// is ignored without error.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if !c.transcript.AppendUser(text) {
		return nil
	}
	return c.StartExchange(ctx, text)
}

// StartExchange supersedes any active exchange, opens a new channel and
// sends the query on it. Inbound events are reconciled on a background
// goroutine until the turn seals or the channel ends.
func (c *Controller) StartExchange(ctx context.Context, query string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	prev := c.detachLocked()
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	ch, err := c.dialer.Dial(ctx)
	if err != nil {
		c.OnTransportError(err)
		return fmt.Errorf("opening channel: %w", err)
	}
	if err := ch.Send(ctx, Query{Query: query}); err != nil {
		ch.Close()
		c.OnTransportError(err)
		return fmt.Errorf("sending query: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	if gen != c.gen {
		// Superseded while dialing.
		c.mu.Unlock()
		cancel()
		ch.Close()
		return nil
	}
	c.active, c.cancel, c.done = ch, cancel, done
	c.mu.Unlock()

	c.log.Debug("exchange started", "gen", gen)
	go c.pump(runCtx, gen, ch, done)
	return nil
}

// OnEvent reconciles one raw frame into the current exchange.
func (c *Controller) OnEvent(raw []byte) Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(raw)
}

// OnTransportError records the session banner. No turn is modified.
func (c *Controller) OnTransportError(err error) {
	c.log.Warn("transport error", "error", err)
	c.transcript.SetError(TransportErrorMessage)
}

// Active reports whether a channel is currently open.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Wait blocks until the current exchange's channel has ended or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the active exchange, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	c.gen++
	prev := c.detachLocked()
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

func (c *Controller) pump(ctx context.Context, gen uint64, ch Channel, done chan struct{}) {
	defer close(done)
	defer c.release(gen, ch)

	for {
		raw, err := ch.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				c.log.Debug("exchange channel closed", "gen", gen)
				return
			}
			c.mu.Lock()
			current := gen == c.gen
			c.mu.Unlock()
			if current {
				c.OnTransportError(err)
			}
			return
		}

		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		turn := c.applyLocked(raw)
		c.mu.Unlock()

		if turn.Sealed {
			return
		}
	}
}

func (c *Controller) applyLocked(raw []byte) Turn {
	ev := ParseEvent(raw)
	if ev.Error != "" {
		c.log.Warn("server reported error", "error", ev.Error)
	}
	turn := c.transcript.Reconcile(ev)
	c.log.Debug("event reconciled",
		"textLen", len(turn.Text), "resources", len(turn.Resources), "sealed", turn.Sealed)
	return turn
}

// release closes ch and clears it as the active channel if it still is.
func (c *Controller) release(gen uint64, ch Channel) {
	c.mu.Lock()
	if gen == c.gen && c.active == ch {
		c.cancel()
		c.active, c.cancel = nil, nil
	}
	c.mu.Unlock()
	ch.Close()
}

// detachLocked cancels the active exchange and returns its channel for the
// caller to close once mu is released. Must be called with mu held.
func (c *Controller) detachLocked() Channel {
	ch := c.active
	if ch == nil {
		return nil
	}
	c.cancel()
	c.active, c.cancel = nil, nil
	return ch
}
