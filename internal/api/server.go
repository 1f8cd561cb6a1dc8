// Package api is a self-contained chat backend speaking the same protocol as
// the production service: GET /ticker-list serves the reference list and
// GET /chat upgrades to a WebSocket that answers one query per connection.
// It backs the dev server binary and end-to-end tests.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tickerchat/internal/ticker"
)

// Server hosts the ticker list and chat endpoints.
type Server struct {
	addr      string
	tickers   []ticker.Record
	responder Responder
	hub       *Hub
	log       *slog.Logger

	httpSrv *http.Server
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, tickers []ticker.Record, responder Responder, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		addr:      addr,
		tickers:   tickers,
		responder: responder,
		hub:       NewHub(),
		log:       log,
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routes with CORS headers applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ticker-list", s.handleTickerList)
	mux.HandleFunc("GET /chat", s.handleChat)
	return corsMiddleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.log.Info("listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown closes open chat connections and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	n := s.hub.CloseAll()
	s.log.Info("shutting down", "openChats", n)
	return s.httpSrv.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
