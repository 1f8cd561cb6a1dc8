package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"tickerchat/internal/chat"
)

type tickerJSON struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// handleTickerList serves the list keyed "0", "1", ... like the SEC
// company_tickers.json file.
func (s *Server) handleTickerList(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]tickerJSON, len(s.tickers))
	for i, r := range s.tickers {
		out[strconv.Itoa(i)] = tickerJSON{Ticker: r.Ticker, Title: r.Title}
	}
	writeJSON(w, out)
}

// handleChat reads one query, streams the responder's frames, then sends
// {"done":true} and closes normally. A responder error is reported as
// {"error":..., "done":true}.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warn("accepting websocket", "error", err)
		return
	}
	s.hub.register(ws)
	defer s.hub.unregister(ws)

	ctx := r.Context()
	var q chat.Query
	if err := wsjson.Read(ctx, ws, &q); err != nil {
		s.log.Debug("reading query", "error", err)
		ws.Close(websocket.StatusPolicyViolation, "expected a query")
		return
	}
	s.log.Info("query", "query", q.Query)

	emit := func(f Frame) error { return wsjson.Write(ctx, ws, f) }
	if err := s.responder.Respond(ctx, q.Query, emit); err != nil {
		s.log.Warn("responding", "query", q.Query, "error", err)
		if werr := emit(Frame{Error: err.Error(), Done: true}); werr != nil {
			return
		}
		ws.Close(websocket.StatusNormalClosure, "")
		return
	}
	if err := emit(Frame{Done: true}); err != nil {
		return
	}
	ws.Close(websocket.StatusNormalClosure, "")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}
