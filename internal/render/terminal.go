// Package render turns assistant text into terminal or HTML output and
// derives display strings for attached resources.
package render

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown for the TUI with glamour. Rendering never fails:
// on any renderer error the plain text is returned.
type Terminal struct {
	r   *glamour.TermRenderer
	log *slog.Logger
}

// NewTerminal builds a renderer. style is a glamour style name ("dark",
// "light", "notty") or "auto"; wrap <= 0 disables word wrapping.
func NewTerminal(style string, wrap int, log *slog.Logger) *Terminal {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		log.Warn("creating markdown renderer", "style", style, "error", err)
		r = nil
	}
	return &Terminal{r: r, log: log}
}

// Render returns md styled for the terminal.
func (t *Terminal) Render(md string) (out string) {
	if t == nil || t.r == nil || strings.TrimSpace(md) == "" {
		return md
	}
	defer func() {
		if p := recover(); p != nil {
			t.log.Warn("markdown renderer panicked", "panic", p)
			out = md
		}
	}()
	s, err := t.r.Render(md)
	if err != nil {
		t.log.Warn("rendering markdown", "error", err)
		return md
	}
	return strings.Trim(s, "\n")
}
