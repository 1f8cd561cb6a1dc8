package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tickerchat/internal/chat"
)

// Frame is one outbound event. Response is cumulative: each frame carries
// the full answer so far.
type Frame struct {
	Response *string               `json:"response,omitempty"`
	Update   string                `json:"update,omitempty"`
	Headline string                `json:"headline,omitempty"`
	Pic      []chat.ImageCandidate `json:"pic,omitempty"`
	ID       string                `json:"id,omitempty"`
	Done     bool                  `json:"done,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Responder produces the frames answering one query. The closing done frame
// is sent by the server, not the responder.
type Responder interface {
	Respond(ctx context.Context, query string, emit func(Frame) error) error
}

// Article is a canned resource served by ScriptResponder.
type Article struct {
	URL      string
	Headline string
	Images   []chat.ImageCandidate
}

// ScriptResponder answers every query the same way: a status update, one
// resource frame per article, then the answer streamed word by word.
type ScriptResponder struct {
	Articles []Article
	Answer   func(query string) string
	Delay    time.Duration // between frames
}

// Respond implements Responder.
func (s *ScriptResponder) Respond(ctx context.Context, query string, emit func(Frame) error) error {
	steps := []Frame{{Update: "Searching news for " + strings.TrimSpace(query)}}
	for _, a := range s.Articles {
		steps = append(steps, Frame{
			Update:   a.URL,
			Headline: a.Headline,
			Pic:      a.Images,
			ID:       uuid.NewString(),
		})
	}
	steps = append(steps, Frame{Update: "Writing answer"})

	answer := fmt.Sprintf("No answer available for %q.", query)
	if s.Answer != nil {
		answer = s.Answer(query)
	}
	var sofar string
	for i, w := range strings.Fields(answer) {
		if i > 0 {
			sofar += " "
		}
		sofar += w
		text := sofar
		steps = append(steps, Frame{Response: &text})
	}

	for _, f := range steps {
		if err := s.wait(ctx); err != nil {
			return err
		}
		if err := emit(f); err != nil {
			return fmt.Errorf("emitting frame: %w", err)
		}
	}
	return nil
}

func (s *ScriptResponder) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.Delay):
		return nil
	}
}
