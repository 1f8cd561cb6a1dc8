package chat

import (
	"fmt"
	"testing"
)

// fold runs frames through Reduce against a local transcript slice.
func fold(turns []Turn, frames ...string) []Turn {
	for _, f := range frames {
		var last *Turn
		if len(turns) > 0 {
			last = &turns[len(turns)-1]
		}
		next, replace := Reduce(last, ParseEvent([]byte(f)))
		if replace {
			turns[len(turns)-1] = next
		} else {
			turns = append(turns, next)
		}
	}
	return turns
}

func TestReduceResponseReplacesText(t *testing.T) {
	turns := fold(nil, `{"response":"A"}`, `{"response":"B"}`)
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	if turns[0].Text != "B" {
		t.Errorf("Text = %q, want %q", turns[0].Text, "B")
	}
	if turns[0].Role != RoleAssistant || turns[0].Sealed {
		t.Errorf("turn = %+v, want open assistant turn", turns[0])
	}
}

func TestReduceAbsentResponseKeepsText(t *testing.T) {
	turns := fold(nil, `{"response":"hello"}`, `{"update":"thinking"}`)
	if turns[0].Text != "hello" {
		t.Errorf("Text = %q, want %q", turns[0].Text, "hello")
	}
	if turns[0].Status != "thinking" {
		t.Errorf("Status = %q, want %q", turns[0].Status, "thinking")
	}

	turns = fold(turns, `{"response":""}`)
	if turns[0].Text != "" {
		t.Errorf("empty response should replace text, got %q", turns[0].Text)
	}
}

func TestReduceResourceThenDone(t *testing.T) {
	turns := fold(nil,
		`{"update":"fetching","pic":[{"size":"small","url":"x"}],"url":"http://a"}`,
		`{"done":true}`,
	)
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	turn := turns[0]
	if !turn.Sealed {
		t.Error("turn should be sealed")
	}
	if turn.Status != "" {
		t.Errorf("Status = %q, want empty", turn.Status)
	}
	if turn.Text != "" {
		t.Errorf("Text = %q, want empty", turn.Text)
	}
	if len(turn.Resources) != 1 {
		t.Fatalf("got %d resources, want 1", len(turn.Resources))
	}
	// update wins over url when both are present.
	if turn.Resources[0].URL != "fetching" {
		t.Errorf("resource URL = %q, want %q", turn.Resources[0].URL, "fetching")
	}
	if turn.Resources[0].ThumbnailURL != "x" {
		t.Errorf("ThumbnailURL = %q, want %q", turn.Resources[0].ThumbnailURL, "x")
	}
}

func TestReduceResourceUpdateIsURL(t *testing.T) {
	turns := fold(nil,
		`{"update":"http://a","pic":[{"size":"small","url":"x"}],"url":"http://a"}`,
		`{"done":true}`,
	)
	r := turns[0].Resources
	if len(r) != 1 || r[0].URL != "http://a" || r[0].ThumbnailURL != "x" {
		t.Errorf("resources = %+v", r)
	}
}

func TestReduceDuplicateResource(t *testing.T) {
	frame := `{"update":"http://a","headline":"First"}`
	turns := fold(nil, frame, `{"update":"working"}`, `{"update":"http://a","headline":"Second"}`)

	r := turns[0].Resources
	if len(r) != 1 {
		t.Fatalf("got %d resources, want 1", len(r))
	}
	if r[0].Headline != "First" {
		t.Errorf("Headline = %q, first occurrence should win", r[0].Headline)
	}
	if turns[0].Status != "http://a" {
		t.Errorf("Status = %q, want refreshed to known URL", turns[0].Status)
	}
}

func TestReduceResourcesOnlyGrow(t *testing.T) {
	var turns []Turn
	var prev []string
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("http://r/%d", i%7)
		turns = fold(turns, fmt.Sprintf(`{"update":%q,"url":%q}`, url, url))
		cur := turns[0].Resources
		if len(cur) < len(prev) {
			t.Fatalf("resources shrank at step %d", i)
		}
		for j, u := range prev {
			if cur[j].URL != u {
				t.Fatalf("resource %d reordered at step %d: %q != %q", j, i, cur[j].URL, u)
			}
		}
		prev = prev[:0]
		for _, r := range cur {
			prev = append(prev, r.URL)
		}
		if turns[0].Sealed {
			t.Fatal("turn sealed without done")
		}
	}
	if len(prev) != 7 {
		t.Errorf("got %d resources, want 7", len(prev))
	}
}

func TestReduceMalformedFrame(t *testing.T) {
	turns := fold(nil, "plain text")
	if turns[0].Text != "plain text" {
		t.Errorf("Text = %q, want %q", turns[0].Text, "plain text")
	}
	if turns[0].Sealed {
		t.Error("malformed frame must not seal the turn")
	}
}

func TestReduceDoneWithResource(t *testing.T) {
	turns := fold(nil, `{"update":"http://a","url":"http://a","response":"final","done":true}`)
	turn := turns[0]
	if !turn.Sealed || turn.Status != "" {
		t.Errorf("turn = %+v, want sealed with cleared status", turn)
	}
	if len(turn.Resources) != 1 {
		t.Errorf("resource should still be recorded on the terminal event")
	}
	if turn.Text != "final" {
		t.Errorf("Text = %q", turn.Text)
	}
}

func TestReduceAfterSealStartsNewTurn(t *testing.T) {
	turns := fold(nil, `{"response":"one","done":true}`, `{"response":"two"}`)
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Text != "one" || !turns[0].Sealed {
		t.Errorf("first turn mutated: %+v", turns[0])
	}
	if turns[1].Text != "two" || turns[1].Sealed {
		t.Errorf("second turn = %+v", turns[1])
	}
}

func TestReduceAfterUserTurn(t *testing.T) {
	turns := []Turn{{Role: RoleUser, Text: "hi", Sealed: true}}
	turns = fold(turns, `{"response":"hello"}`)
	if len(turns) != 2 || turns[1].Role != RoleAssistant {
		t.Fatalf("turns = %+v", turns)
	}
}

func TestReduceKeepsExpandedFlag(t *testing.T) {
	last := &Turn{Role: RoleAssistant, ResourcesExpanded: true}
	next, replace := Reduce(last, ParseEvent([]byte(`{"response":"x","done":true}`)))
	if !replace {
		t.Fatal("open turn should be replaced")
	}
	if !next.ResourcesExpanded {
		t.Error("ResourcesExpanded reset by event")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	last := &Turn{Role: RoleAssistant, Resources: []Resource{{ID: "1", URL: "http://a"}}}
	Reduce(last, ParseEvent([]byte(`{"update":"http://b","url":"http://b"}`)))
	if len(last.Resources) != 1 {
		t.Errorf("input turn modified: %+v", last.Resources)
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name string
		last *Turn
		want State
	}{
		{"empty", nil, StateIdle},
		{"user", &Turn{Role: RoleUser, Sealed: true}, StateIdle},
		{"open", &Turn{Role: RoleAssistant}, StateOpen},
		{"sealed", &Turn{Role: RoleAssistant, Sealed: true}, StateSealed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(tt.last); got != tt.want {
				t.Errorf("StateOf = %v, want %v", got, tt.want)
			}
		})
	}
}
