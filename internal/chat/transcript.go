package chat

import (
	"strings"
	"sync"
)

// Transcript is the ordered list of turns for one session. At most one
// assistant turn is open and, if present, it is the last turn. Every
// mutation bumps the version and notifies subscribers.
type Transcript struct {
	mu      sync.RWMutex
	turns   []Turn
	version uint64
	err     string

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan uint64
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{subs: make(map[int]chan uint64)}
}

// AppendUser appends a sealed user turn. Blank or whitespace-only text is
// rejected and false is returned.
func (t *Transcript) AppendUser(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	t.mutate(func() {
		t.turns = append(t.turns, Turn{Role: RoleUser, Text: text, Sealed: true})
	})
	return true
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn Turn) {
	t.mutate(func() {
		t.turns = append(t.turns, turn.Clone())
	})
}

// ReplaceLast swaps the last turn for turn. It reports false when the
// transcript is empty.
func (t *Transcript) ReplaceLast(turn Turn) bool {
	ok := false
	t.mutate(func() {
		if len(t.turns) == 0 {
			return
		}
		// The expanded flag is UI state and survives every replacement.
		turn.ResourcesExpanded = t.turns[len(t.turns)-1].ResourcesExpanded
		t.turns[len(t.turns)-1] = turn.Clone()
		ok = true
	})
	return ok
}

// Reconcile runs Reduce against the last turn and stores the result in a
// single step, so a concurrent toggle of the last turn cannot be lost.
func (t *Transcript) Reconcile(ev Event) Turn {
	var out Turn
	t.mutate(func() {
		var last *Turn
		if n := len(t.turns); n > 0 {
			last = &t.turns[n-1]
		}
		next, replace := Reduce(last, ev)
		if replace {
			t.turns[len(t.turns)-1] = next
		} else {
			t.turns = append(t.turns, next)
		}
		out = next.Clone()
	})
	return out
}

// ToggleResources flips the resource panel of turn i. It reports the new
// state and false when i is out of range.
func (t *Transcript) ToggleResources(i int) (expanded, ok bool) {
	t.mutate(func() {
		if i < 0 || i >= len(t.turns) {
			return
		}
		t.turns[i].ResourcesExpanded = !t.turns[i].ResourcesExpanded
		expanded, ok = t.turns[i].ResourcesExpanded, true
	})
	return expanded, ok
}

// Last returns a copy of the last turn.
func (t *Transcript) Last() (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1].Clone(), true
}

// Turns returns a deep copy of all turns.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	for i := range t.turns {
		out[i] = t.turns[i].Clone()
	}
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Version returns the mutation counter.
func (t *Transcript) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// State reports the state of the current exchange.
func (t *Transcript) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.turns) == 0 {
		return StateIdle
	}
	return StateOf(&t.turns[len(t.turns)-1])
}

// SetError records a session-level error message. Turns are untouched.
func (t *Transcript) SetError(msg string) {
	t.mutate(func() { t.err = msg })
}

// ClearError removes the session-level error message.
func (t *Transcript) ClearError() {
	t.mutate(func() { t.err = "" })
}

// Error returns the session-level error message, if any.
func (t *Transcript) Error() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Subscribe returns a channel that receives the version after each
// mutation. bufSize controls the channel buffer; slow consumers miss
// versions but can always read the latest state.
func (t *Transcript) Subscribe(bufSize int) (int, <-chan uint64) {
	ch := make(chan uint64, bufSize)
	t.subsMu.Lock()
	id := t.nextSubID
	t.nextSubID++
	t.subs[id] = ch
	t.subsMu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (t *Transcript) Unsubscribe(id int) {
	t.subsMu.Lock()
	if ch, ok := t.subs[id]; ok {
		delete(t.subs, id)
		close(ch)
	}
	t.subsMu.Unlock()
}

func (t *Transcript) mutate(fn func()) {
	t.mu.Lock()
	fn()
	t.version++
	v := t.version
	t.mu.Unlock()

	t.subsMu.Lock()
	for _, ch := range t.subs {
		select {
		case ch <- v:
		default:
		}
	}
	t.subsMu.Unlock()
}
