// Package chat holds the conversation model and the reconciliation engine
// that folds streamed server events into the transcript's open assistant
// turn.
package chat

import "encoding/json"

// TransportErrorMessage is the session banner shown when the channel fails.
const TransportErrorMessage = "Hmm... something went wrong. Try again later."

// Role identifies who authored a turn.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of the current exchange.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateSealed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateSealed:
		return "sealed"
	default:
		return "unknown"
	}
}

// ImageCandidate is one entry of a list-shaped "pic" payload.
type ImageCandidate struct {
	Size string `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Resource is an external content reference surfaced during an exchange.
// URL is the dedup key within a turn.
type Resource struct {
	ID           string           `json:"id"`
	URL          string           `json:"url"`
	Headline     string           `json:"headline,omitempty"`
	ThumbnailURL string           `json:"thumbnailUrl,omitempty"`
	Images       []ImageCandidate `json:"images,omitempty"`
}

// Turn is one transcript entry. Status is only meaningful while the turn is
// open and is always empty once Sealed is set.
type Turn struct {
	Role              Role       `json:"role"`
	Text              string     `json:"text"`
	Status            string     `json:"status,omitempty"`
	Resources         []Resource `json:"resources,omitempty"`
	Sealed            bool       `json:"sealed"`
	ResourcesExpanded bool       `json:"resourcesExpanded"`
}

// Open reports whether t is an assistant turn still accepting events.
func (t *Turn) Open() bool {
	return t.Role == RoleAssistant && !t.Sealed
}

// HasResource reports whether a resource with the given URL is already
// attached to the turn.
func (t *Turn) HasResource(url string) bool {
	for i := range t.Resources {
		if t.Resources[i].URL == url {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the turn.
func (t Turn) Clone() Turn {
	if t.Resources == nil {
		return t
	}
	res := make([]Resource, len(t.Resources))
	for i, r := range t.Resources {
		if r.Images != nil {
			r.Images = append([]ImageCandidate(nil), r.Images...)
		}
		res[i] = r
	}
	t.Resources = res
	return t
}

// Event is one inbound server update. Every field is optional; the zero
// value of a field means "no change" to that dimension. Response is a
// pointer because an empty string is a valid replacement text.
type Event struct {
	Response *string
	Update   string
	Pic      json.RawMessage
	URL      string
	Headline string
	Done     bool
	Error    string
}

// ResourceBearing reports whether the event references an external
// resource: an update plus at least one of pic, url or headline.
func (e *Event) ResourceBearing() bool {
	return e.Update != "" && (e.HasPic() || e.URL != "" || e.Headline != "")
}

// HasPic reports whether the pic payload is present and truthy.
func (e *Event) HasPic() bool {
	return truthy(e.Pic)
}

// Query is the single frame the client sends when a channel opens.
type Query struct {
	Query string `json:"query"`
}
