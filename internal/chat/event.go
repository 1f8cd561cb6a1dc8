package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ParseEvent decodes one inbound frame. A frame that is not a JSON object is
// treated as plain response text with the exchange left open; parsing never
// fails.
func ParseEvent(raw []byte) Event {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		text := string(raw)
		return Event{Response: &text}
	}

	var ev Event
	if v, ok := stringValue(fields["response"]); ok {
		ev.Response = &v
	}
	ev.Update = textValue(fields["update"])
	ev.URL = textValue(fields["url"])
	ev.Headline = textValue(fields["headline"])
	ev.Error = textValue(fields["error"])
	if pic := fields["pic"]; truthy(pic) {
		ev.Pic = pic
	}
	ev.Done = truthy(fields["done"])
	return ev
}

// stringValue renders a JSON scalar as display text. ok is false when the
// field is absent or null.
func stringValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw), true
		}
		return buf.String(), true
	default:
		// Numbers and booleans keep their literal spelling.
		return string(raw), true
	}
}

// textValue is stringValue for fields where an empty string means absent.
func textValue(raw json.RawMessage) string {
	s, _ := stringValue(raw)
	return s
}

// truthy applies loose truthiness to a raw JSON value: absent, null, false,
// zero and the empty string are false; everything else, including empty
// arrays and objects, is true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
	return true
}
