package chat

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// newResourceID is swapped in tests that need stable identifiers.
var newResourceID = func() string { return uuid.NewString() }

// ExtractResource turns a resource-bearing event into a Resource. It returns
// false for status-only events and for events that do not resolve to a URL.
// The ID is freshly generated on every call.
func ExtractResource(ev Event) (Resource, bool) {
	if !ev.ResourceBearing() {
		return Resource{}, false
	}
	url := ev.Update
	if url == "" {
		url = ev.URL
	}
	if url == "" {
		return Resource{}, false
	}
	return Resource{
		ID:           newResourceID(),
		URL:          url,
		Headline:     ev.Headline,
		ThumbnailURL: BestImage(ev.Pic),
		Images:       imageCandidates(ev.Pic),
	}, true
}

// BestImage picks a thumbnail from a raw pic payload. For a list it prefers
// the entry sized "small", then "thumb", then the first entry. For a single
// object it prefers the small, thumb, url and src fields in that order.
// Anything else yields "".
func BestImage(pic json.RawMessage) string {
	pic = bytes.TrimSpace(pic)
	if len(pic) == 0 {
		return ""
	}
	switch pic[0] {
	case '[':
		var entries []map[string]json.RawMessage
		if err := json.Unmarshal(pic, &entries); err != nil {
			return ""
		}
		return BestCandidate(toCandidates(entries))
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(pic, &obj); err != nil {
			return ""
		}
		for _, key := range []string{"small", "thumb", "url", "src"} {
			if v := textValue(obj[key]); v != "" && truthy(obj[key]) {
				return v
			}
		}
	}
	return ""
}

// BestCandidate applies the list policy of BestImage to already decoded
// candidates, so a stored resource can re-derive its thumbnail.
func BestCandidate(cands []ImageCandidate) string {
	if len(cands) == 0 {
		return ""
	}
	for _, size := range []string{"small", "thumb"} {
		for _, c := range cands {
			if strings.ToLower(c.Size) == size {
				if c.URL != "" {
					return c.URL
				}
				break
			}
		}
	}
	return cands[0].URL
}

// imageCandidates keeps the raw candidate list for list-shaped payloads only.
func imageCandidates(pic json.RawMessage) []ImageCandidate {
	pic = bytes.TrimSpace(pic)
	if len(pic) == 0 || pic[0] != '[' {
		return nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(pic, &entries); err != nil {
		return nil
	}
	return toCandidates(entries)
}

func toCandidates(entries []map[string]json.RawMessage) []ImageCandidate {
	out := make([]ImageCandidate, 0, len(entries))
	for _, e := range entries {
		c := ImageCandidate{URL: textValue(e["url"])}
		// A non-string size never matches a tag.
		if s := bytes.TrimSpace(e["size"]); len(s) > 0 && s[0] == '"' {
			c.Size = textValue(e["size"])
		}
		out = append(out, c)
	}
	return out
}
