package chat

import (
	"encoding/json"
	"testing"
)

func TestBestImage(t *testing.T) {
	tests := []struct {
		name string
		pic  string
		want string
	}{
		{"absent", ``, ""},
		{"null", `null`, ""},
		{"list small", `[{"size":"large","url":"l"},{"size":"SMALL","url":"s"},{"size":"thumb","url":"t"}]`, "s"},
		{"list thumb", `[{"size":"large","url":"l"},{"size":"Thumb","url":"t"}]`, "t"},
		{"list first", `[{"size":"large","url":"l"},{"size":"xl","url":"x"}]`, "l"},
		{"list small without url", `[{"size":"small"},{"size":"thumb","url":"t"}]`, "t"},
		{"list numeric size", `[{"size":3,"url":"a"},{"size":"small","url":"s"}]`, "s"},
		{"empty list", `[]`, ""},
		{"object small", `{"small":"s","thumb":"t","url":"u","src":"x"}`, "s"},
		{"object thumb", `{"thumb":"t","url":"u"}`, "t"},
		{"object url", `{"url":"u","src":"x"}`, "u"},
		{"object src", `{"src":"x"}`, "x"},
		{"object empty small", `{"small":"","src":"x"}`, "x"},
		{"object none", `{"alt":"a"}`, ""},
		{"string", `"http://img"`, ""},
		{"number", `42`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestImage(json.RawMessage(tt.pic)); got != tt.want {
				t.Errorf("BestImage(%s) = %q, want %q", tt.pic, got, tt.want)
			}
		})
	}
}

func TestExtractResourceClassification(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		ok    bool
		url   string
	}{
		{"status only", `{"update":"Thinking..."}`, false, ""},
		{"no update", `{"url":"http://a","headline":"h"}`, false, ""},
		{"empty update", `{"update":"","url":"http://a"}`, false, ""},
		{"with url", `{"update":"http://a","url":"http://b"}`, true, "http://a"},
		{"with headline", `{"update":"http://a","headline":"Apple"}`, true, "http://a"},
		{"with pic", `{"update":"http://a","pic":{"src":"i"}}`, true, "http://a"},
		{"null pic", `{"update":"http://a","pic":null}`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ExtractResource(ParseEvent([]byte(tt.frame)))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && res.URL != tt.url {
				t.Errorf("URL = %q, want %q", res.URL, tt.url)
			}
		})
	}
}

func TestExtractResourceFields(t *testing.T) {
	res, ok := ExtractResource(ParseEvent([]byte(
		`{"update":"http://news/apple-beats-estimates","headline":"Apple beats","pic":[{"size":"thumb","url":"t"},{"size":"large","url":"l"}]}`)))
	if !ok {
		t.Fatal("expected resource")
	}
	if res.Headline != "Apple beats" {
		t.Errorf("Headline = %q", res.Headline)
	}
	if res.ThumbnailURL != "t" {
		t.Errorf("ThumbnailURL = %q, want %q", res.ThumbnailURL, "t")
	}
	if len(res.Images) != 2 || res.Images[1].URL != "l" {
		t.Errorf("Images = %+v", res.Images)
	}
	if got := BestCandidate(res.Images); got != res.ThumbnailURL {
		t.Errorf("re-derived thumbnail %q != stored %q", got, res.ThumbnailURL)
	}

	// Object payloads keep no candidate list.
	res, _ = ExtractResource(ParseEvent([]byte(`{"update":"http://a","pic":{"small":"s"}}`)))
	if res.Images != nil || res.ThumbnailURL != "s" {
		t.Errorf("object pic resource = %+v", res)
	}
}

func TestExtractResourceUniqueIDs(t *testing.T) {
	ev := ParseEvent([]byte(`{"update":"http://a","url":"http://a"}`))
	a, _ := ExtractResource(ev)
	b, _ := ExtractResource(ev)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q should be distinct and non-empty", a.ID, b.ID)
	}
}
