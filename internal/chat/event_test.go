package chat

import "testing"

func TestParseEvent(t *testing.T) {
	ev := ParseEvent([]byte(`{"response":"hi","update":"u","url":"http://a","headline":"h","pic":[],"done":true,"error":"boom"}`))
	if ev.Response == nil || *ev.Response != "hi" {
		t.Errorf("Response = %v", ev.Response)
	}
	if ev.Update != "u" || ev.URL != "http://a" || ev.Headline != "h" || ev.Error != "boom" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.HasPic() {
		t.Error("empty list pic should count as present")
	}
	if !ev.Done {
		t.Error("Done = false")
	}
}

func TestParseEventFallback(t *testing.T) {
	for _, raw := range []string{"plain text", `["a","b"]`, `"quoted"`, `42`, ``} {
		ev := ParseEvent([]byte(raw))
		if ev.Response == nil || *ev.Response != raw {
			t.Errorf("ParseEvent(%q).Response = %v, want raw text", raw, ev.Response)
		}
		if ev.Done {
			t.Errorf("ParseEvent(%q) should not be done", raw)
		}
	}
}

func TestParseEventScalars(t *testing.T) {
	tests := []struct {
		frame    string
		response *string
		done     bool
	}{
		{`{"response":null}`, nil, false},
		{`{"response":12.5}`, strPtr("12.5"), false},
		{`{"response":true}`, strPtr("true"), false},
		{`{"response":""}`, strPtr(""), false},
		{`{"done":1}`, nil, true},
		{`{"done":0}`, nil, false},
		{`{"done":"yes"}`, nil, true},
		{`{"done":""}`, nil, false},
		{`{"done":null}`, nil, false},
	}
	for _, tt := range tests {
		ev := ParseEvent([]byte(tt.frame))
		switch {
		case tt.response == nil && ev.Response != nil:
			t.Errorf("%s: Response = %q, want absent", tt.frame, *ev.Response)
		case tt.response != nil && (ev.Response == nil || *ev.Response != *tt.response):
			t.Errorf("%s: Response = %v, want %q", tt.frame, ev.Response, *tt.response)
		}
		if ev.Done != tt.done {
			t.Errorf("%s: Done = %v, want %v", tt.frame, ev.Done, tt.done)
		}
	}
}

func strPtr(s string) *string { return &s }
