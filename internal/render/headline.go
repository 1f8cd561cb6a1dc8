package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Headline derives a title from a URL's last path segment: query and
// fragment are dropped and each hyphen-separated word is capitalized.
//
//	https://news.example.com/markets/apple-beats-estimates?ref=x -> "Apple Beats Estimates"
func Headline(url string) string {
	if url == "" {
		return ""
	}
	last := url
	for _, seg := range strings.Split(url, "/") {
		if seg != "" {
			last = seg
		}
	}
	if i := strings.IndexByte(last, '?'); i >= 0 {
		last = last[:i]
	}
	if i := strings.IndexByte(last, '#'); i >= 0 {
		last = last[:i]
	}

	words := strings.Split(last, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size > 0 {
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

// StripScheme removes a leading http:// or https://.
func StripScheme(url string) string {
	for _, p := range []string{"https://", "http://"} {
		if len(url) >= len(p) && strings.EqualFold(url[:len(p)], p) {
			return url[len(p):]
		}
	}
	return url
}
