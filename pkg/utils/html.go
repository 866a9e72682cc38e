package utils

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML drops every tag from s and returns the unescaped text content.
// Naver search titles wrap the matched term in <b> tags.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF on a clean end; anything else is malformed input, keep what was read.
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
