package news

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<.*?>`)

// Normalize strips <...> spans, decodes HTML entities and trims whitespace.
// The steps repeat until the text is stable, so decoded entities that form
// new tags are removed as well and Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	for {
		next := cleanOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func cleanOnce(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}
