package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripHTML removes every tag from model output before it is stored, so a
// reply can be rendered as markdown later without carrying raw HTML.
func StripHTML(s string) string {
	text := strictPolicy.Sanitize(s)
	// StrictPolicy escapes entities, stored text should stay plain
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}
