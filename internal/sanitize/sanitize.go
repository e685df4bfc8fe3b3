package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicy   = newMessagePolicy()
	strictP      = bluemonday.StrictPolicy()
	imgTagRe     = regexp.MustCompile(`(?i)<img[\s>]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// newMessagePolicy builds the policy for chat message bodies: script and
// style are removed, inline event handlers are never in the allow-list, and
// only http/https/mailto URLs survive, which neutralizes javascript: URIs.
// Ordinary formatting markup and images are preserved for rendering.
func newMessagePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AllowAttrs("class").OnElements("span", "p", "div", "pre", "code")
	p.RequireNoFollowOnLinks(true)
	return p
}

// HTML sanitizes a raw message body, keeping renderable markup.
func HTML(raw string) string {
	return strings.TrimSpace(htmlPolicy.Sanitize(raw))
}

// PlainText strips all markup and collapses whitespace. Used for length
// checks and message previews, never for rendering.
func PlainText(html string) string {
	text := strictP.Sanitize(html)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// ContainsImage reports whether the sanitized HTML carries an image tag,
// which lets an image-only message pass the minimum-content check.
func ContainsImage(html string) bool {
	return imgTagRe.MatchString(html)
}

// Truncate shortens a plain-text string for previews.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
