package extract

import (
	"html"
	"regexp"
	"strings"
)

var (
	lineBreakPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockClosePattern = regexp.MustCompile(`(?i)</(?:p|li|div)\s*>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	horizontalSpace   = regexp.MustCompile(`[ \t\r\f\v]+`)
	spacedNewline     = regexp.MustCompile(` *\n *`)
	extraNewlines     = regexp.MustCompile(`\n{3,}`)
)

// StripTags converts an HTML fragment to plain text. Line breaks and closing
// paragraph, list item and div tags become newlines, every other tag is
// dropped, entities are decoded with non-breaking spaces turned into regular
// spaces, runs of horizontal whitespace collapse to one space and three or
// more consecutive newlines collapse to two.
func StripTags(fragment string) string {
	s := lineBreakPattern.ReplaceAllString(fragment, "\n")
	s = blockClosePattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = spacedNewline.ReplaceAllString(s, "\n")
	s = extraNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CollapseSpace replaces every whitespace run with a single space and trims
func CollapseSpace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
