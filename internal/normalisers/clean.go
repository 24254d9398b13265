package normalisers

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Clean normalises whitespace in extracted text.
// Non-breaking spaces become spaces, runs of spaces and tabs collapse to one
// space, three or more newlines collapse to two, and the result is trimmed.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
