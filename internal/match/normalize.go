// Package match implements header-to-field matching: string normalization,
// similarity scoring, and the prioritized strategy chain that scores one raw
// header against one catalog field. Everything here is a pure function over
// its inputs.
package match

import (
	"regexp"
	"strings"
)

var (
	separatorRun = regexp.MustCompile(`[_\-\s]+`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw header for comparison: lowercase, separator
// runs (underscore, hyphen, whitespace) collapsed to single spaces, "#"
// stripped, residual whitespace collapsed and trimmed. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = separatorRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "#", "")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
