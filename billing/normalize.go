package billing

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	colonSpacing  = regexp.MustCompile(`\s*:\s*`)
)

// NormalizeDescription canonicalizes a service-line description for use as
// a tracking key: lowercase, runs of whitespace collapsed to one space, and
// no spacing around colons. Uploads vary in casing and spacing for the same
// contract line.
func NormalizeDescription(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = colonSpacing.ReplaceAllString(s, ":")
	return s
}

// MatchKey reduces a description to the form stored in the contract catalog
// match column: normalized, then stripped of spaces and colons entirely.
func MatchKey(s string) string {
	s = NormalizeDescription(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ":", "")
	return s
}
