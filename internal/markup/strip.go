package markup

import (
	"regexp"
	"strings"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)
)

// Strip removes tags from a markup fragment, replaces entity references with
// a space and collapses whitespace.
func Strip(fragment string) string {
	s := tagPattern.ReplaceAllString(fragment, "")
	s = entityPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts the words of a markup fragment after stripping.
func WordCount(fragment string) int {
	return len(strings.Fields(Strip(fragment)))
}
