package templates

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\*\*\*([A-Z0-9_]+)\*\*\*`)

const (
	tokenDelim   = "***"
	escapedDelim = "* * *"
)

// Render replaces every ***NAME*** token in src with values[NAME]. Tokens
// without a value render as empty. A "***" inside a value is spaced out so
// resource names never read as tokens in the output.
func Render(src string, values map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(src, func(tok string) string {
		return strings.ReplaceAll(values[tokenPattern.FindStringSubmatch(tok)[1]], tokenDelim, escapedDelim)
	})
}

// Tokens returns the distinct token names in src in order of appearance.
func Tokens(src string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
