package parser

import (
	"iter"
	"regexp"
)

var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*["']([^"'#>]+)["']`)

// Regex finds every href attribute value delimited by single or double
// quotes. Values containing '#' never match.
func Regex(doc string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := doc
		for {
			loc := hrefPattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				return
			}
			if !yield(rest[loc[2]:loc[3]]) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}
