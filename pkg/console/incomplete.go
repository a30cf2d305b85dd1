package console

import (
	"regexp"
	"strings"
)

var operatorRe = regexp.MustCompile(`&&|\|\||\|`)

// IsIncompleteInput reports whether input needs a continuation line before
// it can be committed: an unbalanced quote, a dangling &&, || or |, or a
// trailing line-continuation backslash.
func IsIncompleteInput(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}

	if countQuotes(input, '\'')%2 != 0 {
		return true
	}
	if countQuotes(input, '"')%2 != 0 {
		return true
	}

	if locs := operatorRe.FindAllStringIndex(input, -1); len(locs) > 0 {
		tail := input[locs[len(locs)-1][1]:]
		if strings.TrimSpace(tail) == "" {
			return true
		}
	}

	trailing := len(input) - len(strings.TrimRight(input, `\`))
	return trailing%2 == 1
}

// countQuotes counts occurrences of q not preceded by a backslash
func countQuotes(s string, q rune) int {
	n := 0
	prevBackslash := false
	for _, r := range s {
		if r == q && !prevBackslash {
			n++
		}
		prevBackslash = r == '\\'
	}
	return n
}
