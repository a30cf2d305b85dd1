package completion

import (
	"strings"

	shlex "github.com/anmitsu/go-shlex"
)

// Tokenize splits input the way a POSIX shell would. Input with an
// unterminated quote is split as if the quote were closed.
func Tokenize(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	for _, suffix := range []string{"", "'", "\""} {
		if tokens, err := shlex.Split(input+suffix, true); err == nil {
			return tokens
		}
	}
	return strings.Fields(input)
}

// HasTrailingWhitespace reports whether input ends in an unescaped space or tab
func HasTrailingWhitespace(input string) bool {
	r := []rune(input)
	n := len(r)
	if n < 2 {
		return false
	}
	last := r[n-1]
	return (last == ' ' || last == '\t') && r[n-2] != '\\'
}

// LastToken returns the token being completed, or "" when the input is
// blank or ends in whitespace
func LastToken(input string) string {
	if strings.TrimSpace(input) == "" || HasTrailingWhitespace(input) {
		return ""
	}
	tokens := Tokenize(input)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
