// Package layout maps rendered prompt text onto terminal rows and columns.
//
// All offsets are rune offsets into the text after ANSI escape sequences
// have been stripped, so styled prompts measure the same as plain ones.
// A row wraps when the column reaches maxCols; a maxCols of zero or less
// disables wrapping.
package layout

import (
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/width"
)

// Position is a zero-based column/row location relative to the first
// rendered character.
type Position struct {
	Col int
	Row int
}

// StripANSI removes escape sequences, leaving only printable text
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// RuneWidth returns the number of terminal cells occupied by r
func RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// VisibleLen returns the number of runes left once escapes are stripped
func VisibleLen(s string) int {
	return len([]rune(StripANSI(s)))
}

// StringWidth returns the number of cells the visible text occupies on a
// single row
func StringWidth(s string) int {
	n := 0
	for _, r := range StripANSI(s) {
		n += RuneWidth(r)
	}
	return n
}

// OffsetToColRow walks the visible text up to offset, wrapping on explicit
// newlines and whenever a rune no longer fits on the row. A row filled
// exactly leaves the position at the start of the next row, except when
// the next rune is a newline; then it stays on the last cell.
func OffsetToColRow(text string, offset, maxCols int) Position {
	runes := []rune(StripANSI(text))
	if offset > len(runes) {
		offset = len(runes)
	}

	var pos Position
	pending := false
	for i := 0; i < offset; i++ {
		r := runes[i]
		if r == '\n' {
			pos.Col = 0
			pos.Row++
			pending = false
			continue
		}
		if pending {
			pos.Col = 0
			pos.Row++
			pending = false
		}
		w := RuneWidth(r)
		if maxCols > 0 && pos.Col+w > maxCols && pos.Col > 0 {
			// wide rune that does not fit is pushed to the next row
			pos.Col = 0
			pos.Row++
		}
		pos.Col += w
		if maxCols > 0 && pos.Col >= maxCols {
			pending = true
		}
	}

	if pending {
		if offset < len(runes) && runes[offset] == '\n' {
			pos.Col = maxCols - 1
		} else {
			pos.Col = 0
			pos.Row++
		}
	}
	return pos
}

// CountLines returns the number of rows the text occupies. Text filling its
// last row exactly counts the next row as well, where the cursor lands.
func CountLines(text string, maxCols int) int {
	return OffsetToColRow(text, VisibleLen(text), maxCols).Row + 1
}

// EndsOnWrap reports whether the last rendered rune filled its row exactly,
// leaving a real terminal in its pending-wrap state.
func EndsOnWrap(text string, maxCols int) bool {
	runes := []rune(StripANSI(text))
	if len(runes) == 0 || maxCols <= 0 || runes[len(runes)-1] == '\n' {
		return false
	}
	return OffsetToColRow(text, len(runes), maxCols).Col == 0
}

// IsWordRune reports whether r belongs to a word for boundary navigation
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordBoundaries lists the start (leftSide) or end offsets of every
// maximal run of word runes in s.
func WordBoundaries(s string, leftSide bool) []int {
	var out []int
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if !IsWordRune(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && IsWordRune(runes[i]) {
			i++
		}
		if leftSide {
			out = append(out, start)
		} else {
			out = append(out, i)
		}
	}
	return out
}

// ClosestLeftBoundary returns the nearest word start strictly before offset, or 0
func ClosestLeftBoundary(s string, offset int) int {
	found := 0
	for _, b := range WordBoundaries(s, true) {
		if b >= offset {
			break
		}
		found = b
	}
	return found
}

// ClosestRightBoundary returns the nearest word end strictly after offset,
// or the length of s
func ClosestRightBoundary(s string, offset int) int {
	for _, b := range WordBoundaries(s, false) {
		if b > offset {
			return b
		}
	}
	return len([]rune(s))
}
