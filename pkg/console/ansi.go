package console

import (
	"fmt"
	"strings"
)

// ANSI escape sequence helpers for consistent terminal control.

const (
	csi = "\033["
	osc = "\033]"
	bel = "\a"
)

// CursorUpSeq moves the cursor up n rows. n <= 0 yields an empty string.
func CursorUpSeq(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(csi+"%dA", n)
}

// CursorDownSeq moves the cursor down n rows
func CursorDownSeq(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(csi+"%dB", n)
}

// CursorForwardSeq moves the cursor right n columns
func CursorForwardSeq(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(csi+"%dC", n)
}

// CursorBackwardSeq moves the cursor left n columns
func CursorBackwardSeq(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(csi+"%dD", n)
}

// CursorLeftSeq moves the cursor to the first column
func CursorLeftSeq() string { return csi + "G" }

// CursorToSeq moves the cursor to the zero-based column x and, when y is
// non-negative, to the zero-based row y.
func CursorToSeq(x, y int) string {
	if y < 0 {
		return fmt.Sprintf(csi+"%dG", x+1)
	}
	return MoveCursorSeq(x+1, y+1)
}

// MoveCursorSeq returns the escape sequence to move the cursor to (x,y)
// Note: ANSI uses row (y) first, then column (x).
func MoveCursorSeq(x, y int) string {
	return fmt.Sprintf(csi+"%d;%dH", y, x)
}

// RelativeMoveSeq moves the cursor by dx columns and dy rows
func RelativeMoveSeq(dx, dy int) string {
	var b strings.Builder
	if dx < 0 {
		b.WriteString(CursorBackwardSeq(-dx))
	} else {
		b.WriteString(CursorForwardSeq(dx))
	}
	if dy < 0 {
		b.WriteString(CursorUpSeq(-dy))
	} else {
		b.WriteString(CursorDownSeq(dy))
	}
	return b.String()
}

// Cursor save/restore, visibility and line stepping
const (
	CursorSaveSeq     = "\0337"
	CursorRestoreSeq  = "\0338"
	CursorHideSeq     = csi + "?25l"
	CursorShowSeq     = csi + "?25h"
	CursorNextLineSeq = csi + "E"
	CursorPrevLineSeq = csi + "F"
)

// ClearLineSeq returns the escape sequence to clear the entire current line.
func ClearLineSeq() string { return csi + "2K" }

// ClearToEndOfLineSeq returns the escape sequence to clear from cursor to end of line.
func ClearToEndOfLineSeq() string { return csi + "K" }

// ClearToStartOfLineSeq clears from the start of the line to the cursor
func ClearToStartOfLineSeq() string { return csi + "1K" }

// ClearLineDirSeq clears to the left of the cursor when dir < 0, to the
// right when dir > 0 and the whole line otherwise.
func ClearLineDirSeq(dir int) string {
	switch {
	case dir < 0:
		return ClearToStartOfLineSeq()
	case dir > 0:
		return ClearToEndOfLineSeq()
	}
	return ClearLineSeq()
}

// ClearLinesSeq erases n lines upward from the current one and leaves the
// cursor in the first column of the topmost.
func ClearLinesSeq(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(ClearLineSeq())
		if i < n-1 {
			b.WriteString(CursorUpSeq(1))
		}
	}
	if n > 0 {
		b.WriteString(CursorLeftSeq())
	}
	return b.String()
}

// Screen operations
const (
	ClearScreenDownSeq = csi + "J"
	ClearScreenUpSeq   = csi + "1J"
	EraseScreenSeq     = csi + "2J"
	ScrollUpSeq        = csi + "S"
	ScrollDownSeq      = csi + "T"
	// ClearScreenSeq resets the terminal
	ClearScreenSeq = "\033c"
	BeepSeq        = bel
)

// clearTerminalSeq wipes the screen and scrollback and homes the cursor
const clearTerminalSeq = EraseScreenSeq + csi + "3J" + csi + "H"

// LinkSeq wraps text in an OSC 8 hyperlink to url
func LinkSeq(text, url string) string {
	return osc + "8;;" + url + bel + text + osc + "8;;" + bel
}
