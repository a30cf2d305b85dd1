package console

import (
	"strings"

	"github.com/alantheprice/localecho/pkg/layout"
)

// view records what the engine last drew for the active prompt. The
// prompt region always starts in the first column.
type view struct {
	shown  bool
	text   string
	cursor layout.Position
}

// promptText renders input with the line prompt in front and the
// continuation prompt after every embedded newline
func (e *Engine) promptText(input string) string {
	return e.state.line.prompt + strings.ReplaceAll(input, "\n", "\n"+e.state.line.continuation)
}

// cursorOffset maps an input offset to an offset into the visible prompt text
func (e *Engine) cursorOffset(cursor int) int {
	return layout.VisibleLen(e.promptText(string(e.input[:cursor])))
}

// redraw clears the previously drawn prompt region, if any, and draws the
// prompt and input again with the cursor in place
func (e *Engine) redraw() {
	if !e.state.hasLine() {
		return
	}
	if e.view.shown {
		e.write("\r" + CursorUpSeq(e.view.cursor.Row) + ClearScreenDownSeq)
	}

	text := e.promptText(string(e.input))
	end := e.writeText(text)
	target := layout.OffsetToColRow(text, e.cursorOffset(e.cursor), e.cols)
	e.write(moveSeq(end, target))
	e.view = view{shown: true, text: text, cursor: target}
}

// writeText writes text and returns where the cursor ends up. A last row
// filled exactly is followed by CRLF so the terminal leaves its
// pending-wrap state.
func (e *Engine) writeText(text string) layout.Position {
	e.write(strings.ReplaceAll(text, "\n", "\r\n"))
	if layout.EndsOnWrap(text, e.cols) {
		e.write("\r\n")
	}
	return layout.OffsetToColRow(text, layout.VisibleLen(text), e.cols)
}

// setCursor moves the cursor without touching the input
func (e *Engine) setCursor(n int) {
	e.cursor = clamp(n, 0, len(e.input))
	if !e.view.shown {
		e.redraw()
		return
	}
	target := layout.OffsetToColRow(e.view.text, e.cursorOffset(e.cursor), e.cols)
	e.write(moveSeq(e.view.cursor, target))
	e.view.cursor = target
}

// setInput replaces the input and puts the cursor at its end
func (e *Engine) setInput(value string) {
	e.input = []rune(value)
	e.cursor = len(e.input)
	e.redraw()
}

// insert puts text at the cursor. Typing at the end of the input writes
// just the new text as long as it stays on the current row.
func (e *Engine) insert(text string) {
	if text == "" {
		return
	}
	runes := []rune(text)
	atEnd := e.cursor == len(e.input)

	input := make([]rune, 0, len(e.input)+len(runes))
	input = append(input, e.input[:e.cursor]...)
	input = append(input, runes...)
	input = append(input, e.input[e.cursor:]...)
	e.input = input
	e.cursor += len(runes)

	if atEnd && e.view.shown && !strings.ContainsRune(text, '\n') {
		rendered := e.promptText(string(e.input))
		end := layout.OffsetToColRow(rendered, layout.VisibleLen(rendered), e.cols)
		if end.Row == e.view.cursor.Row {
			e.write(text)
			e.view = view{shown: true, text: rendered, cursor: end}
			return
		}
	}
	e.redraw()
}

// deleteRange removes input[from:to] and leaves the cursor at from
func (e *Engine) deleteRange(from, to int) {
	from = clamp(from, 0, len(e.input))
	to = clamp(to, from, len(e.input))
	if from == to {
		return
	}
	e.input = append(e.input[:from:from], e.input[to:]...)
	e.cursor = from
	e.redraw()
}

// moveSeq returns the relative movement from one position to another
func moveSeq(from, to layout.Position) string {
	if from == to {
		return ""
	}

	var b strings.Builder
	if to.Row < from.Row {
		b.WriteString(CursorUpSeq(from.Row - to.Row))
	} else {
		b.WriteString(CursorDownSeq(to.Row - from.Row))
	}
	switch {
	case to.Col == 0:
		b.WriteString("\r")
	case to.Col > from.Col:
		b.WriteString(CursorForwardSeq(to.Col - from.Col))
	case to.Col < from.Col:
		b.WriteString(CursorBackwardSeq(from.Col - to.Col))
	}
	return b.String()
}

// gridRows arranges items row by row into as many columns as fit in width
func gridRows(items []string, padding, width int) []string {
	cell := 0
	for _, item := range items {
		if w := layout.StringWidth(item); w > cell {
			cell = w
		}
	}
	cell += padding

	perRow := 1
	if cell > 0 && width/cell > 1 {
		perRow = width / cell
	}

	var rows []string
	for i := 0; i < len(items); i += perRow {
		var b strings.Builder
		for j := i; j < i+perRow && j < len(items); j++ {
			b.WriteString(items[j])
			b.WriteString(strings.Repeat(" ", cell-layout.StringWidth(items[j])))
		}
		rows = append(rows, b.String())
	}
	return rows
}
