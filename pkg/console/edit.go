package console

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alantheprice/localecho/pkg/keys"
	"github.com/alantheprice/localecho/pkg/layout"
)

var lineBreakRe = regexp.MustCompile(`[\r\n]+`)

// handleData consumes one chunk of raw terminal input
func (e *Engine) handleData(data string) {
	e.mu.Lock()
	defer e.unlock()

	if e.state.hasChar() {
		req := e.state.char
		e.state = e.state.withoutChar()
		e.write("\r\n")
		e.view = view{}
		req.resolve(data)
		// text held back while the char prompt was up belongs to this line
		if ta := e.typeahead; ta != "" && e.state.hasLine() && !e.state.hasChar() {
			e.typeahead = ""
			e.feed(ta)
		}
		return
	}

	if !e.state.hasLine() {
		if isBurst(data) {
			for _, r := range lineBreakRe.ReplaceAllString(data, "\r") {
				e.emit(EventKeypress, keys.Decode(string(r)))
			}
			return
		}
		e.emit(EventKeypress, keys.Decode(data))
		return
	}

	if isBurst(data) {
		e.feed(lineBreakRe.ReplaceAllString(data, "\r"))
		return
	}
	e.handleUnit(data)
}

// isBurst reports whether data holds more than one key: a paste, or a
// short chunk mixing text with control keys such as "a\r". Escape
// sequences and short printable runs are single units.
func isBurst(data string) bool {
	if strings.HasPrefix(data, "\x1b") {
		return false
	}
	n := utf8.RuneCountInString(data)
	if n > 3 {
		return true
	}
	return n > 1 && strings.IndexFunc(data, isControl) >= 0
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// feed replays text one rune at a time. Whatever is left once the read
// completes, or while a char prompt is up, is kept as typeahead.
func (e *Engine) feed(text string) {
	runes := []rune(text)
	for i, r := range runes {
		if !e.state.hasLine() || e.state.hasChar() {
			e.typeahead += string(runes[i:])
			return
		}
		e.handleUnit(string(r))
	}
}

// handleUnit applies a single decoded key or character to the input
func (e *Engine) handleUnit(data string) {
	res := keys.Decode(data)
	k := res.Key
	if k == nil {
		e.insert(res.Text())
		return
	}
	if e.eraseCtrlH && data == "\b" {
		k.Ctrl = false
	}

	switch {
	case k.Name == "up":
		if value, ok := e.history.Previous(); ok {
			e.setInput(value)
		}
	case k.Name == "down":
		value, _ := e.history.Next()
		e.setInput(value)

	case k.Name == "left" && (k.Meta || k.Ctrl), k.Name == "b" && k.Meta:
		e.setCursor(layout.ClosestLeftBoundary(string(e.input), e.cursor))
	case k.Name == "right" && (k.Meta || k.Ctrl), k.Name == "f" && k.Meta:
		e.setCursor(layout.ClosestRightBoundary(string(e.input), e.cursor))
	case k.Name == "left":
		e.setCursor(e.cursor - 1)
	case k.Name == "right":
		e.setCursor(e.cursor + 1)
	case k.Name == "home", k.Name == "a" && k.Ctrl:
		e.setCursor(0)
	case k.Name == "end", k.Name == "e" && k.Ctrl:
		e.setCursor(len(e.input))

	case k.Name == "delete":
		e.deleteRange(e.cursor, e.cursor+1)
	case k.Name == "backspace" && (k.Ctrl || k.Meta):
		e.deleteRange(layout.ClosestLeftBoundary(string(e.input), e.cursor), e.cursor)
	case k.Name == "backspace":
		e.deleteRange(e.cursor-1, e.cursor)

	case k.Name == "enter":
		if IsIncompleteInput(string(e.input)) {
			e.insert("\n")
		} else {
			e.commit()
		}
	case k.Name == "tab" && !k.Shift:
		e.autocomplete()
	case k.Name == "c" && k.Ctrl:
		e.interrupt()
	case k.Name == "l" && k.Ctrl:
		e.clearTerminal()

	case k.Name == "", !k.Ctrl && !k.Meta && res.Char != "":
		// unrecognized sequences and plain characters are typed as text
		e.insert(res.Text())
	}
}

// commit completes the active read with the current input
func (e *Engine) commit() {
	line := string(e.input)
	req := e.state.line

	e.setCursor(len(e.input))
	e.write("\r\n")
	e.view = view{}
	e.state = e.state.withoutLine()
	e.input = nil
	e.cursor = 0

	if e.history.Push(line) {
		e.emit(EventHistory, line)
	}
	e.emit(EventLine, line)
	req.pending.settle(line, nil)
}

// interrupt abandons the current input and starts over on a fresh prompt
func (e *Engine) interrupt() {
	e.setCursor(len(e.input))
	e.write("^C\r\n")
	e.view = view{}
	e.input = nil
	e.cursor = 0
	e.history.Rewind()
	e.redraw()
	e.emit(EventSIGINT, nil)
}

// handleResize redraws the prompt for the new terminal size
func (e *Engine) handleResize(cols, rows int) {
	e.mu.Lock()
	defer e.unlock()

	if e.view.shown {
		// clear using the geometry it was drawn with
		e.write("\r" + CursorUpSeq(e.view.cursor.Row) + ClearScreenDownSeq)
		e.view = view{}
	}
	e.cols, e.rows = cols, rows
	e.redraw()
}
