package console

// Pass-through helpers for callers that drive the terminal around the
// prompt. Anything that moves the cursor or erases text invalidates the
// drawn prompt, so the next edit draws it again in full.

func (e *Engine) writeSeq(seq string, invalidates bool) {
	e.mu.Lock()
	defer e.unlock()
	e.write(seq)
	if invalidates {
		e.view = view{}
	}
}

func (e *Engine) CursorUp(n int)       { e.writeSeq(CursorUpSeq(n), true) }
func (e *Engine) CursorDown(n int)     { e.writeSeq(CursorDownSeq(n), true) }
func (e *Engine) CursorForward(n int)  { e.writeSeq(CursorForwardSeq(n), true) }
func (e *Engine) CursorBackward(n int) { e.writeSeq(CursorBackwardSeq(n), true) }
func (e *Engine) CursorLeft()          { e.writeSeq(CursorLeftSeq(), true) }

// CursorTo moves to column x and, when y >= 0, row y (both zero-based)
func (e *Engine) CursorTo(x, y int) { e.writeSeq(CursorToSeq(x, y), true) }

// MoveCursor moves by dx columns and dy rows
func (e *Engine) MoveCursor(dx, dy int) { e.writeSeq(RelativeMoveSeq(dx, dy), true) }

func (e *Engine) CursorSavePosition()    { e.writeSeq(CursorSaveSeq, false) }
func (e *Engine) CursorRestorePosition() { e.writeSeq(CursorRestoreSeq, true) }
func (e *Engine) CursorNextLine()        { e.writeSeq(CursorNextLineSeq, true) }
func (e *Engine) CursorPrevLine()        { e.writeSeq(CursorPrevLineSeq, true) }
func (e *Engine) CursorHide()            { e.writeSeq(CursorHideSeq, false) }
func (e *Engine) CursorShow()            { e.writeSeq(CursorShowSeq, false) }

// ClearLines erases n lines upward from the cursor
func (e *Engine) ClearLines(n int) { e.writeSeq(ClearLinesSeq(n), true) }

func (e *Engine) ClearEndLine()   { e.writeSeq(ClearToEndOfLineSeq(), true) }
func (e *Engine) ClearStartLine() { e.writeSeq(ClearToStartOfLineSeq(), true) }

// ClearLine clears left of the cursor (dir < 0), right of it (dir > 0) or
// the whole line
func (e *Engine) ClearLine(dir int) { e.writeSeq(ClearLineDirSeq(dir), true) }

func (e *Engine) ClearScreenDown() { e.writeSeq(ClearScreenDownSeq, true) }
func (e *Engine) ClearScreenUp()   { e.writeSeq(ClearScreenUpSeq, true) }
func (e *Engine) EraseScreen()     { e.writeSeq(EraseScreenSeq, true) }
func (e *Engine) ScrollUp()        { e.writeSeq(ScrollUpSeq, true) }
func (e *Engine) ScrollDown()      { e.writeSeq(ScrollDownSeq, true) }
func (e *Engine) ClearScreen()     { e.writeSeq(ClearScreenSeq, true) }
func (e *Engine) Beep()            { e.writeSeq(BeepSeq, false) }

// Link returns text as a terminal hyperlink to url
func (e *Engine) Link(text, url string) string {
	return LinkSeq(text, url)
}
