package console

import (
	"io"
	"sync"
)

// Fallback geometry reported before a terminal size is known
const (
	fallbackColumns = 80
	fallbackRows    = 24
)

// Sink is an io.Writer that prints through an Engine, for code written
// against a plain output stream
type Sink struct {
	engine *Engine
}

var _ io.Writer = (*Sink)(nil)

// NewSink creates a sink writing through e
func NewSink(e *Engine) *Sink {
	return &Sink{engine: e}
}

func (s *Sink) Write(p []byte) (int, error) {
	s.engine.Print(string(p))
	return len(p), nil
}

// IsTTY always reports true; the engine speaks ANSI
func (s *Sink) IsTTY() bool { return true }

// Columns returns the terminal width
func (s *Sink) Columns() int {
	cols, _ := s.engine.TermSize()
	if cols <= 0 {
		return fallbackColumns
	}
	return cols
}

// Rows returns the terminal height
func (s *Sink) Rows() int {
	_, rows := s.engine.TermSize()
	if rows <= 0 {
		return fallbackRows
	}
	return rows
}

// Readline offers the question/prompt style of interface on top of an
// Engine
type Readline struct {
	engine *Engine

	mu     sync.Mutex
	prompt string
}

// NewReadline creates an adapter driving e
func NewReadline(e *Engine) *Readline {
	return &Readline{engine: e, prompt: DefaultContinuation}
}

// Question writes query and reads a line
func (r *Readline) Question(query string) (*Pending, error) {
	return r.engine.Read(query)
}

// SetPrompt sets the prompt used by Prompt, updating an active read too
func (r *Readline) SetPrompt(prompt string) {
	r.mu.Lock()
	r.prompt = prompt
	r.mu.Unlock()
	r.engine.SetPrompt(prompt)
}

// GetPrompt returns the prompt used by Prompt
func (r *Readline) GetPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompt
}

// Prompt starts a line read with the configured prompt
func (r *Readline) Prompt() (*Pending, error) {
	return r.engine.Read(r.GetPrompt())
}

// Write prints text through the engine
func (r *Readline) Write(text string) {
	r.engine.Print(text)
}

func (r *Readline) ClearLine(dir int)     { r.engine.ClearLine(dir) }
func (r *Readline) ClearScreenDown()      { r.engine.ClearScreenDown() }
func (r *Readline) CursorTo(x, y int)     { r.engine.CursorTo(x, y) }
func (r *Readline) MoveCursor(dx, dy int) { r.engine.MoveCursor(dx, dy) }

// On subscribes handler to an engine event and returns the subscription ID
func (r *Readline) On(event string, handler func(data interface{})) string {
	return r.engine.Events().On(event, handler)
}

// Off removes a subscription made with On
func (r *Readline) Off(id string) {
	r.engine.Events().Unsubscribe(id)
}
