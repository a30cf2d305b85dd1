// Package console implements a local line-editing and echo engine for
// terminals that have no shell behind them. The engine owns the raw input
// stream of a Terminal and reproduces prompt editing, history recall,
// multi-line continuation and completion purely through ANSI output.
package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alantheprice/localecho/pkg/completion"
	"github.com/alantheprice/localecho/pkg/history"
)

// Defaults applied by NewEngine
const (
	DefaultHistorySize            = 10
	DefaultMaxAutocompleteEntries = 100
	DefaultTabWidth               = 4
	DefaultContinuation           = "> "
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	HistorySize            int
	MaxAutocompleteEntries int
	// TabWidth is the number of spaces TAB inserts while no completion
	// handler is registered
	TabWidth int
	// EraseCtrlH makes a bare ^H delete one character. By default it is
	// ctrl+backspace, as browser terminals send it.
	EraseCtrlH bool
	Logger     Logger
}

// AutocompleteHandler produces completion candidates
type AutocompleteHandler = completion.Producer

// HandlerID identifies a registered AutocompleteHandler
type HandlerID = completion.ID

// Engine is a single-session line editor bound to one Terminal. All
// methods are safe for concurrent use; output produced by one call is
// written to the terminal in a single Write.
type Engine struct {
	mu sync.Mutex

	term        Terminal
	disposables []Disposable

	history     *history.Ring
	completions *completion.Registry
	events      *EventBus
	log         Logger
	maxEntries  int
	tabWidth    int
	eraseCtrlH  bool

	input      []rune
	cursor     int
	state      promptState
	cols, rows int
	view       view
	typeahead  string

	out    strings.Builder
	queued []Event
}

// NewEngine creates an engine that is not yet attached to a terminal
func NewEngine(opts Options) *Engine {
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.MaxAutocompleteEntries <= 0 {
		opts.MaxAutocompleteEntries = DefaultMaxAutocompleteEntries
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultTabWidth
	}
	if opts.Logger == nil {
		opts.Logger = DiscardLogger{}
	}

	return &Engine{
		history:     history.NewRing(opts.HistorySize),
		completions: completion.NewRegistry(),
		events:      NewEventBus(),
		log:         opts.Logger,
		maxEntries:  opts.MaxAutocompleteEntries,
		tabWidth:    opts.TabWidth,
		eraseCtrlH:  opts.EraseCtrlH,
	}
}

// unlock flushes buffered output, releases the lock and then publishes
// the events queued while it was held.
func (e *Engine) unlock() {
	e.flush()
	events := e.queued
	e.queued = nil
	e.mu.Unlock()

	for _, event := range events {
		if err := e.events.Publish(event); err != nil {
			e.log.Logf("console: %s handler failed: %v", event.Type, err)
		}
	}
}

func (e *Engine) flush() {
	if e.out.Len() == 0 {
		return
	}
	data := e.out.String()
	e.out.Reset()
	if e.term == nil {
		return
	}
	if _, err := e.term.Write([]byte(data)); err != nil {
		e.log.Logf("console: terminal write failed: %v", err)
	}
}

func (e *Engine) write(s string) {
	e.out.WriteString(s)
}

func (e *Engine) emit(eventType string, data interface{}) {
	e.queued = append(e.queued, Event{Type: eventType, Data: data})
}

// Attach binds the engine to t and starts consuming its input
func (e *Engine) Attach(t Terminal) error {
	e.mu.Lock()
	defer e.unlock()

	if e.term != nil {
		return fmt.Errorf("attach: terminal already attached: %w", ErrInvalidState)
	}

	e.term = t
	e.cols, e.rows = t.Size()
	e.disposables = append(e.disposables,
		t.OnData(e.handleData),
		t.OnResize(e.handleResize),
	)
	return nil
}

// Detach stops consuming terminal events. Pending reads stay pending.
func (e *Engine) Detach() {
	e.mu.Lock()
	disposables := e.disposables
	e.disposables = nil
	e.flush()
	e.term = nil
	e.view = view{}
	e.emit(EventPause, nil)
	e.unlock()

	for _, d := range disposables {
		if d != nil {
			d.Dispose()
		}
	}
}

// Read writes prompt and collects a line of input. continuation, "> " by
// default, prefixes every continued row of multi-line input.
func (e *Engine) Read(prompt string, continuation ...string) (*Pending, error) {
	e.mu.Lock()
	defer e.unlock()

	if e.state.hasLine() {
		return nil, fmt.Errorf("read: a read is already pending: %w", ErrInvalidState)
	}

	cont := DefaultContinuation
	if len(continuation) > 0 {
		cont = continuation[0]
	}

	p := newPending()
	e.state = e.state.withLine(lineRequest{prompt: prompt, continuation: cont, pending: p})
	e.input = nil
	e.cursor = 0
	e.history.Rewind()
	e.view = view{}
	e.redraw()
	e.emit(EventResume, nil)

	if ta := e.typeahead; ta != "" {
		e.typeahead = ""
		e.feed(ta)
	}
	return p, nil
}

// ReadChar writes prompt and resolves with the next raw chunk of input,
// ahead of any line read in progress.
func (e *Engine) ReadChar(prompt string) (*Pending, error) {
	e.mu.Lock()
	defer e.unlock()

	if e.state.hasChar() {
		return nil, fmt.Errorf("read char: a char read is already pending: %w", ErrInvalidState)
	}

	p := newPending()
	e.beginChar(charRequest{prompt: prompt, pending: p})
	return p, nil
}

func (e *Engine) beginChar(r charRequest) {
	e.state = e.state.withChar(r)
	e.write(r.prompt)
	e.view = view{}
}

// AbortRead rejects the outstanding char and line reads with an
// *AbortError carrying reason, "aborted" when none is given.
func (e *Engine) AbortRead(reason ...string) {
	e.mu.Lock()
	defer e.unlock()

	r := DefaultAbortReason
	if len(reason) > 0 && reason[0] != "" {
		r = reason[0]
	}

	if e.state.hasChar() || e.state.hasLine() {
		if e.state.hasLine() && e.view.shown {
			e.setCursor(len(e.input))
		}
		e.write("\r\n")
		e.view = view{}
	}
	if e.state.hasChar() {
		req := e.state.char
		e.state = e.state.withoutChar()
		req.reject(&AbortError{Reason: r})
	}
	if e.state.hasLine() {
		req := e.state.line
		e.state = e.state.withoutLine()
		req.pending.settle("", &AbortError{Reason: r})
	}
	e.emit(EventPause, nil)
}

// Print writes text to the terminal, translating line feeds to CRLF
func (e *Engine) Print(text string) {
	e.mu.Lock()
	defer e.unlock()
	e.print(text)
}

// Println writes text followed by a line break
func (e *Engine) Println(text string) {
	e.Print(text + "\n")
}

func (e *Engine) print(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	e.write(strings.ReplaceAll(text, "\n", "\r\n"))
	e.view = view{}
}

// PrintWide lays items out in columns that fit the terminal width, each
// cell padded to the widest item plus padding (2 by default).
func (e *Engine) PrintWide(items []string, padding ...int) {
	e.mu.Lock()
	defer e.unlock()

	pad := 2
	if len(padding) > 0 && padding[0] >= 0 {
		pad = padding[0]
	}
	e.printWide(items, pad)
}

func (e *Engine) printWide(items []string, padding int) {
	if len(items) == 0 {
		return
	}

	cols := e.cols
	if cols <= 0 {
		cols = 80
	}
	for _, row := range gridRows(items, padding, cols) {
		e.print(row + "\n")
	}
}

// AddAutocompleteHandler registers fn; args are passed to every call
func (e *Engine) AddAutocompleteHandler(fn AutocompleteHandler, args ...any) HandlerID {
	return e.completions.Add(fn, args...)
}

// RemoveAutocompleteHandler unregisters the handler with the given id
func (e *Engine) RemoveAutocompleteHandler(id HandlerID) {
	e.completions.Remove(id)
}

// SetPrompt replaces the prompt of the active read and redraws it
func (e *Engine) SetPrompt(prompt string, continuation ...string) {
	e.mu.Lock()
	defer e.unlock()

	if !e.state.hasLine() {
		return
	}
	e.state.line.prompt = prompt
	if len(continuation) > 0 {
		e.state.line.continuation = continuation[0]
	}
	e.redraw()
}

// Prompt returns the prompt of the active read, or "" when idle
func (e *Engine) Prompt() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.hasLine() {
		return ""
	}
	return e.state.line.prompt
}

// PrintAndRestartPrompt moves below the current input, runs fn and then
// redraws the prompt with the input and cursor as they were. When fn
// returns a Pending the redraw waits for it to settle.
func (e *Engine) PrintAndRestartPrompt(fn func() *Pending) {
	e.mu.Lock()
	if !e.state.hasLine() {
		e.unlock()
		fn()
		return
	}
	saved := e.leavePrompt()
	owner := e.state.line.pending
	e.unlock()

	restore := func() {
		e.mu.Lock()
		defer e.unlock()
		if e.state.hasLine() && e.state.line.pending == owner {
			e.restorePrompt(saved)
		}
	}

	p := fn()
	if p == nil {
		restore()
		return
	}
	go func() {
		<-p.Done()
		restore()
	}()
}

// leavePrompt moves the cursor below the rendered input and returns the
// cursor offset to restore later
func (e *Engine) leavePrompt() int {
	saved := e.cursor
	if e.view.shown {
		e.setCursor(len(e.input))
	}
	e.write("\r\n")
	e.view = view{}
	return saved
}

func (e *Engine) restorePrompt(cursor int) {
	if !e.state.hasLine() {
		return
	}
	e.cursor = clamp(cursor, 0, len(e.input))
	e.redraw()
}

// ClearTerminal wipes the screen and redraws the active prompt at the top
func (e *Engine) ClearTerminal() {
	e.mu.Lock()
	defer e.unlock()
	e.clearTerminal()
}

func (e *Engine) clearTerminal() {
	e.write(clearTerminalSeq)
	e.view = view{}
	if e.state.hasLine() {
		e.redraw()
	}
}

// Input returns the uncommitted input
func (e *Engine) Input() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.input)
}

// Cursor returns the cursor offset within Input, in runes
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Active reports whether a line read is in progress
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.hasLine()
}

// TermSize returns the last known terminal size
func (e *Engine) TermSize() (cols, rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cols, e.rows
}

// History returns the stored history entries, oldest first
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Entries()
}

// Events returns the bus lifecycle events are published on
func (e *Engine) Events() *EventBus {
	return e.events
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
