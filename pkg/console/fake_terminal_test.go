package console

import (
	"strconv"
	"strings"
	"sync"

	"github.com/alantheprice/localecho/pkg/layout"
)

// fakeTerminal records writes and replays them on a small screen model
type fakeTerminal struct {
	mu      sync.Mutex
	cols    int
	rows    int
	writes  []string
	data    map[int]func(string)
	resize  map[int]func(cols, rows int)
	nextID  int
	display *screen
}

func newFakeTerminal(cols, rows int) *fakeTerminal {
	return &fakeTerminal{
		cols:    cols,
		rows:    rows,
		data:    make(map[int]func(string)),
		resize:  make(map[int]func(cols, rows int)),
		display: newScreen(cols),
	}
}

func (ft *fakeTerminal) Write(p []byte) (int, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.writes = append(ft.writes, string(p))
	ft.display.feed(string(p))
	return len(p), nil
}

func (ft *fakeTerminal) Size() (int, int) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.cols, ft.rows
}

func (ft *fakeTerminal) OnData(cb func(string)) Disposable {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.nextID++
	id := ft.nextID
	ft.data[id] = cb
	return DisposeFunc(func() {
		ft.mu.Lock()
		delete(ft.data, id)
		ft.mu.Unlock()
	})
}

func (ft *fakeTerminal) OnResize(cb func(cols, rows int)) Disposable {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.nextID++
	id := ft.nextID
	ft.resize[id] = cb
	return DisposeFunc(func() {
		ft.mu.Lock()
		delete(ft.resize, id)
		ft.mu.Unlock()
	})
}

// send delivers each chunk as a separate input event
func (ft *fakeTerminal) send(chunks ...string) {
	for _, chunk := range chunks {
		ft.mu.Lock()
		var cbs []func(string)
		for _, cb := range ft.data {
			cbs = append(cbs, cb)
		}
		ft.mu.Unlock()
		for _, cb := range cbs {
			cb(chunk)
		}
	}
}

// typeText sends text one rune per event, like a person typing
func (ft *fakeTerminal) typeText(text string) {
	for _, r := range text {
		ft.send(string(r))
	}
}

func (ft *fakeTerminal) resizeTo(cols, rows int) {
	ft.mu.Lock()
	ft.cols, ft.rows = cols, rows
	ft.display.cols = cols
	var cbs []func(int, int)
	for _, cb := range ft.resize {
		cbs = append(cbs, cb)
	}
	ft.mu.Unlock()
	for _, cb := range cbs {
		cb(cols, rows)
	}
}

func (ft *fakeTerminal) subscribers() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.data) + len(ft.resize)
}

func (ft *fakeTerminal) output() string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return strings.Join(ft.writes, "")
}

func (ft *fakeTerminal) writeCount() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.writes)
}

func (ft *fakeTerminal) lastWrite() string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if len(ft.writes) == 0 {
		return ""
	}
	return ft.writes[len(ft.writes)-1]
}

// lines returns the visible screen rows with trailing blanks removed
func (ft *fakeTerminal) lines() []string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.display.text()
}

// cursor returns the screen cursor as column, row
func (ft *fakeTerminal) cursor() layout.Position {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return layout.Position{Col: ft.display.col, Row: ft.display.row}
}

// screen interprets the subset of ANSI the engine emits. Rows grow on
// demand and never scroll off.
type screen struct {
	cols        int
	cells       [][]rune
	row, col    int
	wrapPending bool
	savedRow    int
	savedCol    int
}

func newScreen(cols int) *screen {
	s := &screen{cols: cols}
	s.ensureRow(0)
	return s
}

func (s *screen) ensureRow(row int) {
	for len(s.cells) <= row {
		s.cells = append(s.cells, nil)
	}
}

func (s *screen) set(row, col int, r rune) {
	s.ensureRow(row)
	for len(s.cells[row]) <= col {
		s.cells[row] = append(s.cells[row], ' ')
	}
	s.cells[row][col] = r
}

func (s *screen) feed(data string) {
	runes := []rune(data)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\x1b':
			i = s.escape(runes, i+1)
		case r == '\r':
			s.col = 0
			s.wrapPending = false
		case r == '\n':
			s.row++
			s.ensureRow(s.row)
			s.wrapPending = false
		case r == '\b':
			if s.col > 0 {
				s.col--
			}
			s.wrapPending = false
		case r < 0x20:
			// bell and other controls have no visible effect
		default:
			s.put(r)
		}
	}
}

func (s *screen) put(r rune) {
	if s.wrapPending {
		s.col = 0
		s.row++
		s.wrapPending = false
	}
	w := layout.RuneWidth(r)
	if s.col+w > s.cols && s.col > 0 {
		s.col = 0
		s.row++
	}
	s.set(s.row, s.col, r)
	if w == 2 {
		s.set(s.row, s.col+1, 0)
	}
	s.col += w
	if s.col >= s.cols {
		s.col = s.cols - 1
		s.wrapPending = true
	}
}

// escape handles the sequence starting after ESC at runes[i] and returns
// the index of its last rune
func (s *screen) escape(runes []rune, i int) int {
	if i >= len(runes) {
		return i
	}
	switch runes[i] {
	case '[':
		return s.csi(runes, i+1)
	case ']':
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '\a' {
				return j
			}
		}
		return len(runes) - 1
	case '7':
		s.savedRow, s.savedCol = s.row, s.col
	case '8':
		s.row, s.col = s.savedRow, s.savedCol
		s.wrapPending = false
	case 'c':
		s.cells = nil
		s.ensureRow(0)
		s.row, s.col = 0, 0
		s.wrapPending = false
	}
	return i
}

func (s *screen) csi(runes []rune, i int) int {
	start := i
	for i < len(runes) && (runes[i] < 0x40 || runes[i] > 0x7e) {
		i++
	}
	if i >= len(runes) {
		return len(runes) - 1
	}
	params := string(runes[start:i])
	final := runes[i]
	if strings.HasPrefix(params, "?") {
		return i
	}

	var args []int
	for _, p := range strings.Split(params, ";") {
		n, _ := strconv.Atoi(p)
		args = append(args, n)
	}
	arg := func(idx, def int) int {
		if idx < len(args) && args[idx] > 0 {
			return args[idx]
		}
		return def
	}

	s.wrapPending = false
	switch final {
	case 'A':
		s.row -= arg(0, 1)
		if s.row < 0 {
			s.row = 0
		}
	case 'B':
		s.row += arg(0, 1)
		s.ensureRow(s.row)
	case 'C':
		s.col += arg(0, 1)
		if s.col >= s.cols {
			s.col = s.cols - 1
		}
	case 'D':
		s.col -= arg(0, 1)
		if s.col < 0 {
			s.col = 0
		}
	case 'G':
		s.col = arg(0, 1) - 1
	case 'H':
		s.row = arg(0, 1) - 1
		s.col = arg(1, 1) - 1
		s.ensureRow(s.row)
	case 'J':
		switch arg(0, 0) {
		case 0:
			s.clearRight()
			s.cells = s.cells[:s.row+1]
		case 2, 3:
			for r := range s.cells {
				s.cells[r] = nil
			}
		}
	case 'K':
		switch arg(0, 0) {
		case 0:
			s.clearRight()
		case 1:
			for c := 0; c <= s.col && c < len(s.cells[s.row]); c++ {
				s.cells[s.row][c] = ' '
			}
		case 2:
			s.cells[s.row] = nil
		}
	}
	return i
}

func (s *screen) clearRight() {
	s.ensureRow(s.row)
	if s.col < len(s.cells[s.row]) {
		s.cells[s.row] = s.cells[s.row][:s.col]
	}
}

func (s *screen) text() []string {
	out := make([]string, 0, len(s.cells))
	for _, row := range s.cells {
		var b strings.Builder
		for _, r := range row {
			if r != 0 {
				b.WriteRune(r)
			}
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
