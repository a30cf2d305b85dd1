package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// LocalTerminal implements Terminal over the process's own tty. Input and
// resize callbacks are delivered from one dispatch goroutine.
type LocalTerminal struct {
	in  *os.File
	out io.Writer
	fd  int

	mu              sync.RWMutex
	width           int
	height          int
	oldState        *term.State
	dataCallbacks   map[int]func(string)
	resizeCallbacks map[int]func(cols, rows int)
	nextID          int

	dataChan   chan string
	resizeChan chan struct{}
	stopChan   chan struct{}
	closeOnce  sync.Once
}

var _ Terminal = (*LocalTerminal)(nil)

// NewLocalTerminal creates a terminal reading from in and writing to out
func NewLocalTerminal(in *os.File, out io.Writer) *LocalTerminal {
	return &LocalTerminal{
		in:              in,
		out:             out,
		fd:              int(in.Fd()),
		dataCallbacks:   make(map[int]func(string)),
		resizeCallbacks: make(map[int]func(cols, rows int)),
		dataChan:        make(chan string, 16),
		resizeChan:      make(chan struct{}, 1),
		stopChan:        make(chan struct{}),
	}
}

// Start switches the tty to raw mode and begins delivering events
func (lt *LocalTerminal) Start() error {
	lt.mu.Lock()
	if term.IsTerminal(lt.fd) {
		oldState, err := term.MakeRaw(lt.fd)
		if err != nil {
			lt.mu.Unlock()
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		lt.oldState = oldState
	}
	lt.updateSize()
	lt.mu.Unlock()

	go lt.readLoop()
	go watchResize(lt.fd, lt.resizeChan, lt.stopChan)
	go lt.dispatch()
	return nil
}

// Close stops event delivery and restores the tty
func (lt *LocalTerminal) Close() error {
	var err error
	lt.closeOnce.Do(func() {
		close(lt.stopChan)

		lt.mu.Lock()
		defer lt.mu.Unlock()
		if lt.oldState != nil {
			if rerr := term.Restore(lt.fd, lt.oldState); rerr != nil {
				err = fmt.Errorf("failed to restore terminal: %w", rerr)
			}
			lt.oldState = nil
		}
	})
	return err
}

// Done is closed once the terminal has been closed or its input ended
func (lt *LocalTerminal) Done() <-chan struct{} {
	return lt.stopChan
}

func (lt *LocalTerminal) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := lt.in.Read(buf)
		if n > 0 {
			select {
			case lt.dataChan <- string(buf[:n]):
			case <-lt.stopChan:
				return
			}
		}
		if err != nil {
			lt.Close()
			return
		}
	}
}

func (lt *LocalTerminal) dispatch() {
	for {
		select {
		case data := <-lt.dataChan:
			lt.mu.RLock()
			callbacks := make([]func(string), 0, len(lt.dataCallbacks))
			for _, cb := range lt.dataCallbacks {
				callbacks = append(callbacks, cb)
			}
			lt.mu.RUnlock()

			for _, cb := range callbacks {
				cb(data)
			}

		case <-lt.resizeChan:
			lt.mu.Lock()
			oldWidth, oldHeight := lt.width, lt.height
			lt.updateSize()
			width, height := lt.width, lt.height
			callbacks := make([]func(cols, rows int), 0, len(lt.resizeCallbacks))
			for _, cb := range lt.resizeCallbacks {
				callbacks = append(callbacks, cb)
			}
			lt.mu.Unlock()

			if width == oldWidth && height == oldHeight {
				continue
			}
			for _, cb := range callbacks {
				cb(width, height)
			}

		case <-lt.stopChan:
			return
		}
	}
}

// updateSize refreshes the cached size; callers hold mu
func (lt *LocalTerminal) updateSize() {
	width, height, err := term.GetSize(lt.fd)
	if err != nil || width <= 0 || height <= 0 {
		width, height = fallbackColumns, fallbackRows
	}
	lt.width, lt.height = width, height
}

// Write writes data to the terminal
func (lt *LocalTerminal) Write(data []byte) (int, error) {
	return lt.out.Write(data)
}

// Size returns the current terminal size
func (lt *LocalTerminal) Size() (cols, rows int) {
	lt.mu.RLock()
	defer lt.mu.RUnlock()
	return lt.width, lt.height
}

// OnData registers a callback for input chunks
func (lt *LocalTerminal) OnData(callback func(data string)) Disposable {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.nextID++
	id := lt.nextID
	lt.dataCallbacks[id] = callback
	return DisposeFunc(func() {
		lt.mu.Lock()
		delete(lt.dataCallbacks, id)
		lt.mu.Unlock()
	})
}

// OnResize registers a callback for terminal resize events
func (lt *LocalTerminal) OnResize(callback func(cols, rows int)) Disposable {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.nextID++
	id := lt.nextID
	lt.resizeCallbacks[id] = callback
	return DisposeFunc(func() {
		lt.mu.Lock()
		delete(lt.resizeCallbacks, id)
		lt.mu.Unlock()
	})
}
