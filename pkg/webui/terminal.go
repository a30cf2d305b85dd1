package webui

import (
	"sync"
	"time"

	"github.com/alantheprice/localecho/pkg/console"
)

// Initial geometry until the browser reports its size
const (
	defaultCols = 80
	defaultRows = 24
)

// Session is one browser terminal. It implements console.Terminal: output
// is sent to the browser and input and resize callbacks are invoked from
// the connection's single read loop.
type Session struct {
	ID          string
	ConnectedAt time.Time

	conn   *SafeConn
	engine *console.Engine

	mutex           sync.RWMutex
	cols, rows      int
	dataCallbacks   map[int]func(string)
	resizeCallbacks map[int]func(cols, rows int)
	nextID          int
}

var _ console.Terminal = (*Session)(nil)

func newSession(id string, conn *SafeConn) *Session {
	return &Session{
		ID:              id,
		ConnectedAt:     time.Now(),
		conn:            conn,
		cols:            defaultCols,
		rows:            defaultRows,
		dataCallbacks:   make(map[int]func(string)),
		resizeCallbacks: make(map[int]func(cols, rows int)),
	}
}

// Engine returns the line editor attached to this session
func (s *Session) Engine() *console.Engine {
	return s.engine
}

// Write sends output to the browser
func (s *Session) Write(p []byte) (int, error) {
	if err := s.conn.WriteJSON(serverMessage{Type: messageOutput, Data: string(p)}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Size returns the last size reported by the browser
func (s *Session) Size() (cols, rows int) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cols, s.rows
}

// OnData registers a callback for input from the browser
func (s *Session) OnData(callback func(data string)) console.Disposable {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	id := s.nextID
	s.dataCallbacks[id] = callback
	return console.DisposeFunc(func() {
		s.mutex.Lock()
		delete(s.dataCallbacks, id)
		s.mutex.Unlock()
	})
}

// OnResize registers a callback for browser terminal resizes
func (s *Session) OnResize(callback func(cols, rows int)) console.Disposable {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	id := s.nextID
	s.resizeCallbacks[id] = callback
	return console.DisposeFunc(func() {
		s.mutex.Lock()
		delete(s.resizeCallbacks, id)
		s.mutex.Unlock()
	})
}

func (s *Session) dispatchData(data string) {
	s.mutex.RLock()
	callbacks := make([]func(string), 0, len(s.dataCallbacks))
	for _, cb := range s.dataCallbacks {
		callbacks = append(callbacks, cb)
	}
	s.mutex.RUnlock()

	for _, cb := range callbacks {
		cb(data)
	}
}

func (s *Session) dispatchResize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}

	s.mutex.Lock()
	if cols == s.cols && rows == s.rows {
		s.mutex.Unlock()
		return
	}
	s.cols, s.rows = cols, rows
	callbacks := make([]func(int, int), 0, len(s.resizeCallbacks))
	for _, cb := range s.resizeCallbacks {
		callbacks = append(callbacks, cb)
	}
	s.mutex.Unlock()

	for _, cb := range callbacks {
		cb(cols, rows)
	}
}
