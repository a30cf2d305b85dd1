package webui

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alantheprice/localecho/pkg/console"
)

// Message types exchanged with the browser
const (
	messageInput   = "input"
	messageResize  = "resize"
	messageOutput  = "output"
	messageSession = "session"
	messageError   = "error"
)

const (
	maxMessageSize = 512 * 1024
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	writeWait      = 10 * time.Second
)

type clientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

type serverMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	ID   string `json:"id,omitempty"`
}

// ErrConnClosed is returned for writes after the connection closed
var ErrConnClosed = errors.New("websocket connection closed")

// SafeConn wraps a WebSocket connection with write mutex and panic recovery
type SafeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
	log     console.Logger
}

// NewSafeConn creates a new safe connection wrapper
func NewSafeConn(conn *websocket.Conn, logger console.Logger) *SafeConn {
	return &SafeConn{conn: conn, log: logger}
}

// WriteJSON writes v as one JSON message
func (sc *SafeConn) WriteJSON(v interface{}) (err error) {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	if sc.closed {
		return ErrConnClosed
	}

	defer func() {
		if r := recover(); r != nil {
			sc.log.Logf("websocket write panic recovered: %v", r)
			sc.closed = true
			err = ErrConnClosed
		}
	}()

	sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sc.conn.WriteJSON(v)
}

// ping sends a keepalive ping
func (sc *SafeConn) ping() error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	if sc.closed {
		return ErrConnClosed
	}
	return sc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// closeWithMessage tells the peer why the connection is ending, then closes it
func (sc *SafeConn) closeWithMessage(code int, text string) error {
	sc.writeMu.Lock()
	if !sc.closed {
		sc.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
	}
	sc.writeMu.Unlock()
	return sc.Close()
}

// Close closes the underlying connection
func (sc *SafeConn) Close() error {
	sc.writeMu.Lock()
	sc.closed = true
	sc.writeMu.Unlock()
	return sc.conn.Close()
}

// Underlying returns the underlying websocket.Conn for read operations
func (sc *SafeConn) Underlying() *websocket.Conn {
	return sc.conn
}

// handleTerminalWebSocket runs one browser terminal: an engine attached to
// the session, the session program, and the read loop feeding the engine.
func (s *Server) handleTerminalWebSocket(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.opts.Logger.Logf("terminal websocket handler panic: %v", rec)
		}
	}()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.opts.Logger.Logf("terminal websocket upgrade error: %v", err)
		return
	}

	safeConn := NewSafeConn(conn, s.opts.Logger)
	defer safeConn.Close()

	session := newSession(uuid.NewString(), safeConn)
	if err := safeConn.WriteJSON(serverMessage{Type: messageSession, ID: session.ID}); err != nil {
		s.opts.Logger.Logf("terminal %s: failed to announce session: %v", session.ID, err)
		return
	}

	s.sessions.Store(session.ID, session)
	defer s.sessions.Delete(session.ID)
	s.opts.Logger.Logf("terminal %s connected from %s", session.ID, r.RemoteAddr)

	session.engine = console.NewEngine(s.withLogger(s.opts.Engine))
	if err := session.engine.Attach(session); err != nil {
		s.opts.Logger.Logf("terminal %s: %v", session.ID, err)
		return
	}
	defer session.engine.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	programDone := make(chan struct{})
	go func() {
		defer close(programDone)
		defer func() {
			if rec := recover(); rec != nil {
				s.opts.Logger.Logf("terminal %s program panic: %v", session.ID, rec)
			}
		}()
		if err := s.opts.Session(ctx, session); err != nil && !errors.Is(err, context.Canceled) {
			s.opts.Logger.Logf("terminal %s program error: %v", session.ID, err)
		}
		// the program ended on its own; unblock the read loop
		safeConn.closeWithMessage(websocket.CloseNormalClosure, "session ended")
	}()

	go s.pingLoop(ctx, safeConn)

	s.readLoop(session, conn)

	cancel()
	<-programDone
	s.opts.Logger.Logf("terminal %s disconnected", session.ID)
}

// readLoop delivers browser messages to the session until the connection
// fails. It is the only goroutine that invokes the session's callbacks.
func (s *Server) readLoop(session *Session, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var netErr net.Error
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
			case errors.As(err, &netErr) && netErr.Timeout():
				s.opts.Logger.Logf("terminal %s timed out", session.ID)
			default:
				s.opts.Logger.Logf("terminal %s read error: %v", session.ID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Type {
		case messageInput:
			if msg.Data != "" {
				session.dispatchData(msg.Data)
			}
		case messageResize:
			session.dispatchResize(msg.Cols, msg.Rows)
		default:
			session.conn.WriteJSON(serverMessage{Type: messageError, Data: "unknown message type: " + msg.Type})
		}
	}
}

func (s *Server) pingLoop(ctx context.Context, conn *SafeConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}

func (s *Server) withLogger(opts console.Options) console.Options {
	if opts.Logger == nil {
		opts.Logger = s.opts.Logger
	}
	return opts
}
