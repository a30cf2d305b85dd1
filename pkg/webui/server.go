// Package webui serves a browser terminal whose input is edited locally by
// a console.Engine on the server side of a websocket.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alantheprice/localecho/pkg/console"
)

//go:embed static/*
var staticFiles embed.FS

// DefaultPort is used when Options.Port is zero
const DefaultPort = 54321

// SessionFunc runs the program behind one browser terminal. It returns when
// the program ends or ctx is cancelled; the connection is closed after.
type SessionFunc func(ctx context.Context, s *Session) error

// Options configures a Server
type Options struct {
	Host    string
	Port    int
	Engine  console.Options
	Logger  console.Logger
	Session SessionFunc
}

// Server hosts browser terminals over websockets
type Server struct {
	opts      Options
	server    *http.Server
	listener  net.Listener
	upgrader  websocket.Upgrader
	sessions  sync.Map // map[string]*Session
	isRunning bool
	mutex     sync.RWMutex
	startTime time.Time
}

// NewServer creates a server; call Start to listen or mount Handler
func NewServer(opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Logger == nil {
		opts.Logger = console.DiscardLogger{}
	}
	if opts.Session == nil {
		opts.Session = func(ctx context.Context, s *Session) error {
			<-ctx.Done()
			return nil
		}
	}

	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true // direct connections
				}
				return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
			},
		},
		startTime: time.Now(),
	}
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/terminal", s.handleTerminalWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/sessions", s.handleAPISessions)

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return mux
}

// Start listens and serves until ctx is cancelled or Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.isRunning {
		s.mutex.Unlock()
		return fmt.Errorf("web server is already running")
	}

	addr := net.JoinHostPort(s.opts.Host, fmt.Sprint(s.opts.Port))
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		s.mutex.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.isRunning = true
	s.startTime = time.Now()
	server := s.server
	s.mutex.Unlock()

	go func() {
		s.opts.Logger.Logf("web terminal listening at http://%s", listener.Addr())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Logf("web server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown closes every session and stops the server
func (s *Server) Shutdown() error {
	s.mutex.Lock()
	if !s.isRunning {
		s.mutex.Unlock()
		return nil
	}
	s.isRunning = false
	server := s.server
	s.mutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// hijacked connections are not closed by http.Server.Shutdown
	s.sessions.Range(func(_, value interface{}) bool {
		value.(*Session).conn.Close()
		return true
	})

	return server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (s *Server) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or "" before Start
func (s *Server) Addr() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SessionCount returns the number of connected terminals
func (s *Server) SessionCount() int {
	count := 0
	s.sessions.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"sessions": s.SessionCount(),
		"uptime":   time.Since(s.startTime).String(),
	})
}

type sessionInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
	Cols        int       `json:"cols"`
	Rows        int       `json:"rows"`
}

func (s *Server) handleAPISessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos := []sessionInfo{}
	s.sessions.Range(func(_, value interface{}) bool {
		sess := value.(*Session)
		cols, rows := sess.Size()
		infos = append(infos, sessionInfo{ID: sess.ID, ConnectedAt: sess.ConnectedAt, Cols: cols, Rows: rows})
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].ConnectedAt.Before(infos[j].ConnectedAt) })

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"sessions": infos})
}

// CheckPortAvailable checks if a port is available to bind to
func CheckPortAvailable(port int) bool {
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false // Port is in use
	}
	listener.Close()
	return true
}

// FindAvailablePort finds an available port starting from a base port
func FindAvailablePort(basePort int) int {
	port := basePort
	for port < basePort+100 {
		if CheckPortAvailable(port) {
			return port
		}
		port++
	}
	return basePort + 100 // Return last attempt even if not available
}
