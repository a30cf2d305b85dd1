package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/localecho/pkg/console"
	"github.com/alantheprice/localecho/pkg/demo"
)

// TestCheckPortAvailable verifies port availability checking
func TestCheckPortAvailable(t *testing.T) {
	// Create actual server to bind port
	server := &http.Server{
		Addr: ":0", // Let OS pick available port
	}
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		t.Fatalf("Failed to bind listener: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	// Start server
	go func() {
		_ = server.Serve(listener)
	}()

	// Give server time to bind
	time.Sleep(100 * time.Millisecond)

	// Port should be unavailable now
	if CheckPortAvailable(port) {
		t.Errorf("Expected port %d to be unavailable after binding", port)
	}

	// Shutdown server
	_ = server.Close()
	time.Sleep(200 * time.Millisecond)

	// On some systems, ports may stay in TIME_WAIT, check a few times
	available := false
	for i := 0; i < 3; i++ {
		if CheckPortAvailable(port) {
			available = true
			break
		}
		time.Sleep(200 * time.Millisecond)
	}

	// If still not available after wait, log it but don't fail (system-dependent)
	if !available {
		t.Logf("Note: port %d not immediately available after close (acceptable - TIME_WAIT state)", port)
	}
}

// TestFindAvailablePort verifies port finding logic
func TestFindAvailablePort(t *testing.T) {
	// Get available port
	port := FindAvailablePort(54321)

	if port < 54321 || port > 54321+100 {
		t.Errorf("Expected port in range [54321, 54421], got %d", port)
	}

	// Verify it's actually available
	if !CheckPortAvailable(port) {
		t.Errorf("Found port %d is not available", port)
	}
}

// TestStartFailsWhenPortAlreadyInUse verifies startup state remains consistent on bind failures.
func TestStartFailsWhenPortAlreadyInUse(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to reserve test port: %v", err)
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	server := NewServer(Options{Port: port})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = server.Start(ctx)
	if err == nil {
		t.Fatalf("expected Start to fail when port %d is already in use", port)
	}
	if server.IsRunning() {
		t.Fatalf("server should not report running after failed start on port %d", port)
	}
}

func TestStartAndShutdown(t *testing.T) {
	port := FindAvailablePort(54321)
	server := NewServer(Options{Host: "127.0.0.1", Port: port})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, server.Start(ctx))
	assert.True(t, server.IsRunning())
	assert.Equal(t, fmt.Sprintf("127.0.0.1:%d", port), server.Addr())

	assert.Error(t, server.Start(ctx), "second start must fail")

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown())
	assert.False(t, server.IsRunning())
	require.NoError(t, server.Shutdown())
}

// wsClient reads server messages in the background
type wsClient struct {
	conn     *websocket.Conn
	messages chan serverMessage
}

func dialTerminal(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/terminal"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	c := &wsClient{conn: conn, messages: make(chan serverMessage, 256)}
	go func() {
		defer close(c.messages)
		for {
			var msg serverMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			c.messages <- msg
		}
	}()
	return c
}

func (c *wsClient) send(t *testing.T, msg clientMessage) {
	t.Helper()
	require.NoError(t, c.conn.WriteJSON(msg))
}

// readUntil collects output until it contains want
func (c *wsClient) readUntil(t *testing.T, want string) string {
	t.Helper()
	var out strings.Builder
	timeout := time.After(3 * time.Second)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				t.Fatalf("connection closed before %q; got %q", want, out.String())
			}
			if msg.Type == messageOutput {
				out.WriteString(msg.Data)
				if strings.Contains(out.String(), want) {
					return out.String()
				}
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q; got %q", want, out.String())
		}
	}
}

func (c *wsClient) expectSession(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-c.messages:
		require.Equal(t, messageSession, msg.Type)
		require.NotEmpty(t, msg.ID)
		return msg.ID
	case <-time.After(3 * time.Second):
		t.Fatal("no session message")
	}
	return ""
}

func newShellServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	server := NewServer(Options{
		Session: func(ctx context.Context, s *Session) error {
			shell := demo.NewShell(s.Engine(), demo.NewCommandRegistry(), demo.ShellOptions{Banner: "welcome"})
			return shell.Run(ctx)
		},
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts
}

func TestTerminal_RoundTrip(t *testing.T) {
	server, ts := newShellServer(t)
	client := dialTerminal(t, ts)

	id := client.expectSession(t)
	client.readUntil(t, "$ ")
	assert.Equal(t, 1, server.SessionCount())

	client.send(t, clientMessage{Type: messageResize, Cols: 100, Rows: 30})
	client.send(t, clientMessage{Type: messageInput, Data: "help\r"})
	out := client.readUntil(t, "Available commands:")
	assert.Contains(t, out, "help\r\n")

	resp, err := http.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Sessions []sessionInfo `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, id, body.Sessions[0].ID)
	assert.Equal(t, 100, body.Sessions[0].Cols)
	assert.Equal(t, 30, body.Sessions[0].Rows)
}

func TestTerminal_EchoesTypedInput(t *testing.T) {
	_, ts := newShellServer(t)
	client := dialTerminal(t, ts)
	client.expectSession(t)
	client.readUntil(t, "$ ")

	for _, r := range "echo hi" {
		client.send(t, clientMessage{Type: messageInput, Data: string(r)})
	}
	client.readUntil(t, "echo hi")
	client.send(t, clientMessage{Type: messageInput, Data: "\r"})
	client.readUntil(t, "\r\nhi\r\n")
}

func TestTerminal_SessionsAreIndependent(t *testing.T) {
	server, ts := newShellServer(t)
	a := dialTerminal(t, ts)
	b := dialTerminal(t, ts)

	assert.NotEqual(t, a.expectSession(t), b.expectSession(t))
	a.readUntil(t, "$ ")
	b.readUntil(t, "$ ")
	assert.Equal(t, 2, server.SessionCount())

	a.send(t, clientMessage{Type: messageInput, Data: "echo from-a\r"})
	a.readUntil(t, "from-a\r\n")

	b.send(t, clientMessage{Type: messageInput, Data: "history\r"})
	out := b.readUntil(t, "1  history\r\n")
	assert.NotContains(t, out, "from-a")
}

func TestTerminal_ExitClosesConnection(t *testing.T) {
	server, ts := newShellServer(t)
	client := dialTerminal(t, ts)
	client.expectSession(t)
	client.readUntil(t, "$ ")

	client.send(t, clientMessage{Type: messageInput, Data: "exit\r"})
	client.readUntil(t, "Goodbye!")

	timeout := time.After(3 * time.Second)
	for open := true; open; {
		select {
		case _, open = <-client.messages:
		case <-timeout:
			t.Fatal("connection was not closed")
		}
	}
	require.Eventually(t, func() bool { return server.SessionCount() == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestTerminal_UnknownMessageType(t *testing.T) {
	_, ts := newShellServer(t)
	client := dialTerminal(t, ts)
	client.expectSession(t)

	client.send(t, clientMessage{Type: "bogus"})
	timeout := time.After(3 * time.Second)
	for {
		select {
		case msg := <-client.messages:
			if msg.Type == messageError {
				assert.Contains(t, msg.Data, "bogus")
				return
			}
		case <-timeout:
			t.Fatal("no error message")
		}
	}
}

func TestHealthAndIndex(t *testing.T) {
	_, ts := newShellServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	page, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer page.Body.Close()
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.Header.Get("Content-Type"), "text/html")

	missing, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestUpgraderRejectsForeignOrigin(t *testing.T) {
	_, ts := newShellServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/terminal"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSession_ResizeIgnoresNoChange(t *testing.T) {
	s := newSession("id", nil)
	calls := 0
	d := s.OnResize(func(cols, rows int) { calls++ })

	s.dispatchResize(defaultCols, defaultRows)
	s.dispatchResize(0, 10)
	s.dispatchResize(120, 40)
	assert.Equal(t, 1, calls)

	d.Dispose()
	s.dispatchResize(90, 20)
	assert.Equal(t, 1, calls)

	cols, rows := s.Size()
	assert.Equal(t, 90, cols)
	assert.Equal(t, 20, rows)
}

var _ console.Terminal = (*Session)(nil)
