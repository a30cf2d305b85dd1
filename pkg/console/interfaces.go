package console

// Terminal is the capability the engine drives: a terminal widget or a
// local tty. Callbacks registered with OnData and OnResize must be invoked
// from a single goroutine per terminal.
type Terminal interface {
	// Output
	Write(data []byte) (int, error)

	// Size detection
	Size() (cols, rows int)

	// Input and resize subscriptions
	OnData(callback func(data string)) Disposable
	OnResize(callback func(cols, rows int)) Disposable
}

// Disposable cancels a subscription
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable
type DisposeFunc func()

// Dispose calls f
func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Logger receives diagnostic messages from the engine
type Logger interface {
	Logf(format string, args ...interface{})
}

// DiscardLogger drops every message
type DiscardLogger struct{}

func (DiscardLogger) Logf(string, ...interface{}) {}

// Event types published by the engine
const (
	EventPause    = "pause"
	EventResume   = "resume"
	EventLine     = "line"
	EventHistory  = "history"
	EventSIGINT   = "SIGINT"
	EventKeypress = "keypress"
)

// Event represents an engine lifecycle notification
type Event struct {
	Type      string
	Data      interface{}
	Timestamp int64
}

// EventHandler processes events
type EventHandler func(event Event) error
