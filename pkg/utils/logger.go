package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes diagnostic messages to a rotating log file. It satisfies
// console.Logger.
type Logger struct {
	mu            sync.Mutex
	logger        *log.Logger
	closer        io.Closer
	jsonMode      bool
	correlationID string
}

// NewLogger creates a logger writing to a rotated file at path
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	l := NewWriterLogger(logFile)
	l.closer = logFile
	return l, nil
}

// NewWriterLogger creates a logger writing to w. JSON lines are written
// when LOCALECHO_JSON_LOGS=1, tagged with LOCALECHO_CORRELATION_ID if set.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{
		logger:        log.New(w, "", log.LstdFlags),
		jsonMode:      os.Getenv("LOCALECHO_JSON_LOGS") == "1",
		correlationID: os.Getenv("LOCALECHO_CORRELATION_ID"),
	}
}

// Close closes the logger resources.
func (w *Logger) Close() error {
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	w.write("info", "msg", message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	w.Log(fmt.Sprintf(format, v...))
}

func (w *Logger) LogError(err error) {
	w.write("error", "error", err.Error())
}

func (w *Logger) write(level, key, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.jsonMode {
		_ = json.NewEncoder(w.logger.Writer()).Encode(map[string]any{"level": level, key: text, "cid": w.correlationID})
		return
	}
	if level == "error" {
		w.logger.Printf("Error: %s", text)
		return
	}
	w.logger.Print(text)
}
