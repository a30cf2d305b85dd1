package console

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
)

// CleanupHandler restores terminal state when the process is signalled or
// panics while the tty is in raw mode.
type CleanupHandler struct {
	cleanupFuncs []func() error
	mu           sync.Mutex
	sigChan      chan os.Signal
	done         chan struct{}
	stopOnce     sync.Once
}

// NewCleanupHandler creates a handler and installs its signal handlers
func NewCleanupHandler() *CleanupHandler {
	h := &CleanupHandler{
		sigChan: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	if sigs := signalsToCapture(); len(sigs) > 0 {
		signal.Notify(h.sigChan, sigs...)
	}
	go h.waitForSignal()
	return h
}

// Register adds a cleanup function to be called on exit
func (h *CleanupHandler) Register(fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFuncs = append(h.cleanupFuncs, fn)
}

// Cleanup runs the registered functions once each, most recent first
func (h *CleanupHandler) Cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.cleanupFuncs) - 1; i >= 0; i-- {
		if err := h.cleanupFuncs[i](); err != nil {
			fmt.Fprintf(os.Stderr, "Cleanup error: %v\n", err)
		}
	}
	h.cleanupFuncs = h.cleanupFuncs[:0]
}

// Stop removes the signal handlers without running cleanup
func (h *CleanupHandler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
	})
}

// EnsureCleanup should be deferred; it cleans up, re-panicking if needed
func (h *CleanupHandler) EnsureCleanup() {
	h.Stop()
	if r := recover(); r != nil {
		h.Cleanup()
		panic(r)
	}
	h.Cleanup()
}

func (h *CleanupHandler) waitForSignal() {
	select {
	case sig := <-h.sigChan:
		h.Cleanup()
		reRaiseSignal(sig)
	case <-h.done:
	}
}
