//go:build windows
// +build windows

package console

import (
	"os"
	"time"

	"golang.org/x/term"
)

// watchResize polls the console size since Windows has no SIGWINCH
func watchResize(fd int, notify chan<- struct{}, stop <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Poll every 500ms
	defer ticker.Stop()

	lastWidth, lastHeight, _ := term.GetSize(fd)
	for {
		select {
		case <-ticker.C:
			width, height, err := term.GetSize(fd)
			if err != nil || (width == lastWidth && height == lastHeight) {
				continue
			}
			lastWidth, lastHeight = width, height
			select {
			case notify <- struct{}{}:
			default:
			}
		case <-stop:
			return
		}
	}
}

// signalsToCapture returns the signals that must restore the console first
func signalsToCapture() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// reRaiseSignal cannot re-raise POSIX signals on Windows; exit after cleanup
func reRaiseSignal(sig os.Signal) { os.Exit(1) }
