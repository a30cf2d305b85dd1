//go:build !windows
// +build !windows

package console

import (
	"os"
	"os/signal"
	"syscall"
)

// watchResize signals notify on every SIGWINCH until stop is closed
func watchResize(fd int, notify chan<- struct{}, stop <-chan struct{}) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGWINCH)
	defer signal.Stop(signalChan)

	for {
		select {
		case <-signalChan:
			select {
			case notify <- struct{}{}:
			default:
				// a resize is already queued
			}
		case <-stop:
			return
		}
	}
}

// signalsToCapture returns the signals that must restore the tty first
func signalsToCapture() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	}
}

// reRaiseSignal re-raises a signal so the default handler can run
func reRaiseSignal(sig os.Signal) {
	signal.Reset(sig)
	syscall.Kill(syscall.Getpid(), sig.(syscall.Signal))
}
