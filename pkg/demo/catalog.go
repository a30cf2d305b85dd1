package demo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alantheprice/localecho/pkg/console"
)

// CommandSpec describes a command that prints fixed text
type CommandSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Output      string `json:"output"`
}

// LoadCommands reads a JSON array of command specs from path
func LoadCommands(path string) ([]CommandSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commands file: %w", err)
	}
	return ParseCommands(data)
}

// ParseCommands decodes and validates a JSON array of command specs
func ParseCommands(data []byte) ([]CommandSpec, error) {
	var specs []CommandSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse commands: %w", err)
	}

	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("command %d has no name", i)
		}
		if strings.ContainsAny(spec.Name, " \t\r\n") {
			return nil, fmt.Errorf("command name %q contains whitespace", spec.Name)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate command %q", spec.Name)
		}
		seen[spec.Name] = true
	}
	return specs, nil
}

// debounceDuration absorbs the burst of events editors produce on save
const debounceDuration = 200 * time.Millisecond

// Watcher reloads a command file into a registry whenever it changes
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	registry *CommandRegistry
	log      console.Logger
	reloaded func()
	done     chan struct{}
	stopOnce sync.Once
}

// WatchCommands loads path into registry and keeps it current until Stop
// is called. onReload, if non-nil, runs after every successful reload.
func WatchCommands(path string, registry *CommandRegistry, logger console.Logger, onReload func()) (*Watcher, error) {
	specs, err := LoadCommands(path)
	if err != nil {
		return nil, err
	}
	if err := registry.SetLoaded(specs); err != nil {
		logger.Logf("commands: %v", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// watch the directory so editors that replace the file are seen
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     filepath.Clean(path),
		registry: registry,
		log:      logger,
		reloaded: onReload,
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Stop ends watching
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Logf("commands watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	specs, err := LoadCommands(w.path)
	if err != nil {
		// keep the previous set until the file parses again
		w.log.Logf("commands reload failed: %v", err)
		return
	}
	if err := w.registry.SetLoaded(specs); err != nil {
		w.log.Logf("commands: %v", err)
	}
	w.log.Logf("reloaded %d commands from %s", len(specs), w.path)
	if w.reloaded != nil {
		w.reloaded()
	}
}
