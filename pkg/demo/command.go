package demo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrExit is returned by a command that ends the session
var ErrExit = errors.New("exit")

// Command is a shell command
type Command interface {
	Name() string
	Description() string
	Execute(args []string, sh *Shell) error
}

// CommandRegistry holds the builtins plus the commands loaded from a
// command file. The loaded set can be replaced while the shell runs.
type CommandRegistry struct {
	mu       sync.RWMutex
	builtins map[string]Command
	loaded   map[string]Command
}

// NewCommandRegistry creates a registry with the builtin commands
func NewCommandRegistry() *CommandRegistry {
	registry := &CommandRegistry{
		builtins: make(map[string]Command),
		loaded:   make(map[string]Command),
	}

	registry.Register(&HelpCommand{registry: registry})
	registry.Register(&HistoryCommand{})
	registry.Register(&ClearCommand{})
	registry.Register(&EchoCommand{})
	registry.Register(&ExitCommand{})

	return registry
}

// Register adds a builtin command
func (r *CommandRegistry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[cmd.Name()] = cmd
}

// SetLoaded replaces the loaded commands. Specs that collide with a builtin
// are skipped and reported.
func (r *CommandRegistry) SetLoaded(specs []CommandSpec) error {
	loaded := make(map[string]Command, len(specs))
	var skipped []string

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if _, ok := r.builtins[spec.Name]; ok {
			skipped = append(skipped, spec.Name)
			continue
		}
		loaded[spec.Name] = &StaticCommand{spec: spec}
	}
	r.loaded = loaded

	if len(skipped) > 0 {
		return fmt.Errorf("commands shadow builtins: %s", strings.Join(skipped, ", "))
	}
	return nil
}

// GetCommand returns a command by name
func (r *CommandRegistry) GetCommand(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.builtins[name]; ok {
		return cmd, true
	}
	cmd, ok := r.loaded[name]
	return cmd, ok
}

// ListCommands returns all commands sorted by name
func (r *CommandRegistry) ListCommands() []Command {
	r.mu.RLock()
	commands := make([]Command, 0, len(r.builtins)+len(r.loaded))
	for _, cmd := range r.builtins {
		commands = append(commands, cmd)
	}
	for _, cmd := range r.loaded {
		commands = append(commands, cmd)
	}
	r.mu.RUnlock()

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})
	return commands
}

// Names returns the command names, sorted
func (r *CommandRegistry) Names() []string {
	commands := r.ListCommands()
	names := make([]string, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.Name()
	}
	return names
}
