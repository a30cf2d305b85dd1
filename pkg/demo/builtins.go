package demo

import (
	"fmt"
	"strings"

	"github.com/alantheprice/localecho/pkg/layout"
)

// HelpCommand lists the available commands
type HelpCommand struct {
	registry *CommandRegistry
}

func (h *HelpCommand) Name() string        { return "help" }
func (h *HelpCommand) Description() string { return "List the available commands" }

func (h *HelpCommand) Execute(args []string, sh *Shell) error {
	commands := h.registry.ListCommands()

	width := 0
	for _, cmd := range commands {
		if w := layout.StringWidth(cmd.Name()); w > width {
			width = w
		}
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, cmd := range commands {
		pad := width - layout.StringWidth(cmd.Name())
		fmt.Fprintf(&b, "  %s%s  %s\n", cmd.Name(), strings.Repeat(" ", pad), cmd.Description())
	}
	b.WriteString("\nTab completes command names. Up and down recall earlier lines.")
	sh.engine.Println(b.String())
	return nil
}

// HistoryCommand prints the remembered lines, oldest first
type HistoryCommand struct{}

func (h *HistoryCommand) Name() string        { return "history" }
func (h *HistoryCommand) Description() string { return "Show previously entered lines" }

func (h *HistoryCommand) Execute(args []string, sh *Shell) error {
	entries := sh.engine.History()
	if len(entries) == 0 {
		return nil
	}
	var b strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&b, "%4d  %s\n", i+1, entry)
	}
	sh.engine.Print(b.String())
	return nil
}

// ClearCommand clears the terminal
type ClearCommand struct{}

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Clear the terminal" }

func (c *ClearCommand) Execute(args []string, sh *Shell) error {
	sh.engine.ClearTerminal()
	return nil
}

// EchoCommand prints its arguments
type EchoCommand struct{}

func (e *EchoCommand) Name() string        { return "echo" }
func (e *EchoCommand) Description() string { return "Print the arguments" }

func (e *EchoCommand) Execute(args []string, sh *Shell) error {
	sh.engine.Println(strings.Join(args, " "))
	return nil
}

// ExitCommand ends the session
type ExitCommand struct{}

func (e *ExitCommand) Name() string        { return "exit" }
func (e *ExitCommand) Description() string { return "End the session" }

func (e *ExitCommand) Execute(args []string, sh *Shell) error {
	sh.engine.Println("Goodbye!")
	return ErrExit
}

// StaticCommand prints fixed text loaded from a command file
type StaticCommand struct {
	spec CommandSpec
}

func (s *StaticCommand) Name() string        { return s.spec.Name }
func (s *StaticCommand) Description() string { return s.spec.Description }

func (s *StaticCommand) Execute(args []string, sh *Shell) error {
	if s.spec.Output == "" {
		return nil
	}
	sh.engine.Println(strings.TrimRight(s.spec.Output, "\n"))
	return nil
}
