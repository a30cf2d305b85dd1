// Package demo is a small shell that drives a console.Engine: it reads
// lines, runs builtin or file-defined commands and completes their names.
package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/alantheprice/localecho/pkg/completion"
	"github.com/alantheprice/localecho/pkg/console"
)

// DefaultPrompt is used when ShellOptions.Prompt is empty
const DefaultPrompt = "$ "

// ShellOptions configures a Shell
type ShellOptions struct {
	Prompt       string
	Continuation string
	Banner       string
	Logger       console.Logger
}

// Shell reads and runs commands on an engine
type Shell struct {
	engine   *console.Engine
	registry *CommandRegistry
	opts     ShellOptions
	handler  console.HandlerID
}

// NewShell creates a shell on engine using the commands in registry
func NewShell(engine *console.Engine, registry *CommandRegistry, opts ShellOptions) *Shell {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Continuation == "" {
		opts.Continuation = console.DefaultContinuation
	}
	if opts.Logger == nil {
		opts.Logger = console.DiscardLogger{}
	}
	return &Shell{engine: engine, registry: registry, opts: opts}
}

// Run reads and executes lines until exit is entered, the context ends or
// the read is aborted. Completion of command names is active while it runs.
func (s *Shell) Run(ctx context.Context) error {
	s.handler = s.engine.AddAutocompleteHandler(s.complete)
	defer s.engine.RemoveAutocompleteHandler(s.handler)

	if s.opts.Banner != "" {
		s.engine.Println(s.opts.Banner)
	}

	for {
		pending, err := s.engine.Read(s.opts.Prompt, s.opts.Continuation)
		if err != nil {
			return fmt.Errorf("failed to start read: %w", err)
		}

		line, err := pending.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.engine.AbortRead("session closed")
				return ctx.Err()
			}
			if console.IsAbort(err) {
				return nil
			}
			return err
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			s.engine.Println(err.Error())
		}
	}
}

// Execute runs one input line
func (s *Shell) Execute(line string) error {
	tokens := completion.Tokenize(line)
	if len(tokens) == 0 {
		return nil
	}

	cmd, ok := s.registry.GetCommand(tokens[0])
	if !ok {
		return fmt.Errorf("%s: command not found", tokens[0])
	}
	s.opts.Logger.Logf("shell: %s", line)
	return cmd.Execute(tokens[1:], s)
}

// complete offers command names for the first token
func (s *Shell) complete(index int, tokens []string, args ...any) ([]string, error) {
	if index != 0 {
		return nil, nil
	}
	return s.registry.Names(), nil
}
