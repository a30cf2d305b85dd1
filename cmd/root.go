package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alantheprice/localecho/pkg/configuration"
	"github.com/alantheprice/localecho/pkg/console"
	"github.com/alantheprice/localecho/pkg/demo"
	"github.com/alantheprice/localecho/pkg/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "localecho",
	Short: "Local line editing for terminals without a shell",
	Long: `localecho edits input locally for a terminal that has no shell behind it:
prompt editing, history, multi-line continuation and completion are all
reproduced with ANSI output.

Available commands:
  serve    - Serve a browser terminal over websockets
  local    - Run the demo shell in this terminal
  version  - Print version information`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.localecho/config.json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(localCmd)
}

func loadConfig() (*configuration.Config, error) {
	if cfgFile != "" {
		return configuration.LoadFrom(cfgFile)
	}
	return configuration.Load()
}

func openLogger(cfg *configuration.Config) (*utils.Logger, error) {
	path, err := cfg.GetLogPath()
	if err != nil {
		return nil, err
	}
	logger, err := utils.NewLogger(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}

func engineOptions(cfg *configuration.Config, logger console.Logger) console.Options {
	return console.Options{
		HistorySize:            cfg.HistorySize,
		MaxAutocompleteEntries: cfg.MaxAutocompleteEntries,
		TabWidth:               cfg.TabWidth,
		EraseCtrlH:             cfg.EraseCtrlH,
		Logger:                 logger,
	}
}

func shellOptions(cfg *configuration.Config, logger console.Logger) demo.ShellOptions {
	return demo.ShellOptions{
		Prompt:       cfg.Prompt,
		Continuation: cfg.Continuation,
		Banner:       cfg.Banner,
		Logger:       logger,
	}
}

// loadCommands builds the command registry, loading and optionally watching
// the configured command file. The returned stop func is never nil.
func loadCommands(cfg *configuration.Config, logger console.Logger) (*demo.CommandRegistry, func(), error) {
	registry := demo.NewCommandRegistry()
	if cfg.CommandsFile == "" {
		return registry, func() {}, nil
	}

	if cfg.WatchCommands {
		watcher, err := demo.WatchCommands(cfg.CommandsFile, registry, logger, nil)
		if err != nil {
			return nil, nil, err
		}
		return registry, watcher.Stop, nil
	}

	specs, err := demo.LoadCommands(cfg.CommandsFile)
	if err != nil {
		return nil, nil, err
	}
	if err := registry.SetLoaded(specs); err != nil {
		logger.Logf("commands: %v", err)
	}
	return registry, func() {}, nil
}
