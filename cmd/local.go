package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/localecho/pkg/configuration"
	"github.com/alantheprice/localecho/pkg/console"
	"github.com/alantheprice/localecho/pkg/demo"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Run the demo shell in this terminal",
	Long: `Puts this terminal into raw mode and lets the line editor handle all
input, the same way it does for a browser terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := localConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := openLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Close()

		registry, stopWatching, err := loadCommands(cfg, logger)
		if err != nil {
			return err
		}
		defer stopWatching()

		// a signal or panic must not leave the tty in raw mode
		cleanup := console.NewCleanupHandler()
		defer cleanup.EnsureCleanup()

		terminal := console.NewLocalTerminal(os.Stdin, os.Stdout)
		if err := terminal.Start(); err != nil {
			return err
		}
		cleanup.Register(terminal.Close)

		engine := console.NewEngine(engineOptions(cfg, logger))
		if err := engine.Attach(terminal); err != nil {
			return fmt.Errorf("failed to attach terminal: %w", err)
		}
		defer engine.Detach()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			select {
			case <-terminal.Done():
				cancel()
			case <-ctx.Done():
			}
		}()

		err = demo.NewShell(engine, registry, shellOptions(cfg, logger)).Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// localConfig loads the config and applies the local command's flags
func localConfig(cmd *cobra.Command) (*configuration.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("commands") {
		cfg.CommandsFile, _ = cmd.Flags().GetString("commands")
	}
	if cmd.Flags().Changed("watch") {
		cfg.WatchCommands, _ = cmd.Flags().GetBool("watch")
	}
	if cmd.Flags().Changed("erase-ctrl-h") {
		cfg.EraseCtrlH, _ = cmd.Flags().GetBool("erase-ctrl-h")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	localCmd.Flags().String("commands", "", "JSON file of extra shell commands")
	localCmd.Flags().Bool("watch", false, "Reload the commands file when it changes")
	localCmd.Flags().Bool("erase-ctrl-h", false, "Treat ^H as backspace (for stty erase ^H)")
}
