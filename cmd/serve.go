package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alantheprice/localecho/pkg/demo"
	"github.com/alantheprice/localecho/pkg/webui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a browser terminal",
	Long: `Starts a web server whose page hosts a terminal emulator. Every browser
connection gets its own line editor and demo shell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("commands") {
			cfg.CommandsFile, _ = cmd.Flags().GetString("commands")
		}
		if cmd.Flags().Changed("watch") {
			cfg.WatchCommands, _ = cmd.Flags().GetBool("watch")
		}
		if err := cfg.Validate(); err != nil {
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

		if !webui.CheckPortAvailable(cfg.Port) {
			port := webui.FindAvailablePort(cfg.Port + 1)
			fmt.Fprintf(os.Stderr, "Port %d is in use, using %d\n", cfg.Port, port)
			cfg.Port = port
		}

		server := webui.NewServer(webui.Options{
			Host:   cfg.Host,
			Port:   cfg.Port,
			Engine: engineOptions(cfg, logger),
			Logger: logger,
			Session: func(ctx context.Context, s *webui.Session) error {
				return demo.NewShell(s.Engine(), registry, shellOptions(cfg, logger)).Run(ctx)
			},
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("Web terminal at http://%s\n", server.Addr())

		<-ctx.Done()
		return server.Shutdown()
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "Interface to listen on")
	serveCmd.Flags().Int("port", 54321, "Port to listen on")
	serveCmd.Flags().String("commands", "", "JSON file of extra shell commands")
	serveCmd.Flags().Bool("watch", false, "Reload the commands file when it changes")
}
