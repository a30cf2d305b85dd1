package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/alantheprice/localecho/pkg/configuration"
	"github.com/alantheprice/localecho/pkg/console"
)

// Set at build time with -ldflags "-X github.com/alantheprice/localecho/cmd.version=..."
var (
	version   = "dev"
	gitCommit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version of this binary together with the config file it reads
and the line editor settings that config resolves to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfgFile
		if path == "" {
			if path, err = configuration.GetConfigPath(); err != nil {
				return err
			}
		}
		printVersionInfo(cmd.OutOrStdout(), path, engineOptions(cfg, console.DiscardLogger{}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("localecho version {{.Version}}\n")
}

func printVersionInfo(w io.Writer, configPath string, opts console.Options) {
	fmt.Fprintf(w, "localecho version %s\n", version)
	if gitCommit != "" {
		fmt.Fprintf(w, "Git commit: %s\n", gitCommit)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		fmt.Fprintf(w, "Module version: %s\n", info.Main.Version)
	}
	fmt.Fprintf(w, "Go version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	fmt.Fprintf(w, "Config: %s\n", configPath)
	fmt.Fprintf(w, "History size: %d\n", opts.HistorySize)
	fmt.Fprintf(w, "Max completions listed: %d\n", opts.MaxAutocompleteEntries)
	fmt.Fprintf(w, "Tab width: %d\n", opts.TabWidth)
	fmt.Fprintf(w, "Erase with ^H: %t\n", opts.EraseCtrlH)
}
