// Package commands implements the collector's CLI, grounded on the
// teacher's cmd/dittofs/commands cobra layout.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time via -ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Breakpad-format crash collector",
	Long: `collector accepts Breakpad-format crash reports over HTTP, throttles
and assigns each an identifier, and hands it off asynchronously to a
configured storage and publish backend.

Use "collector [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/antenna/config.yaml, env vars take precedence regardless)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// ExitCodeFor maps an error from Execute to one of the process exit
// codes named in spec.md §7.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case isVerificationError(err):
		return 3
	case isConfigError(err):
		return 4
	default:
		return 1
	}
}
