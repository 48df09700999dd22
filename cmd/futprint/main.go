package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"futprint/internal/version"
)

// newRootCmd assembles the CLI. Each call returns an independent tree so
// tests can execute commands with their own flags.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "futprint",
		Short: "Pretty-print futures::detail::future_state values from debuggee images",
		Long: `futprint decodes the futures library's internal tagged union
(future_state) and its helper types from a debuggee memory image and
renders them as a tree, the way a debugger pretty-printer would.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: preRun,
		PersistentPostRun: postRun,
	}

	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newPrintCmd())
	rootCmd.AddCommand(newTypesCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newVersionCmd())

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to futprint.toml (default: search upward from the working directory)")
	flags.String("env-file", "", "load environment variables from this file (default: .env if present)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|session|value|printer|debug)")
	flags.String("trace-mode", "", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 0, "ring buffer size for ring and both modes")

	return rootCmd
}

// main executes the root command and exits with status 1 on error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // descriptors fit in int
}
