package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gcpwatch",
	Short: "Read-only Google Cloud health and inventory tools for MCP agents",
	Long: "Serves Personalized Service Health events, Cloud Asset Inventory search and\n" +
		"organization-wide Service Health enablement audits over the Model Context Protocol.\n" +
		"Every call runs with the caller's own access token; nothing is stored.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ./gcpwatch.yaml if present)")
}

// Execute runs the root command.
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs rootCmd with args and returns the process exit code. Errors
// are printed once to stderr.
func execute(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if errs.KindOf(err) == errs.KindConfiguration {
			return 78 // EX_CONFIG
		}
		return 1
	}
	return 0
}
