package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stdioCmd)
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Start the MCP server on stdio",
	Long: "Runs gcpwatch as an MCP server over stdin/stdout for local agents.\n" +
		"There are no request headers on stdio, so every tool call must pass its\n" +
		"access token in the \"token\" argument. Logs go to stderr.",
	RunE: runStdio,
}

func runStdio(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	tools, err := a.mcpServer()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.logger.Info("gcpwatch MCP server running on stdio")
	return tools.Run(ctx)
}
