package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/gcpwatch/internal/config"
	"github.com/ppiankov/gcpwatch/internal/server"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over streamable HTTP",
	Long: "Runs gcpwatch as a stateless streamable-HTTP MCP endpoint.\n" +
		"Callers authenticate each request with \"Authorization: Bearer <token>\".\n" +
		"The log level in the config file is hot-reloaded.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	tools, err := a.mcpServer()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(server.Config{
		Addr:               addr,
		Path:               a.cfg.Server.Path,
		CORSAllowedOrigins: a.cfg.Server.CORSAllowedOrigins,
		ShutdownTimeout:    a.cfg.Server.ShutdownTimeout,
	}, tools.Handler(), a.metrics, a.logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reloader, err := config.NewReloader(a.cfg.File, a.level, a.logger)
	if err != nil {
		a.logger.Warn("hot-reload disabled", zap.Error(err))
	} else {
		go func() { _ = reloader.Run(ctx) }()
	}

	a.logger.Info("gcpwatch starting",
		zap.String("version", config.Version),
		zap.String("config", a.cfg.File),
		zap.Int("audit_concurrency", a.cfg.Audit.Concurrency),
		zap.Int("audit_max_children", a.cfg.Audit.MaxChildren))

	return srv.Serve(ctx)
}
