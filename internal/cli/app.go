package cli

import (
	"go.uber.org/zap"

	"github.com/ppiankov/gcpwatch/internal/audit"
	"github.com/ppiankov/gcpwatch/internal/config"
	"github.com/ppiankov/gcpwatch/internal/gcp"
	"github.com/ppiankov/gcpwatch/internal/logging"
	"github.com/ppiankov/gcpwatch/internal/mcp"
	"github.com/ppiankov/gcpwatch/internal/metrics"
	"github.com/ppiankov/gcpwatch/internal/narrate"
)

// app is the wired process: configuration plus the long-lived, immutable
// components shared by every call.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	level    zap.AtomicLevel
	metrics  *metrics.Metrics
	factory  *gcp.Factory
	narrator *narrate.Narrator
	orch     *audit.Orchestrator
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, level, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	factory, err := gcp.NewFactory(cfg.GCP.Factory(), m)
	if err != nil {
		return nil, err
	}

	narrator := narrate.New(nil)
	return &app{
		cfg:      cfg,
		logger:   logger,
		level:    level,
		metrics:  m,
		factory:  factory,
		narrator: narrator,
		orch:     audit.New(cfg.Audit.Options(), narrator, logger, m),
	}, nil
}

func (a *app) mcpServer() (*mcp.Server, error) {
	return mcp.New(mcp.Config{
		Factory:      a.factory,
		Orchestrator: a.orch,
		Narrator:     a.narrator,
		Logger:       a.logger,
		Metrics:      a.metrics,
		Limits: mcp.Limits{
			DefaultResults: a.cfg.Events.DefaultResults,
			MaxResults:     a.cfg.Events.MaxResults,
			SearchPageSize: a.cfg.Search.PageSize,
		},
		Version: config.Version,
	})
}

func (a *app) close() {
	_ = a.logger.Sync()
}
