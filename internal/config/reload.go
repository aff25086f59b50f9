package config

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

const reloadDebounce = 500 * time.Millisecond

// Reloader watches the config file and applies the log level on change.
// Every other setting is fixed at startup.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	level   zap.AtomicLevel
	logger  *zap.Logger
	applied chan string
}

// NewReloader watches path. An empty or missing path yields a Reloader whose
// Run only waits for ctx.
func NewReloader(path string, level zap.AtomicLevel, logger *zap.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Configuration("failed to create file watcher").WithCause(err)
	}

	watched := ""
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := watcher.Add(path); err != nil {
				_ = watcher.Close()
				return nil, errs.Configuration("failed to watch config file").WithCause(err)
			}
			watched = path
		}
	}

	return &Reloader{
		watcher: watcher,
		path:    watched,
		level:   level,
		logger:  logger,
		applied: make(chan string, 1),
	}, nil
}

// Applied delivers the level name after each successful reload. Sends never
// block; a slow reader sees only the latest value.
func (r *Reloader) Applied() <-chan string {
	return r.applied
}

// Run blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (r *Reloader) reload() {
	cfg, err := Load(r.path)
	if err != nil {
		r.logger.Warn("config reload failed", zap.String("kind", string(errs.KindOf(err))), zap.Error(err))
		return
	}
	lvl, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		r.logger.Warn("config reload failed", zap.Error(err))
		return
	}
	if lvl != r.level.Level() {
		r.level.SetLevel(lvl)
		r.logger.Info("log level reloaded", zap.String("level", lvl.String()))
	}

	select {
	case <-r.applied:
	default:
	}
	select {
	case r.applied <- lvl.String():
	default:
	}
}
