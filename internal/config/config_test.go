package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcpwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/mcp", cfg.Server.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "servicehealth.googleapis.com", cfg.Audit.Service)
	assert.Equal(t, 8, cfg.Audit.Concurrency)
	assert.Equal(t, 500, cfg.Audit.MaxChildren)
	assert.True(t, cfg.Audit.Recursive)
	assert.Equal(t, 60*time.Second, cfg.Audit.CallTimeout)
	assert.Equal(t, 3, cfg.Audit.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Audit.Retry.BaseDelay)
	assert.Equal(t, 10, cfg.Events.DefaultResults)
	assert.Equal(t, 100, cfg.Events.MaxResults)
	assert.Equal(t, 50, cfg.Search.PageSize)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9090"
log:
  level: debug
audit:
  concurrency: 4
  call_timeout: 5s
  retry:
    max_attempts: 5
gcp:
  endpoints:
    cloud_asset: "http://127.0.0.1:1234"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Audit.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Audit.CallTimeout)
	assert.Equal(t, 5, cfg.Audit.Retry.MaxAttempts)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.GCP.Endpoints.CloudAsset)

	opts := cfg.Audit.Options()
	assert.Equal(t, 4, opts.Concurrency)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.GCP.Factory().Endpoints.CloudAsset)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GCPWATCH_AUDIT_CONCURRENCY", "16")
	t.Setenv("GCPWATCH_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Audit.Concurrency)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GCPWATCH_SEARCH_PAGE_SIZE=25\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("GCPWATCH_SEARCH_PAGE_SIZE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Search.PageSize)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"level":        "log:\n  level: loud\n",
		"concurrency":  "audit:\n  concurrency: 0\n",
		"endpoint":     "gcp:\n  endpoints:\n    service_usage: \"not a url\"\n",
		"results":      "events:\n  default_results: 500\n  max_results: 100\n",
		"retry":        "audit:\n  retry:\n    base_delay: 10s\n    max_delay: 1s\n",
		"server path":  "server:\n  path: mcp\n",
		"syntax error": "server: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
}

func TestReloaderAppliesLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	r, err := NewReloader(path, level, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	select {
	case got := <-r.Applied():
		assert.Equal(t, "debug", got)
	case <-time.After(5 * time.Second):
		t.Fatal("reload not applied")
	}
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	cancel()
	require.NoError(t, <-done)
}

func TestReloaderWithoutFile(t *testing.T) {
	r, err := NewReloader("", zap.NewAtomicLevel(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx))
}
