// Package server serves the MCP endpoint over streamable HTTP alongside
// health and metrics routes.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mssola/useragent"
	"go.uber.org/zap"

	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/metrics"
	"github.com/ppiankov/gcpwatch/internal/tracer"
)

const requestIDHeader = "X-Request-Id"

// Config holds HTTP server configuration.
type Config struct {
	Addr               string
	Path               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Server is the HTTP front of the MCP tools.
type Server struct {
	cfg     Config
	handler http.Handler
	logger  *zap.Logger
}

// New mounts mcpHandler at cfg.Path. m may be nil, in which case /metrics is
// not served.
func New(cfg Config, mcpHandler http.Handler, m *metrics.Metrics, logger *zap.Logger) *Server {
	if cfg.Path == "" {
		cfg.Path = "/mcp"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: logger.Named("http")}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins(cfg.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version", requestIDHeader},
		ExposedHeaders: []string{"Mcp-Session-Id", requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}
	r.Handle(cfg.Path, mcpHandler)

	s.handler = r
	return s
}

// Handler returns the routed handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errs.Configuration("failed to listen on " + s.cfg.Addr).WithCause(err)
	}
	return s.ServeOn(ctx, lis)
}

// ServeOn serves on lis until ctx is cancelled.
func (s *Server) ServeOn(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", lis.Addr().String()), zap.String("path", s.cfg.Path))
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func origins(allowed []string) []string {
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

// requestID propagates or mints a request ID. It is copied onto the inbound
// header so the MCP handler sees it in the call's request extras.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = tracer.NewRequestID()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(tracer.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("request_id", tracer.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
			zap.String("client", clientFamily(r.UserAgent())))
	})
}

// clientFamily reduces a User-Agent to "<browser>/<version>", "bot" or the
// raw product token for non-browser clients.
func clientFamily(ua string) string {
	if ua == "" {
		return "unknown"
	}
	parsed := useragent.New(ua)
	if parsed.Bot() {
		return "bot"
	}
	name, version := parsed.Browser()
	if name == "" {
		return "unknown"
	}
	if version == "" {
		return name
	}
	return name + "/" + version
}
