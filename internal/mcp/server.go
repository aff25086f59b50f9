// Package mcp exposes the health and inventory tools over the Model Context
// Protocol. Every call builds its own provider client from the caller's
// credential and discards it when the call returns.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ppiankov/gcpwatch/internal/audit"
	"github.com/ppiankov/gcpwatch/internal/credential"
	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/metrics"
	"github.com/ppiankov/gcpwatch/internal/narrate"
	"github.com/ppiankov/gcpwatch/internal/provider"
	"github.com/ppiankov/gcpwatch/internal/scope"
	"github.com/ppiankov/gcpwatch/internal/tracer"
)

// Tool names.
const (
	ToolListActiveEvents  = "list_active_events"
	ToolListOrgEvents     = "list_org_events"
	ToolGetEventDetails   = "get_event_details"
	ToolListProjectsNoPSH = "list_projects_without_service_health"
	ToolSearchResources   = "search_resources"
)

const (
	requestIDHeader = "X-Request-Id"
	outcomeOK       = "ok"
	implementation  = "gcpwatch"
	defaultVersion  = "dev"
)

// Limits bound list sizes for the event and search tools.
type Limits struct {
	DefaultResults int
	MaxResults     int
	SearchPageSize int
}

// DefaultLimits returns 10/100 events and 50 search results per page.
func DefaultLimits() Limits {
	return Limits{DefaultResults: 10, MaxResults: 100, SearchPageSize: 50}
}

// Config holds MCP server dependencies.
type Config struct {
	Factory      provider.ClientFactory
	Orchestrator *audit.Orchestrator
	Narrator     *narrate.Narrator
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Limits       Limits
	Version      string
}

// Server wraps the MCP SDK server with the gcpwatch tools.
type Server struct {
	mcpServer *mcpsdk.Server
	factory   provider.ClientFactory
	orch      *audit.Orchestrator
	narrator  *narrate.Narrator
	logger    *zap.Logger
	metrics   *metrics.Metrics
	limits    Limits
	validate  *validator.Validate
}

// New creates an MCP server with all tools registered.
func New(cfg Config) (*Server, error) {
	if cfg.Factory == nil {
		return nil, errs.Configuration("mcp server requires a client factory")
	}
	if cfg.Narrator == nil {
		cfg.Narrator = narrate.New(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Orchestrator == nil {
		cfg.Orchestrator = audit.New(audit.DefaultOptions(), cfg.Narrator, cfg.Logger, cfg.Metrics)
	}
	def := DefaultLimits()
	if cfg.Limits.DefaultResults < 1 {
		cfg.Limits.DefaultResults = def.DefaultResults
	}
	if cfg.Limits.MaxResults < cfg.Limits.DefaultResults {
		cfg.Limits.MaxResults = max(def.MaxResults, cfg.Limits.DefaultResults)
	}
	if cfg.Limits.SearchPageSize < 1 {
		cfg.Limits.SearchPageSize = def.SearchPageSize
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}

	validate := scope.NewValidator()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Server{
		factory:  cfg.Factory,
		orch:     cfg.Orchestrator,
		narrator: cfg.Narrator,
		logger:   cfg.Logger.Named("mcp"),
		metrics:  cfg.Metrics,
		limits:   cfg.Limits,
		validate: validate,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    implementation,
			Version: cfg.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run serves on the stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Handler returns a stateless streamable-HTTP handler. The Authorization
// header of each POST reaches the tools through the request extras.
func (s *Server) Handler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(
		func(*http.Request) *mcpsdk.Server { return s.mcpServer },
		&mcpsdk.StreamableHTTPOptions{Stateless: true, JSONResponse: true},
	)
}

// SDK returns the underlying SDK server.
func (s *Server) SDK() *mcpsdk.Server {
	return s.mcpServer
}

// registerTools adds all gcpwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        ToolListActiveEvents,
		Description: "List active Personalized Service Health events (outages, maintenance) affecting a project.",
	}, s.handleListActiveEvents)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        ToolListOrgEvents,
		Description: "List active service health events across an organization, aggregated over one or more locations.",
	}, s.handleListOrgEvents)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        ToolGetEventDetails,
		Description: "Get the full timeline, narrative and workarounds for one project or organization event.",
	}, s.handleGetEventDetails)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        ToolListProjectsNoPSH,
		Description: "Audit every project under an organization or folder and report those where the Service Health API is disabled.",
	}, s.handleListProjectsWithoutServiceHealth)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        ToolSearchResources,
		Description: "Search active resources with Cloud Asset Inventory. Returns one page; pass next_page_token back to continue.",
	}, s.handleSearchResources)
}

// call runs the shared tool pipeline: validate input, resolve the
// credential, build a client for this call only, run fn, release the client.
// Nothing is sent to the provider when validation or authentication fails.
func (s *Server) call(ctx context.Context, req *mcpsdk.CallToolRequest, tool string, input any, token string, fn func(context.Context, provider.Client) error) (err error) {
	start := time.Now()
	header := requestHeader(req)
	if id := header.Get(requestIDHeader); id != "" && len(id) <= 64 && tracer.RequestID(ctx) == "" {
		ctx = tracer.WithRequestID(ctx, id)
	}
	ctx, reqID := tracer.EnsureRequestID(ctx)
	ctx, span := tracer.Start(ctx, "tool."+tool, attribute.String("gcpwatch.tool", tool))

	log := s.logger.With(zap.String("tool", tool), zap.String("request_id", reqID))
	var source credential.Source

	defer func() {
		if err != nil {
			err = errs.Classify(err, "")
		}
		outcome := outcomeOK
		if err != nil {
			outcome = string(errs.KindOf(err))
		}
		d := time.Since(start)
		s.metrics.ObserveTool(tool, outcome, d)
		tracer.End(span, outcome, err)

		fields := []zap.Field{zap.String("outcome", outcome), zap.Duration("duration", d)}
		if source != "" {
			fields = append(fields, zap.String("credential_source", string(source)))
		}
		if err != nil {
			log.Warn("tool call failed", append(fields, zap.String("error", err.Error()))...)
		} else {
			log.Info("tool call", fields...)
		}
	}()

	if err := s.validate.Struct(input); err != nil {
		return validationError(err)
	}
	if c, ok := input.(checker); ok {
		if err := c.check(); err != nil {
			return err
		}
	}

	cred, err := credential.FromRequest(header, token)
	if err != nil {
		return err
	}
	source = cred.Source()

	client, err := s.factory.New(ctx, cred)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

// checker is implemented by inputs with cross-field rules.
type checker interface {
	check() error
}

func requestHeader(req *mcpsdk.CallToolRequest) http.Header {
	if req == nil || req.Extra == nil || req.Extra.Header == nil {
		return http.Header{}
	}
	return req.Extra.Header
}

// validationError names the first offending argument without echoing its
// value.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		if fe.Tag() == "required" {
			return errs.Validation(fmt.Sprintf("%s is required", field))
		}
		return errs.Validation(fmt.Sprintf("invalid %s", field))
	}
	return errs.Validation("invalid arguments").WithCause(err)
}
