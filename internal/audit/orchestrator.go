// Package audit fans a service-enablement check out across every project
// under an organization or folder and aggregates the outcomes.
package audit

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/metrics"
	"github.com/ppiankov/gcpwatch/internal/narrate"
	"github.com/ppiankov/gcpwatch/internal/provider"
	"github.com/ppiankov/gcpwatch/internal/ratelimit"
	"github.com/ppiankov/gcpwatch/internal/scope"
	"github.com/ppiankov/gcpwatch/internal/tracer"
)

// DefaultService is the service whose enablement is audited.
const DefaultService = "servicehealth.googleapis.com"

// Options are process-wide audit settings. They are fixed at startup.
type Options struct {
	Service     string
	Concurrency int
	MaxChildren int
	Recursive   bool
	CallTimeout time.Duration
	RateQPS     float64
	Retry       ratelimit.RetryPolicy
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Service:     DefaultService,
		Concurrency: 8,
		MaxChildren: 500,
		Recursive:   true,
		CallTimeout: 60 * time.Second,
		RateQPS:     10,
		Retry:       ratelimit.DefaultRetryPolicy,
	}
}

// Request is one audit call.
type Request struct {
	Root scope.Scope
	// Recursive overrides Options.Recursive when non-nil.
	Recursive *bool
	// MaxChildren lowers Options.MaxChildren when positive.
	MaxChildren int
}

// Orchestrator runs audits. It holds no per-call state and is safe for
// concurrent use.
type Orchestrator struct {
	opts     Options
	narrator *narrate.Narrator
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates an Orchestrator. Zero option values fall back to defaults.
func New(opts Options, narrator *narrate.Narrator, logger *zap.Logger, m *metrics.Metrics) *Orchestrator {
	def := DefaultOptions()
	if opts.Service == "" {
		opts.Service = def.Service
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = def.Concurrency
	}
	if opts.MaxChildren < 1 {
		opts.MaxChildren = def.MaxChildren
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = def.Retry
	}
	if narrator == nil {
		narrator = narrate.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{opts: opts, narrator: narrator, logger: logger, metrics: m}
}

// Options returns the effective settings.
func (o *Orchestrator) Options() Options { return o.opts }

// slots is the index-addressed result table shared with the workers. Once
// finalized, late writes are dropped.
type slots struct {
	mu        sync.Mutex
	outcomes  []ChildOutcome
	finalized bool
}

func (s *slots) set(i int, fn func(*ChildOutcome)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}
	fn(&s.outcomes[i])
}

// finalize freezes the table, failing every non-terminal child with
// DeadlineExceeded. It reports whether any child was cut off.
func (s *slots) finalize() ([]ChildOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true
	cut := false
	out := make([]ChildOutcome, len(s.outcomes))
	for i, c := range s.outcomes {
		if !c.State.Terminal() {
			c.State = StateFailedTerminal
			c.Record = nil
			c.Failure = &Failure{Kind: errs.KindDeadline, Reason: "call deadline exceeded before the check completed"}
			cut = true
		}
		out[i] = c
	}
	return out, cut
}

// Run audits every active project under req.Root. A failure to list the root
// is returned as an error; everything after discovery is reported per child.
// When ctx or the call timeout expires, Run returns at once with the
// unfinished children marked DeadlineExceeded.
func (o *Orchestrator) Run(ctx context.Context, client provider.Client, req Request) (*Report, error) {
	if req.Root.Kind() != scope.KindOrganization && req.Root.Kind() != scope.KindFolder {
		return nil, errs.Validation("audit root must be an organization or folder")
	}

	start := time.Now()
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}
	// Abandoned workers observe this cancellation and stop promptly.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	auditID := tracer.NewAuditID()
	ctx, span := tracer.Start(ctx, "audit.run",
		attribute.String("gcpwatch.root", req.Root.String()),
		attribute.String("gcpwatch.audit_id", auditID))
	defer span.End()

	limit := o.opts.MaxChildren
	if req.MaxChildren > 0 && req.MaxChildren < limit {
		limit = req.MaxChildren
	}
	recursive := o.opts.Recursive
	if req.Recursive != nil {
		recursive = *req.Recursive
	}

	pacer := ratelimit.NewPacer(ratelimit.PacerConfig{QPS: o.opts.RateQPS, Burst: o.opts.Concurrency})
	log := o.logger.With(
		zap.String("request_id", tracer.RequestID(ctx)),
		zap.String("audit_id", auditID),
		zap.String("root", req.Root.String()),
	)

	found, err := o.discover(ctx, client, pacer, req.Root, limit, recursive)
	if err != nil {
		log.Warn("root listing failed", zap.String("kind", string(errs.KindOf(err))))
		return nil, err
	}
	log.Info("discovery complete",
		zap.Int("children", len(found.children)),
		zap.Bool("truncated", found.truncated),
		zap.Int("unreachable", len(found.unreachable)))
	if found.truncated {
		o.metrics.IncrementTruncated()
	}

	table := &slots{outcomes: make([]ChildOutcome, len(found.children))}
	for i, c := range found.children {
		table.outcomes[i] = ChildOutcome{Scope: c.scope, State: StatePending}
	}

	if ctx.Err() == nil && len(found.children) > 0 {
		o.dispatch(ctx, client, pacer, found.children, table, log)
	}

	children, cut := table.finalize()
	if !cut && ctx.Err() != nil {
		for _, c := range children {
			if c.Failure != nil && c.Failure.Kind == errs.KindDeadline {
				cut = true
				break
			}
		}
	}
	report := &Report{
		Root:             req.Root.String(),
		Service:          o.opts.Service,
		Children:         children,
		Truncated:        found.truncated,
		DeadlineExceeded: cut,
		Unreachable:      found.unreachable,
	}
	report.finish()

	for _, c := range report.Children {
		kind := ""
		if c.Failure != nil {
			kind = string(c.Failure.Kind)
		}
		o.metrics.ObserveChild(string(c.State), kind)
	}
	if cut {
		log.Warn("audit deadline exceeded", zap.Int("failed", report.Summary.Failed))
	}
	log.Info("audit complete",
		zap.Int("total", report.Summary.Total),
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("flagged", report.Summary.Flagged),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

// dispatch runs the checks on a fixed pool of workers pulling indices from a
// queue. It returns when every worker is done or ctx ends, whichever is
// first; in the latter case workers still running are abandoned.
func (o *Orchestrator) dispatch(ctx context.Context, client provider.Client, pacer *ratelimit.Pacer, children []child, table *slots, log *zap.Logger) {
	queue := make(chan int, len(children))
	for i := range children {
		queue <- i
	}
	close(queue)

	workers := min(o.opts.Concurrency, len(children))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if ctx.Err() != nil {
					return
				}
				o.check(ctx, client, pacer, i, children[i], table, log)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// check runs one child through InFlight to a terminal state.
func (o *Orchestrator) check(ctx context.Context, client provider.Client, pacer *ratelimit.Pacer, i int, c child, table *slots, log *zap.Logger) {
	ctx, span := tracer.Start(ctx, "audit.check", attribute.String("gcpwatch.scope", c.scope))

	table.set(i, func(out *ChildOutcome) { out.State = StateInFlight })

	state, attempts, err := ratelimit.Retry(ctx, o.opts.Retry, func(ctx context.Context) (*provider.ServiceState, error) {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		table.set(i, func(out *ChildOutcome) { out.State = StateInFlight })
		return client.GetServiceState(ctx, c.scope, o.opts.Service)
	}, func(attempt int, err error, wait time.Duration) {
		table.set(i, func(out *ChildOutcome) {
			out.State = StateFailedRetryable
			out.Attempts = attempt
		})
		o.metrics.IncrementRetries()
		log.Debug("retrying child check",
			zap.String("scope", c.scope),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait))
	})

	if err == nil && state == nil {
		err = errs.Internal("provider returned no service state")
	}
	if err != nil {
		err = errs.Classify(err, c.scope)
		table.set(i, func(out *ChildOutcome) {
			out.State = StateFailedTerminal
			out.Attempts = attempts
			out.Failure = failureFor(err)
		})
		tracer.End(span, string(errs.KindOf(err)), err)
		return
	}

	rec := o.narrator.ProjectFinding(c.scope, c.displayName, o.opts.Service, state.Enabled())
	table.set(i, func(out *ChildOutcome) {
		out.State = StateSucceeded
		out.Attempts = attempts
		out.Record = &rec
	})
	tracer.End(span, "", nil)
}
