package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

// Pacer spaces outbound provider requests within one call. A nil Pacer
// never waits.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a token bucket for cfg, or nil when cfg has no limit.
func NewPacer(cfg PacerConfig) *Pacer {
	if !cfg.HasLimit() {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(cfg.QPS), burst)}
}

// Wait blocks until a request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		// rate.Limiter reports "would exceed deadline" before the deadline
		// actually passes; both mean the call ran out of time.
		return errs.Deadline("call deadline exceeded").WithCause(err)
	}
	return nil
}
