package ratelimit

import "time"

// RetryPolicy bounds retries of transient provider failures.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single attempt.
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	BaseDelay   time.Duration `mapstructure:"base_delay" validate:"min=0"`
	MaxDelay    time.Duration `mapstructure:"max_delay" validate:"gtefield=BaseDelay"`
}

// DefaultRetryPolicy is three attempts, 250ms doubling to at most 4s.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   250 * time.Millisecond,
	MaxDelay:    4 * time.Second,
}

// attempts returns the effective attempt count.
func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// PacerConfig sets the per-call request rate. Zero QPS means no pacing.
type PacerConfig struct {
	QPS   float64
	Burst int
}

// HasLimit returns true if pacing is configured.
func (c PacerConfig) HasLimit() bool {
	return c.QPS > 0
}
