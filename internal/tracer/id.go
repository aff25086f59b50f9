// Package tracer carries per-call request IDs and wraps OpenTelemetry spans.
package tracer

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type ctxKey struct{}

// NewRequestID returns a request ID of the form "req-<12 hex>".
func NewRequestID() string {
	return prefixedID("req", 12)
}

// NewAuditID returns an audit ID of the form "aud-<12 hex>".
func NewAuditID() string {
	return prefixedID("aud", 12)
}

func prefixedID(prefix string, hexLen int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + id[:hexLen]
}

// WithRequestID stores id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the ID stored on ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// EnsureRequestID returns ctx carrying a request ID, minting one if needed.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestID(ctx); id != "" {
		return ctx, id
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
