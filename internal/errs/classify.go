package errs

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// rateLimitReasons are googleapi error reasons that arrive as 403 but mean
// "slow down" rather than "forbidden".
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
	"RATE_LIMIT_EXCEEDED":   true,
}

// Classify converts a provider error into an *Error. Errors that are already
// classified pass through unchanged; nil stays nil. scope, if non-empty, is
// attached to the result.
func Classify(err error, scope string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if scope != "" && e.Scope == "" {
			return e.WithScope(scope)
		}
		return e
	}

	out := classify(err).WithCause(err)
	if scope != "" {
		out = out.WithScope(scope)
	}
	return out
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Deadline("call deadline exceeded")
	case errors.Is(err, context.Canceled):
		return Deadline("call canceled")
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fromHTTPStatus(gerr.Code, gerr.Errors)
	}

	if st, ok := status.FromError(err); ok {
		return fromGRPCCode(st.Code())
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return Transient("provider request timed out")
	}

	return Internal("unexpected provider failure")
}

func fromHTTPStatus(code int, items []googleapi.ErrorItem) *Error {
	switch {
	case code == http.StatusUnauthorized:
		return Authorization("credential rejected by provider")
	case code == http.StatusForbidden:
		for _, it := range items {
			if rateLimitReasons[it.Reason] {
				return Transient("provider rate limit exceeded")
			}
		}
		return Authorization("permission denied")
	case code == http.StatusNotFound:
		return NotFound("resource not found")
	case code == http.StatusBadRequest:
		return Validation("provider rejected the request arguments")
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return Transient("provider rate limit exceeded")
	case code >= 500:
		return Transient("provider temporarily unavailable")
	default:
		return Internal("unexpected provider response")
	}
}

func fromGRPCCode(code codes.Code) *Error {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return Authorization("permission denied")
	case codes.NotFound:
		return NotFound("resource not found")
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return Validation("provider rejected the request arguments")
	case codes.ResourceExhausted:
		return Transient("provider rate limit exceeded")
	case codes.Unavailable, codes.Aborted, codes.DeadlineExceeded:
		return Transient("provider temporarily unavailable")
	case codes.Canceled:
		return Deadline("call canceled")
	default:
		return Internal("unexpected provider failure")
	}
}
