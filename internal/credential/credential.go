// Package credential extracts the caller's bearer token from an inbound call.
//
// A Credential is created once per call and handed to exactly one scoped
// client. It is never logged: every formatting path renders a placeholder.
package credential

import (
	"net/http"
	"strings"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

// CloudPlatformScope is the OAuth scope callers are presumed to have granted.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

const (
	minTokenLen = 16
	maxTokenLen = 4096

	redacted = "[REDACTED]"
)

// Source records where a credential came from.
type Source string

const (
	SourceHeader   Source = "header"
	SourceArgument Source = "argument"
)

// Credential is an opaque bearer token bound to one call.
type Credential struct {
	token  string
	source Source
}

// Token returns the raw bearer value. Only the client factory calls this.
func (c Credential) Token() string { return c.token }

// Source reports whether the token came from the header or the argument.
func (c Credential) Source() Source { return c.source }

// Scope is the OAuth scope presumed for this credential.
func (c Credential) Scope() string { return CloudPlatformScope }

func (c Credential) String() string   { return redacted }
func (c Credential) GoString() string { return redacted }

// MarshalText keeps the token out of JSON and text encoders.
func (c Credential) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// FromRequest returns the credential for a call. A well-formed
// "Authorization: Bearer" header wins; otherwise fallback (the tool's token
// argument) is used. Anything else is an AuthenticationError.
func FromRequest(header http.Header, fallback string) (Credential, error) {
	if header != nil {
		if v := header.Get("Authorization"); v != "" {
			if tok, ok := parseBearer(v); ok && plausible(tok) {
				return Credential{token: tok, source: SourceHeader}, nil
			}
		}
	}

	if fallback != "" {
		if !plausible(fallback) {
			return Credential{}, errs.Authentication("token argument is malformed")
		}
		return Credential{token: fallback, source: SourceArgument}, nil
	}

	if header != nil && header.Get("Authorization") != "" {
		return Credential{}, errs.Authentication("authorization header is malformed")
	}
	return Credential{}, errs.Authentication("no bearer credential supplied")
}

// FromToken wraps a token obtained out of band (CLI stdin).
func FromToken(token string) (Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{}, errs.Authentication("no bearer credential supplied")
	}
	if !plausible(token) {
		return Credential{}, errs.Authentication("token is malformed")
	}
	return Credential{token: token, source: SourceArgument}, nil
}

func parseBearer(v string) (string, bool) {
	const prefix = "bearer "
	if len(v) <= len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", false
	}
	return v[len(prefix):], true
}

// plausible checks length and the RFC 6750 b64token alphabet.
func plausible(tok string) bool {
	if len(tok) < minTokenLen || len(tok) > maxTokenLen {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_', c == '~', c == '+', c == '/', c == '=':
		default:
			return false
		}
	}
	return true
}
