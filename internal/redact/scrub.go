package redact

import (
	"regexp"
	"strings"
)

// Mask replaces a credential found in free text.
const Mask = "[REDACTED]"

var (
	// "Bearer <token>" in any case.
	bearerRe = regexp.MustCompile(`(?i)\bbearer[ \t]+[A-Za-z0-9\-._~+/]+=*`)

	// Google OAuth access tokens carry a ya29. prefix.
	oauthRe = regexp.MustCompile(`\bya29\.[A-Za-z0-9\-._~+/]+=*`)

	// key=value or key: value pairs where the key names a secret.
	credKVRe = regexp.MustCompile(`(?i)\b(access_token|refresh_token|id_token|password|passwd|secret|api_key|apikey|token)([ \t]*[=:][ \t]*)[^\s"'&,;]+`)
)

// Scrub masks credential-looking substrings in s.
func Scrub(s string) string {
	if !maybeSecret(s) {
		return s
	}
	s = bearerRe.ReplaceAllString(s, "Bearer "+Mask)
	s = oauthRe.ReplaceAllString(s, Mask)
	s = credKVRe.ReplaceAllString(s, "${1}${2}"+Mask)
	return s
}

// maybeSecret skips the regex pass for the common case.
func maybeSecret(s string) bool {
	l := strings.ToLower(s)
	for _, hint := range []string{"bearer", "ya29.", "token", "pass", "secret", "key"} {
		if strings.Contains(l, hint) {
			return true
		}
	}
	return false
}
