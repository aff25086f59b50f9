package credential

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

const (
	headerToken = "ya29.header-token-abcdefghijkl"
	argToken    = "ya29.argument-token-mnopqrstu"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		fallback   string
		wantToken  string
		wantSource Source
		wantErr    bool
	}{
		{"header only", "Bearer " + headerToken, "", headerToken, SourceHeader, false},
		{"header wins over argument", "Bearer " + headerToken, argToken, headerToken, SourceHeader, false},
		{"scheme is case insensitive", "bearer " + headerToken, "", headerToken, SourceHeader, false},
		{"argument fallback", "", argToken, argToken, SourceArgument, false},
		{"malformed header falls back", "Basic dXNlcjpwYXNz", argToken, argToken, SourceArgument, false},
		{"nothing supplied", "", "", "", "", true},
		{"empty bearer", "Bearer ", "", "", "", true},
		{"too short", "Bearer abc", "", "", "", true},
		{"illegal characters", "Bearer " + strings.Repeat("a", 20) + " x", "", "", "", true},
		{"malformed argument", "", "short", "", "", true},
		{"too long", "", strings.Repeat("a", maxTokenLen+1), "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			cred, err := FromRequest(h, tt.fallback)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if errs.KindOf(err) != errs.KindAuthentication {
					t.Fatalf("expected AuthenticationError, got %v", errs.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cred.Token() != tt.wantToken {
				t.Fatalf("wrong token selected")
			}
			if cred.Source() != tt.wantSource {
				t.Fatalf("expected source %s, got %s", tt.wantSource, cred.Source())
			}
		})
	}
}

func TestFromRequestNilHeader(t *testing.T) {
	cred, err := FromRequest(nil, argToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Source() != SourceArgument {
		t.Fatalf("expected argument source, got %s", cred.Source())
	}
}

func TestCredentialNeverFormatsToken(t *testing.T) {
	cred, err := FromToken(headerToken)
	if err != nil {
		t.Fatal(err)
	}

	outputs := []string{
		fmt.Sprintf("%v", cred),
		fmt.Sprintf("%+v", cred),
		fmt.Sprintf("%#v", cred),
		fmt.Sprintf("%s", cred),
		cred.String(),
	}
	b, _ := json.Marshal(struct{ C Credential }{cred})
	outputs = append(outputs, string(b))

	for _, out := range outputs {
		if strings.Contains(out, headerToken) {
			t.Fatalf("token leaked through formatting: %q", out)
		}
	}
}

func TestErrorsDoNotContainToken(t *testing.T) {
	bad := "ya29.bad token with spaces"
	_, err := FromRequest(http.Header{"Authorization": {"Bearer " + bad}}, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), bad) {
		t.Fatalf("error message leaked token: %q", err.Error())
	}
}

func TestFromTokenTrimsWhitespace(t *testing.T) {
	cred, err := FromToken("  " + headerToken + "\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Token() != headerToken {
		t.Fatal("expected trimmed token")
	}
	if cred.Scope() != CloudPlatformScope {
		t.Fatalf("unexpected scope %q", cred.Scope())
	}
}
