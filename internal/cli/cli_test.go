package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ppiankov/gcpwatch/internal/audit"
	"github.com/ppiankov/gcpwatch/internal/errs"
)

const cliToken = "ya29.cli-test-token-0123456789"

// fakeGoogle serves one organization with two projects, one of which has the
// Service Health API disabled.
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(fakeGoogleHandler(t, nil))
}

// fakeGoogleHandler counts folder listings in folderCalls when non-nil.
func fakeGoogleHandler(t *testing.T, folderCalls *atomic.Int32) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+cliToken {
			t.Errorf("unexpected authorization header %q", got)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		p := r.URL.Path
		switch {
		case strings.HasSuffix(p, "/v3/projects"):
			_, _ = w.Write([]byte(`{"projects":[` +
				`{"name":"projects/2","projectId":"proj-b","state":"ACTIVE"},` +
				`{"name":"projects/1","projectId":"proj-a","state":"ACTIVE"}]}`))
		case strings.HasSuffix(p, "/v3/folders"):
			if folderCalls != nil {
				folderCalls.Add(1)
			}
			_, _ = w.Write([]byte(`{}`))
		case strings.HasSuffix(p, "/projects/proj-a/services/servicehealth.googleapis.com"):
			_, _ = w.Write([]byte(`{"name":"projects/1/services/servicehealth.googleapis.com","state":"ENABLED"}`))
		case strings.HasSuffix(p, "/projects/proj-b/services/servicehealth.googleapis.com"):
			_, _ = w.Write([]byte(`{"name":"projects/2/services/servicehealth.googleapis.com","state":"DISABLED"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		}
	})
}

func writeConfig(t *testing.T, endpoint string, auditLines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcpwatch.yaml")
	body := "log:\n  level: error\n" +
		"gcp:\n  endpoints:\n" +
		"    resource_manager: " + endpoint + "\n" +
		"    service_usage: " + endpoint + "\n" +
		"audit:\n  rate_qps: 0\n"
	for _, l := range auditLines {
		body += "  " + l + "\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// resetAuditFlags restores flag globals between tests.
func resetAuditFlags() {
	configPath = ""
	auditOrganization = ""
	auditFolder = ""
	auditTokenStdin = false
	auditRecursive = false
	auditMaxProjects = 0
	auditOutput = "json"
}

func testCmd(stdin string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestRunAudit_JSON(t *testing.T) {
	srv := fakeGoogle(t)
	defer srv.Close()

	resetAuditFlags()
	t.Chdir(t.TempDir())
	configPath = writeConfig(t, srv.URL)
	auditOrganization = "1234"
	auditTokenStdin = true

	cmd, out := testCmd(cliToken + "\n")
	if err := runAudit(cmd, nil); err != nil {
		t.Fatalf("runAudit failed: %v", err)
	}

	var report audit.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not a report: %v\n%s", err, out.String())
	}
	if report.Root != "organizations/1234" {
		t.Errorf("root = %q", report.Root)
	}
	if len(report.Children) != 2 || report.Children[0].Scope != "projects/proj-a" {
		t.Fatalf("unexpected children: %+v", report.Children)
	}
	if len(report.DisabledProjects) != 1 || report.DisabledProjects[0] != "projects/proj-b" {
		t.Errorf("disabled = %v", report.DisabledProjects)
	}
	if strings.Contains(out.String(), cliToken) {
		t.Error("token leaked into output")
	}
}

func TestRunAudit_Text(t *testing.T) {
	srv := fakeGoogle(t)
	defer srv.Close()

	resetAuditFlags()
	t.Chdir(t.TempDir())
	configPath = writeConfig(t, srv.URL)
	auditOrganization = "1234"
	auditTokenStdin = true
	auditOutput = "text"

	cmd, out := testCmd(cliToken)
	if err := runAudit(cmd, nil); err != nil {
		t.Fatalf("runAudit failed: %v", err)
	}
	if !strings.Contains(out.String(), "projects/proj-b") || !strings.Contains(out.String(), "1 disabled") {
		t.Errorf("unexpected text output:\n%s", out.String())
	}
}

func TestRunAudit_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		stdin string
		want  errs.Kind
	}{
		{"no scope", func() { auditTokenStdin = true }, cliToken, errs.KindValidation},
		{"both scopes", func() { auditOrganization, auditFolder, auditTokenStdin = "1", "2", true }, cliToken, errs.KindValidation},
		{"bad id", func() { auditFolder, auditTokenStdin = "Folder_1", true }, cliToken, errs.KindValidation},
		{"bad output", func() { auditFolder, auditTokenStdin, auditOutput = "1", true, "yaml" }, cliToken, errs.KindValidation},
		{"no token flag", func() { auditFolder = "1" }, cliToken, errs.KindAuthentication},
		{"empty stdin", func() { auditFolder, auditTokenStdin = "1", true }, "", errs.KindAuthentication},
		{"malformed token", func() { auditFolder, auditTokenStdin = "1", true }, "not a token\n", errs.KindAuthentication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAuditFlags()
			tt.setup()
			cmd, _ := testCmd(tt.stdin)
			err := runAudit(cmd, nil)
			if got := errs.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestRunAudit_RecursionFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    []string
		flagArgs  []string
		wantCalls int32
	}{
		{"config off", []string{"recursive: false"}, nil, 0},
		{"config on", []string{"recursive: true"}, nil, 1},
		{"flag overrides config", []string{"recursive: false"}, []string{"--recursive"}, 1},
		{"flag disables", []string{"recursive: true"}, []string{"--recursive=false"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var folderCalls atomic.Int32
			srv := httptest.NewServer(fakeGoogleHandler(t, &folderCalls))
			defer srv.Close()

			resetAuditFlags()
			t.Chdir(t.TempDir())
			configPath = writeConfig(t, srv.URL, tt.config...)
			auditOrganization = "1234"
			auditTokenStdin = true

			cmd, _ := testCmd(cliToken)
			cmd.Flags().BoolVar(&auditRecursive, "recursive", false, "")
			if err := cmd.Flags().Parse(tt.flagArgs); err != nil {
				t.Fatal(err)
			}
			if err := runAudit(cmd, nil); err != nil {
				t.Fatalf("runAudit failed: %v", err)
			}
			if got := folderCalls.Load(); got != tt.wantCalls {
				t.Errorf("folder listings = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestExecute_PrintsErrorOnce(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"validation", []string{"audit", "--folder", "1"}, 1},
		{"config", []string{"audit", "--folder", "1", "--token-stdin", "--config", "/nonexistent/gcpwatch.yaml"}, 78},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAuditFlags()
			t.Chdir(t.TempDir())
			var stderr bytes.Buffer
			rootCmd.SetIn(strings.NewReader(cliToken + "\n"))
			rootCmd.SetErr(&stderr)
			rootCmd.SetOut(&bytes.Buffer{})
			defer func() {
				rootCmd.SetIn(nil)
				rootCmd.SetErr(nil)
				rootCmd.SetOut(nil)
				rootCmd.SetArgs(nil)
			}()

			var printed bytes.Buffer
			if code := execute(tt.args, &printed); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (%s)", code, tt.wantCode, printed.String())
			}
			if n := strings.Count(printed.String(), "Error:"); n != 1 {
				t.Errorf("error printed %d times: %q", n, printed.String())
			}
			if strings.Contains(stderr.String(), "Error:") {
				t.Errorf("cobra printed the error too: %q", stderr.String())
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd, out := testCmd("")
	versionCmd.Run(cmd, nil)

	var info map[string]string
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if info["name"] != "gcpwatch" || info["version"] == "" {
		t.Errorf("unexpected version info: %v", info)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "stdio": false, "audit": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
