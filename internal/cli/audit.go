package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/gcpwatch/internal/audit"
	"github.com/ppiankov/gcpwatch/internal/credential"
	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/scope"
)

var (
	auditOrganization string
	auditFolder       string
	auditTokenStdin   bool
	auditRecursive    bool
	auditMaxProjects  int
	auditOutput       string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditOrganization, "organization", "", "Organization id to audit")
	auditCmd.Flags().StringVar(&auditFolder, "folder", "", "Folder id to audit")
	auditCmd.Flags().BoolVar(&auditTokenStdin, "token-stdin", false, "Read the access token from the first line of stdin")
	auditCmd.Flags().BoolVar(&auditRecursive, "recursive", false, "Descend into sub-folders (default from audit.recursive)")
	auditCmd.Flags().IntVar(&auditMaxProjects, "max-projects", 0, "Stop discovery after this many projects (0 = config default)")
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "json", "Output format: json or text")
	auditCmd.MarkFlagsMutuallyExclusive("organization", "folder")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report projects where the Service Health API is disabled",
	Long: "Runs one audit of every active project under an organization or folder\n" +
		"and prints the report. The token is read from stdin and never stored:\n\n" +
		"  gcloud auth print-access-token | gcpwatch audit --organization 1234 --token-stdin",
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	root, err := auditScope(auditOrganization, auditFolder)
	if err != nil {
		return err
	}
	if auditOutput != "json" && auditOutput != "text" {
		return errs.Validation("output must be json or text")
	}
	if !auditTokenStdin {
		return errs.Authentication("an access token is required, pass --token-stdin")
	}
	cred, err := readToken(cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := a.factory.New(ctx, cred)
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := a.orch.Run(ctx, client, audit.Request{
		Root:        root,
		Recursive:   auditRecursion(cmd),
		MaxChildren: auditMaxProjects,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if auditOutput == "text" {
		fmt.Fprint(out, audit.FormatText(report))
		return nil
	}
	js, err := audit.FormatJSON(report)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, js)
	return nil
}

// auditRecursion returns the --recursive override, or nil when the flag was
// not given so the configured default applies.
func auditRecursion(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("recursive") {
		return nil
	}
	recursive := auditRecursive
	return &recursive
}

func auditScope(org, folder string) (scope.Scope, error) {
	switch {
	case org != "" && folder != "":
		return scope.Scope{}, errs.Validation("set only one of --organization or --folder")
	case org != "":
		return scope.Organization(org)
	case folder != "":
		return scope.Folder(folder)
	default:
		return scope.Scope{}, errs.Validation("--organization or --folder is required")
	}
}

func readToken(r io.Reader) (credential.Credential, error) {
	line, err := bufio.NewReader(io.LimitReader(r, 8192)).ReadString('\n')
	if err != nil && err != io.EOF {
		return credential.Credential{}, errs.Authentication("failed to read token from stdin")
	}
	return credential.FromToken(line)
}
