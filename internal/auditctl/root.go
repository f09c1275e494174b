// Package auditctl implements the maintenance CLI for the BookIt activity log.
// Every command talks to a running auth service as an admin.
package auditctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type app struct {
	url      string
	email    string
	password string
	mfaCode  string
	token    string
	timeout  time.Duration
	asJSON   bool

	stdout io.Writer
	stderr io.Writer

	// newClient is replaced in tests.
	newClient func(baseURL string) *authsdk.SDKClient
}

func NewRootCommand() *cobra.Command {
	return NewRootCommandWithIO(os.Stdout, os.Stderr)
}

func NewRootCommandWithIO(out, errOut io.Writer) *cobra.Command {
	a := &app{
		stdout:    out,
		stderr:    errOut,
		newClient: authsdk.NewSDKClient,
	}

	cmd := &cobra.Command{
		Use:           "auditctl",
		Short:         "Inspect and maintain the BookIt activity log",
		Long:          "auditctl reads statistics from, exports and purges the activity log of a BookIt auth service. It signs in as an admin.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.url, "url", envOr("AUDITCTL_URL", "http://localhost:8080"), "auth service base URL")
	f.StringVar(&a.email, "email", os.Getenv("AUDITCTL_EMAIL"), "admin email")
	f.StringVar(&a.password, "password", os.Getenv("AUDITCTL_PASSWORD"), "admin password")
	f.StringVar(&a.mfaCode, "mfa-code", "", "TOTP code when the admin account has MFA enabled")
	f.StringVar(&a.token, "token", os.Getenv("AUDITCTL_TOKEN"), "existing session token, skips the login")
	f.DurationVar(&a.timeout, "timeout", 30*time.Second, "overall request timeout")
	f.BoolVar(&a.asJSON, "json", false, "print raw JSON")

	cmd.AddCommand(
		newStatsCmd(a),
		newSummaryCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newPurgeCmd(a),
	)
	return cmd
}

// session signs in, or wraps --token when given.
func (a *app) session(ctx context.Context) (*authsdk.Session, error) {
	client := a.newClient(a.url)
	if a.token != "" {
		return client.NewSessionFromToken(a.token, ""), nil
	}
	if a.email == "" || a.password == "" {
		return nil, errors.New("--email and --password (or --token) are required")
	}

	s, err := client.AuthenticateWithPassword(ctx, a.email, a.password)
	var mfaErr *authsdk.MFARequiredError
	if errors.As(err, &mfaErr) {
		if a.mfaCode == "" {
			return nil, errors.New("account has MFA enabled, pass --mfa-code")
		}
		s, err = client.AuthenticateWithMFA(ctx, a.email, a.password, a.mfaCode, "")
	}
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s, nil
}

// run signs in under the command timeout and calls fn.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, s *authsdk.Session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, s)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
