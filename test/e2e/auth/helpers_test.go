package auth_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, account helpers, and assertions.
 */

const (
	testImageName = "bookit-auth-test:latest"

	adminEmail    = "admin@bookit.test"
	adminPassword = "Admin123!"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Image might not exist
}

// authService is a running auth container.
type authService struct {
	container testcontainers.Container
	BaseURL   string
	Client    *authsdk.SDKClient
}

// relaxedLimits lifts the rate limits so tests can make many rapid requests.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupAuthContainer starts the service with relaxed rate limits and a
// bootstrapped admin.
func setupAuthContainer(t *testing.T) *authService {
	return startAuthContainer(t, relaxedLimits)
}

// setupAuthContainerWithDefaultRateLimits keeps the production limits. Only
// the rate limit tests should use it.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) *authService {
	return startAuthContainer(t, nil)
}

func startAuthContainer(t *testing.T, extraEnv map[string]string) *authService {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTH_ISSUER":             "bookit-auth",
		"AUTH_MFA_ENCRYPTION_KEY": "e2e-mfa-key",
		"AUTH_ADMIN_EMAIL":        adminEmail,
		"AUTH_ADMIN_PASSWORD":     adminPassword,
		"ENV":                     "test",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "json",
	}
	maps.Copy(env, extraEnv)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/readyz").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	return &authService{
		container: container,
		BaseURL:   baseURL,
		Client:    authsdk.NewSDKClient(baseURL),
	}
}

// verificationCode reads the newest email verification code sent to email
// from the service log.
func (s *authService) verificationCode(t *testing.T, email string) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		logs, err := s.container.Logs(context.Background())
		if err != nil {
			return false
		}
		defer logs.Close()

		sc := bufio.NewScanner(logs)
		for sc.Scan() {
			var line struct {
				Msg   string `json:"msg"`
				Email string `json:"email"`
				Code  string `json:"code"`
			}
			// Docker prefixes multiplexed log frames; skip to the JSON.
			raw := sc.Bytes()
			if i := bytes.IndexByte(raw, '{'); i >= 0 {
				raw = raw[i:]
			}
			if json.Unmarshal(raw, &line) == nil && line.Msg == "verification code issued" && line.Email == email {
				code = line.Code
			}
		}
		return code != ""
	}, 10*time.Second, 200*time.Millisecond, "no verification code logged for %s", email)

	return code
}

// registerVerifiedUser registers an account and confirms its email.
func (s *authService) registerVerifiedUser(t *testing.T, email, password string) {
	t.Helper()
	ctx := t.Context()

	_, err := s.Client.Register(ctx, authsdk.RegisterRequest{
		FullName: "E2E User",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	_, err = s.Client.VerifyOTP(ctx, email, s.verificationCode(t, email))
	require.NoError(t, err)
}

// loginAdmin signs in as the bootstrapped admin.
func (s *authService) loginAdmin(t *testing.T) *authsdk.Session {
	t.Helper()
	session, err := s.Client.AuthenticateWithPassword(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err, "admin login should succeed")
	require.Equal(t, "admin", session.Role())
	return session
}

// requireAPIError asserts err is an *authsdk.APIError with status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status: %v", err)
	require.Equal(t, code, apiErr.Code, "unexpected error code: %v", err)
}
