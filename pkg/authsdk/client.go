package authsdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the BookIt authentication service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// MFARequiredError is returned by AuthenticateWithPassword when the account
// has MFA enabled and no second factor was supplied. Complete the login with
// AuthenticateWithMFA.
type MFARequiredError struct {
	UserID  string
	Message string
}

// Error implements the error interface.
func (e *MFARequiredError) Error() string {
	return "mfa required: " + e.Message
}

// AuthenticateWithPassword logs in and returns a session. When the account
// has MFA enabled it returns *MFARequiredError instead.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, LoginRequest{Email: email, Password: password})
}

// AuthenticateWithMFA repeats the login with a TOTP code. Pass backupCode
// instead of totpCode to spend a backup code.
func (c *SDKClient) AuthenticateWithMFA(ctx context.Context, email, password, totpCode, backupCode string) (*Session, error) {
	return c.authenticate(ctx, LoginRequest{
		Email:         email,
		Password:      password,
		MFAToken:      totpCode,
		MFABackupCode: backupCode,
	})
}

func (c *SDKClient) authenticate(ctx context.Context, req LoginRequest) (*Session, error) {
	resp, err := c.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.RequiresMFA {
		return nil, &MFARequiredError{UserID: resp.UserID, Message: resp.Message}
	}
	if resp.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	return c.NewSessionFromToken(resp.Token, resp.Role), nil
}

// NewSessionFromToken wraps an existing session token.
func (c *SDKClient) NewSessionFromToken(token, role string) *Session {
	return &Session{client: c, token: token, role: role}
}
