package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates an unverified account and triggers the verification email.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "/v1/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP confirms an email address with the code sent at registration.
func (c *SDKClient) VerifyOTP(ctx context.Context, email, otp string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "/v1/auth/verify-otp", VerifyOTPRequest{Email: email, OTP: otp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendOTP issues a fresh verification code.
func (c *SDKClient) ResendOTP(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "/v1/auth/resend-otp", ResendOTPRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login performs one login attempt. An MFA challenge is a successful
// response with RequiresMFA set; every other non-2xx status is an *APIError.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, "/v1/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA checks a second factor for userID outside the login flow.
func (c *SDKClient) VerifyMFA(ctx context.Context, userID string, req MFAVerifyRequest) (*MFAVerifyResponse, error) {
	var out MFAVerifyResponse
	if err := c.postJSON(ctx, "/v1/auth/mfa/verify/"+url.PathEscape(userID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := encodeBody(in)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, path, body, jsonHeaders)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}
