/*
Package authsdk provides a client SDK for the BookIt authentication service.

# Overview

The package covers registration, login with optional TOTP multi-factor
authentication, MFA management and the admin activity log API. It provides
unauthenticated operations through SDKClient and authenticated operations
through Session.

# SDKClient vs Session

  - SDKClient: registration, email verification, login, health and JWKS
  - Session: MFA management and activity logs, authenticated with a bearer token

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Create an account; the verification code is emailed
	_, err := client.Register(ctx, authsdk.RegisterRequest{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})

	// Confirm the address
	_, err = client.VerifyOTP(ctx, "alice@example.com", code)

	// Log in
	session, err := client.AuthenticateWithPassword(ctx, "alice@example.com", password)

# Multi-Factor Login

When the account has MFA enabled, AuthenticateWithPassword returns
*MFARequiredError. Repeat the login with a TOTP code or a backup code:

	session, err := client.AuthenticateWithPassword(ctx, email, password)
	var mfaErr *authsdk.MFARequiredError
	if errors.As(err, &mfaErr) {
		session, err = client.AuthenticateWithMFA(ctx, email, password, totpCode, "")
	}

A backup code is accepted once; it is consumed on use.

# Enrolment

	setup, err := session.SetupMFA(ctx)          // QR code + manual key
	res, err := session.VerifyMFASetup(ctx, code) // res.BackupCodes shown once
	status, err := session.MFAStatus(ctx)

# Activity Logs

Admin sessions can read the audit trail:

	page, err := session.ListActivityLogs(ctx, authsdk.ActivityLogQuery{Page: 1, Limit: 50})
	stats, err := session.ActivityStats(ctx)
	err = session.ExportActivityLogs(ctx, "csv", authsdk.ActivityLogQuery{}, file)
	res, err := session.PurgeActivityLogs(ctx, 90)

# Error Handling

Every non-2xx response is returned as *APIError carrying the HTTP status, a
stable code and the server message. The predefined values compare with
errors.Is on status and code:

	if errors.Is(err, authsdk.ErrLockedOut) {
		// wait for the lockout window to pass
	}

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package authsdk
