package auth_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// TestMFAEnrollmentAndLogin enrols a TOTP authenticator, then logs in with a
// TOTP code and with a backup code.
func TestMFAEnrollmentAndLogin(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()

	const email, password = "mfa@bookit.test", "MFAUser123!"
	svc.registerVerifiedUser(t, email, password)

	session, err := svc.Client.AuthenticateWithPassword(ctx, email, password)
	require.NoError(t, err)

	setup, err := session.SetupMFA(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, setup.ManualEntryKey)
	require.Contains(t, setup.QRCode, "data:image/png;base64,")

	code, err := totp.GenerateCode(setup.ManualEntryKey, time.Now())
	require.NoError(t, err)
	enabled, err := session.VerifyMFASetup(ctx, code)
	require.NoError(t, err)
	require.True(t, enabled.MFAEnabled)
	require.Len(t, enabled.BackupCodes, 10)

	status, err := session.MFAStatus(ctx)
	require.NoError(t, err)
	require.True(t, status.MFAEnabled)
	require.Equal(t, 10, status.RemainingBackupCodes)

	// Password alone now yields a challenge.
	_, err = svc.Client.AuthenticateWithPassword(ctx, email, password)
	var mfaErr *authsdk.MFARequiredError
	require.True(t, errors.As(err, &mfaErr), "expected MFA challenge, got %v", err)
	require.NotEmpty(t, mfaErr.UserID)

	code, err = totp.GenerateCode(setup.ManualEntryKey, time.Now())
	require.NoError(t, err)
	mfaSession, err := svc.Client.AuthenticateWithMFA(ctx, email, password, code, "")
	require.NoError(t, err)
	require.NotEmpty(t, mfaSession.Token())

	backup := enabled.BackupCodes[0]
	_, err = svc.Client.AuthenticateWithMFA(ctx, email, password, "", backup)
	require.NoError(t, err)

	// A backup code is single use.
	_, err = svc.Client.AuthenticateWithMFA(ctx, email, password, "", backup)
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidMFACode)

	status, err = mfaSession.MFAStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, status.RemainingBackupCodes)

	// Standalone verification spends another backup code.
	verified, err := svc.Client.VerifyMFA(ctx, mfaErr.UserID, authsdk.MFAVerifyRequest{BackupCode: enabled.BackupCodes[1]})
	require.NoError(t, err)
	require.True(t, verified.UsedBackupCode)
	require.Equal(t, 8, verified.RemainingBackupCodes)
}

// TestMFAManagement covers regeneration and disabling.
func TestMFAManagement(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()

	const email, password = "manage@bookit.test", "Manage123!"
	svc.registerVerifiedUser(t, email, password)

	session, err := svc.Client.AuthenticateWithPassword(ctx, email, password)
	require.NoError(t, err)

	_, err = session.RegenerateBackupCodes(ctx, password)
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeMFANotEnabled)

	_, err = session.VerifyMFASetup(ctx, "123456")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeMFANotInitialized)

	setup, err := session.SetupMFA(ctx)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.ManualEntryKey, time.Now())
	require.NoError(t, err)
	first, err := session.VerifyMFASetup(ctx, code)
	require.NoError(t, err)

	_, err = session.SetupMFA(ctx)
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeMFAAlreadyEnabled)

	_, err = session.RegenerateBackupCodes(ctx, "wrong")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidPassword)

	regen, err := session.RegenerateBackupCodes(ctx, password)
	require.NoError(t, err)
	require.Len(t, regen.BackupCodes, 10)
	require.NotEqual(t, first.BackupCodes, regen.BackupCodes)

	require.NoError(t, session.DisableMFA(ctx, password))

	status, err := session.MFAStatus(ctx)
	require.NoError(t, err)
	require.False(t, status.MFAEnabled)
	require.Zero(t, status.RemainingBackupCodes)

	// Login no longer asks for a second factor.
	_, err = svc.Client.AuthenticateWithPassword(ctx, email, password)
	require.NoError(t, err)
}
