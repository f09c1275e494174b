package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegistrationAndLogin covers register, email verification and login.
func TestRegistrationAndLogin(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()

	const email, password = "alice@bookit.test", "Alice123!"

	_, err := svc.Client.Register(ctx, authsdk.RegisterRequest{FullName: "Alice", Email: email, Password: password})
	require.NoError(t, err)

	// Unverified accounts cannot log in yet.
	_, err = svc.Client.AuthenticateWithPassword(ctx, email, password)
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeUnverified)

	_, err = svc.Client.VerifyOTP(ctx, email, "000000")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidOTP)

	_, err = svc.Client.VerifyOTP(ctx, email, svc.verificationCode(t, email))
	require.NoError(t, err)

	session, err := svc.Client.AuthenticateWithPassword(ctx, email, password)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token())
	require.Equal(t, "user", session.Role())

	_, err = svc.Client.Register(ctx, authsdk.RegisterRequest{FullName: "Alice", Email: email, Password: password})
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeAccountExists)
}

// TestLockout verifies five wrong passwords lock the account even for the
// right password afterwards.
func TestLockout(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()

	const email, password = "bob@bookit.test", "Bob123!"
	svc.registerVerifiedUser(t, email, password)

	for i := range 4 {
		_, err := svc.Client.AuthenticateWithPassword(ctx, email, "wrong")
		requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidCredential)
		t.Logf("failed attempt %d rejected", i+1)
	}

	_, err := svc.Client.AuthenticateWithPassword(ctx, email, "wrong")
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeLockedOut)

	_, err = svc.Client.AuthenticateWithPassword(ctx, email, password)
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeLockedOut)
}

// TestUnknownEmailLooksLikeWrongPassword checks that login does not reveal
// which emails are registered.
func TestUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc := setupAuthContainer(t)

	_, errUnknown := svc.Client.AuthenticateWithPassword(t.Context(), "nobody@bookit.test", "whatever")
	_, errWrong := svc.Client.AuthenticateWithPassword(t.Context(), adminEmail, "whatever")

	requireAPIError(t, errUnknown, http.StatusBadRequest, authsdk.ErrorCodeInvalidCredential)
	requireAPIError(t, errWrong, http.StatusBadRequest, authsdk.ErrorCodeInvalidCredential)
	require.Equal(t, errWrong.Error(), errUnknown.Error())
}
