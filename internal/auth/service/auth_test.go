package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, h *harness, req domain.LoginRequest) domain.LoginResult {
	t.Helper()
	res, err := h.auth.Login(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	a := h.seedAccount(t, "a@x.com", "P1", nil)

	res := login(t, h, domain.LoginRequest{Email: " A@X.com ", Password: "P1"})
	require.Equal(t, domain.LoginAuthenticated, res.Outcome)
	require.True(t, res.Authenticated())
	require.Equal(t, domain.MsgLoginSuccess, res.Message)
	require.Equal(t, a.ID, res.AccountID)
	require.Equal(t, domain.RoleUser, res.Role)
	require.False(t, res.MFAEnabled)

	claims, err := h.verifier.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, a.ID, claims.Subject)
	require.Equal(t, "user", claims.Role)
	require.Equal(t, []string{jwtx.AMRPassword}, claims.AMR)
	require.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	e := h.lastEvent(t)
	require.Equal(t, domain.ActionLogin, e.Action)
	require.Equal(t, domain.SeverityLow, e.Severity)
	require.True(t, e.Success)
	require.Equal(t, a.ID, *e.UserID)
	require.Len(t, h.events(t, domain.AuditFilter{}), 1)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seedAccount(t, "a@x.com", "P1", nil)

	unknown := login(t, h, domain.LoginRequest{Email: "nobody@x.com", Password: "P1"})
	wrong := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "nope"})

	// Indistinguishable to the caller.
	require.Equal(t, domain.LoginInvalid, unknown.Outcome)
	require.Equal(t, wrong.Outcome, unknown.Outcome)
	require.Equal(t, wrong.Message, unknown.Message)
	require.Empty(t, unknown.AccountID)
	require.Empty(t, unknown.Token)

	events := h.events(t, domain.AuditFilter{Action: domain.ActionFailedLogin})
	require.Len(t, events, 2)
	anon := events[1]
	require.Nil(t, anon.UserID)
	require.Equal(t, domain.SeverityMedium, anon.Severity)
	require.False(t, anon.Success)
	require.Equal(t, "nobody@x.com", anon.Metadata["email"])
}

func TestLoginLockout(t *testing.T) {
	t.Parallel()

	t.Run("five consecutive failures lock the account", func(t *testing.T) {
		h := newHarness(t)
		a := h.seedAccount(t, "a@x.com", "P1", nil)

		for i := 1; i < domain.MaxFailedLogins; i++ {
			res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "wrong"})
			require.Equal(t, domain.LoginInvalid, res.Outcome)
			require.Equal(t, i, h.account(t, a.ID).FailedLoginAttempts)
			require.Nil(t, h.account(t, a.ID).LockoutUntil)
		}

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "wrong"})
		require.Equal(t, domain.LoginLockedOut, res.Outcome)
		require.Equal(t, domain.MsgLockoutTriggered, res.Message)

		got := h.account(t, a.ID)
		require.Equal(t, 5, got.FailedLoginAttempts)
		require.NotNil(t, got.LockoutUntil)
		require.WithinDuration(t, h.clock.Now().Add(15*time.Minute), *got.LockoutUntil, time.Second)

		e := h.lastEvent(t)
		require.Equal(t, domain.ActionFailedLogin, e.Action)
		require.Equal(t, domain.SeverityHigh, e.Severity)

		// Correct password while locked.
		res = login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
		require.Equal(t, domain.LoginLockedOut, res.Outcome)
		require.Contains(t, res.Message, "Account is locked")
		require.Empty(t, res.Token)
		require.Equal(t, 5, h.account(t, a.ID).FailedLoginAttempts)
	})

	t.Run("four prior failures then a wrong password", func(t *testing.T) {
		h := newHarness(t)
		a := h.seedAccount(t, "a@x.com", "P1", func(a *domain.Account) {
			a.FailedLoginAttempts = 4
		})

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "wrong"})
		require.Equal(t, domain.LoginLockedOut, res.Outcome)

		got := h.account(t, a.ID)
		require.Equal(t, 5, got.FailedLoginAttempts)
		require.WithinDuration(t, h.clock.Now().Add(domain.LockoutDuration), *got.LockoutUntil, time.Second)
		require.Equal(t, 15*time.Minute, domain.LockoutDuration)

		res = login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
		require.Equal(t, domain.LoginLockedOut, res.Outcome)
		got = h.account(t, a.ID)
		require.Equal(t, 5, got.FailedLoginAttempts)
	})

	t.Run("success after lockout expiry resets counters", func(t *testing.T) {
		h := newHarness(t)
		until := h.clock.Now().Add(domain.LockoutDuration)
		a := h.seedAccount(t, "a@x.com", "P1", func(a *domain.Account) {
			a.FailedLoginAttempts = 5
			a.LockoutUntil = &until
		})

		h.clock.Advance(domain.LockoutDuration + time.Second)

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
		require.Equal(t, domain.LoginAuthenticated, res.Outcome)

		got := h.account(t, a.ID)
		require.Zero(t, got.FailedLoginAttempts)
		require.Nil(t, got.LockoutUntil)
	})
}

func TestLoginUnverified(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seedAccount(t, "a@x.com", "P1", func(a *domain.Account) { a.Verified = false })

	res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
	require.Equal(t, domain.LoginUnverified, res.Outcome)
	require.Equal(t, domain.MsgUnverified, res.Message)
	require.Empty(t, res.Token)

	e := h.lastEvent(t)
	require.Equal(t, domain.ActionLogin, e.Action)
	require.Equal(t, domain.SeverityMedium, e.Severity)
	require.False(t, e.Success)
}

func TestLoginExpiredPassword(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	a := h.seedAccount(t, "a@x.com", "P1", func(a *domain.Account) {
		a.PasswordUpdatedAt = a.PasswordUpdatedAt.Add(-domain.PasswordValidity - time.Minute)
		a.FailedLoginAttempts = 2
	})

	res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
	require.Equal(t, domain.LoginExpiredPassword, res.Outcome)
	require.Equal(t, domain.MsgPasswordExpired, res.Message)
	require.Empty(t, res.Token)

	// Checked before the counters are cleared.
	require.Equal(t, 2, h.account(t, a.ID).FailedLoginAttempts)
}

func TestLoginMFA(t *testing.T) {
	t.Parallel()

	t.Run("challenge when no factor given", func(t *testing.T) {
		h := newHarness(t)
		a, _, _ := h.seedMFAAccount(t, "a@x.com", "P1")

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
		require.Equal(t, domain.LoginMFARequired, res.Outcome)
		require.Equal(t, a.ID, res.AccountID)
		require.Empty(t, res.Token)

		e := h.lastEvent(t)
		require.Equal(t, domain.ActionLoginMFARequired, e.Action)
		require.Equal(t, domain.SeverityLow, e.Severity)
	})

	t.Run("totp code authenticates", func(t *testing.T) {
		h := newHarness(t)
		a, secret, _ := h.seedMFAAccount(t, "a@x.com", "P1")

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1", MFACode: h.totp(t, secret)})
		require.Equal(t, domain.LoginAuthenticated, res.Outcome)
		require.Equal(t, domain.MFAMethodTOTP, res.MFAMethod)
		require.True(t, res.MFAEnabled)

		claims, err := h.verifier.Verify(res.Token)
		require.NoError(t, err)
		require.Equal(t, []string{jwtx.AMRPassword, jwtx.AMRMFA, jwtx.AMRTOTP}, claims.AMR)

		got := h.account(t, a.ID)
		require.NotNil(t, got.LastMFAVerification)
		require.True(t, got.LastMFAVerification.Equal(h.clock.Now()))
	})

	t.Run("backup code is single use", func(t *testing.T) {
		h := newHarness(t)
		a, _, codes := h.seedMFAAccount(t, "a@x.com", "P1")

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1", BackupCode: codes[0]})
		require.Equal(t, domain.LoginAuthenticated, res.Outcome)
		require.Equal(t, domain.MFAMethodBackupCode, res.MFAMethod)
		require.Len(t, h.account(t, a.ID).MFABackupCodes, 9)

		res = login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1", BackupCode: codes[0]})
		require.Equal(t, domain.LoginMFAInvalid, res.Outcome)
		require.Len(t, h.account(t, a.ID).MFABackupCodes, 9)
	})

	t.Run("invalid factor does not feed the password counter", func(t *testing.T) {
		h := newHarness(t)
		a, _, _ := h.seedMFAAccount(t, "a@x.com", "P1")

		for range domain.MaxFailedLogins + 1 {
			res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1", MFACode: "000000"})
			require.Equal(t, domain.LoginMFAInvalid, res.Outcome)
			require.Equal(t, domain.MsgMFAInvalid, res.Message)
		}

		got := h.account(t, a.ID)
		require.Zero(t, got.FailedLoginAttempts)
		require.Nil(t, got.LockoutUntil)
		require.Nil(t, got.LastMFAVerification)

		e := h.lastEvent(t)
		require.Equal(t, domain.ActionFailedLogin, e.Action)
		require.Equal(t, domain.SeverityHigh, e.Severity)
		require.Equal(t, "mfa", e.Metadata["stage"])
	})

	t.Run("undecryptable secret fails closed", func(t *testing.T) {
		h := newHarness(t)
		garbage := "bm90LWEtc2VhbGVkLXNlY3JldA=="
		h.seedAccount(t, "a@x.com", "P1", func(a *domain.Account) {
			a.MFAEnabled = true
			a.MFASetupCompleted = true
			a.MFASecret = &garbage
		})

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1", MFACode: "123456"})
		require.Equal(t, domain.LoginMFAInvalid, res.Outcome)
	})

	t.Run("secret mid-setup never gates login", func(t *testing.T) {
		h := newHarness(t)
		sealed, err := h.engine.EncryptSecret("JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		h.seedAccount(t, "a@x.com", "P1", func(a *domain.Account) { a.MFASecret = &sealed })

		res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
		require.Equal(t, domain.LoginAuthenticated, res.Outcome)
		require.False(t, res.MFAEnabled)
	})
}

type failingWriter struct{}

func (failingWriter) InsertAuditEvent(context.Context, domain.AuditEvent) error {
	return errors.New("audit store down")
}

func TestLoginIgnoresAuditFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seedAccount(t, "a@x.com", "P1", nil)
	h.auth.Audit = audit.NewLogger(failingWriter{})

	res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
	require.Equal(t, domain.LoginAuthenticated, res.Outcome)
	require.NotEmpty(t, res.Token)
}

func TestLoginInfrastructureFault(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seedAccount(t, "a@x.com", "P1", nil)
	require.NoError(t, h.store.Close())

	_, err := h.auth.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "P1"})
	require.Error(t, err)
}
