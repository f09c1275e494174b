package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestMFAEnrolment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	a := h.seedAccount(t, "a@x.com", "P1", nil)

	_, err := h.mfa.VerifySetup(ctx, a.ID, "123456")
	require.ErrorIs(t, err, ErrMFANotInitialized)

	setup, err := h.mfa.Initialize(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))
	require.NotEmpty(t, setup.ManualEntryKey)

	stored := h.account(t, a.ID)
	require.NotNil(t, stored.MFASecret)
	require.NotContains(t, *stored.MFASecret, setup.ManualEntryKey)
	require.False(t, stored.MFAEnabled)
	require.False(t, stored.MFASetupCompleted)

	_, err = h.mfa.VerifySetup(ctx, a.ID, "000000")
	require.ErrorIs(t, err, ErrInvalidMFACode)
	require.False(t, h.account(t, a.ID).MFAEnabled)

	codes, err := h.mfa.VerifySetup(ctx, a.ID, h.totp(t, setup.ManualEntryKey))
	require.NoError(t, err)
	require.Len(t, codes, 10)

	stored = h.account(t, a.ID)
	require.True(t, stored.MFAEnabled)
	require.True(t, stored.MFASetupCompleted)
	require.Len(t, stored.MFABackupCodes, 10)
	require.NotNil(t, stored.LastMFAVerification)

	e := h.lastEvent(t)
	require.Equal(t, domain.ActionMFAEnable, e.Action)
	require.Equal(t, domain.SeverityMedium, e.Severity)

	_, err = h.mfa.Initialize(ctx, a.ID)
	require.ErrorIs(t, err, ErrMFAAlreadyEnabled)

	res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
	require.Equal(t, domain.LoginMFARequired, res.Outcome)
}

func TestMFAVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("totp and backup codes", func(t *testing.T) {
		h := newHarness(t)
		a, secret, codes := h.seedMFAAccount(t, "a@x.com", "P1")

		v, err := h.mfa.Verify(ctx, a.ID, h.totp(t, secret), "")
		require.NoError(t, err)
		require.Equal(t, domain.MFAMethodTOTP, v.Method)
		require.Equal(t, 10, v.RemainingBackupCodes)

		v, err = h.mfa.Verify(ctx, a.ID, "", codes[4])
		require.NoError(t, err)
		require.Equal(t, domain.MFAMethodBackupCode, v.Method)
		require.Equal(t, 9, v.RemainingBackupCodes)

		e := h.lastEvent(t)
		require.Equal(t, domain.ActionMFAVerify, e.Action)
		require.Equal(t, "backup_code", e.Metadata["method"])
		require.EqualValues(t, 9, e.Metadata["remainingBackupCodes"])

		_, err = h.mfa.Verify(ctx, a.ID, "", codes[4])
		require.ErrorIs(t, err, ErrInvalidMFACode)

		e = h.lastEvent(t)
		require.Equal(t, domain.ActionMFAFailed, e.Action)
		require.Equal(t, domain.SeverityHigh, e.Severity)
	})

	t.Run("not enabled", func(t *testing.T) {
		h := newHarness(t)
		a := h.seedAccount(t, "a@x.com", "P1", nil)

		_, err := h.mfa.Verify(ctx, a.ID, "123456", "")
		require.ErrorIs(t, err, ErrMFANotEnabled)
		_, err = h.mfa.Verify(ctx, "missing", "123456", "")
		require.ErrorIs(t, err, ErrMFANotEnabled)
		_, err = h.mfa.Verify(ctx, a.ID, "", "")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("concurrent backup code submissions consume once", func(t *testing.T) {
		h := newHarness(t)
		a, _, codes := h.seedMFAAccount(t, "a@x.com", "P1")

		var ok atomic.Int32
		var wg sync.WaitGroup
		for range 6 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := h.mfa.Verify(ctx, a.ID, "", codes[0]); err == nil {
					ok.Add(1)
				}
			}()
		}
		wg.Wait()

		require.EqualValues(t, 1, ok.Load())
		require.Len(t, h.account(t, a.ID).MFABackupCodes, 9)
	})
}

func TestMFADisable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	a, _, _ := h.seedMFAAccount(t, "a@x.com", "P1")

	require.ErrorIs(t, h.mfa.Disable(ctx, a.ID, "wrong"), ErrInvalidPassword)
	e := h.lastEvent(t)
	require.Equal(t, domain.ActionMFADisable, e.Action)
	require.Equal(t, domain.SeverityHigh, e.Severity)
	require.True(t, h.account(t, a.ID).MFAEnabled)

	require.ErrorIs(t, h.mfa.Disable(ctx, a.ID, ""), ErrInvalidInput)
	require.NoError(t, h.mfa.Disable(ctx, a.ID, "P1"))

	stored := h.account(t, a.ID)
	require.False(t, stored.MFAEnabled)
	require.False(t, stored.MFASetupCompleted)
	require.Nil(t, stored.MFASecret)
	require.Empty(t, stored.MFABackupCodes)

	res := login(t, h, domain.LoginRequest{Email: "a@x.com", Password: "P1"})
	require.Equal(t, domain.LoginAuthenticated, res.Outcome)
}

func TestMFARegenerateBackupCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	a, _, old := h.seedMFAAccount(t, "a@x.com", "P1")
	plain := h.seedAccount(t, "b@x.com", "P1", nil)

	_, err := h.mfa.RegenerateBackupCodes(ctx, plain.ID, "P1")
	require.ErrorIs(t, err, ErrMFANotEnabled)

	_, err = h.mfa.RegenerateBackupCodes(ctx, a.ID, "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	codes, err := h.mfa.RegenerateBackupCodes(ctx, a.ID, "P1")
	require.NoError(t, err)
	require.Len(t, codes, 10)

	_, err = h.mfa.Verify(ctx, a.ID, "", old[0])
	require.ErrorIs(t, err, ErrInvalidMFACode)
	_, err = h.mfa.Verify(ctx, a.ID, "", codes[0])
	require.NoError(t, err)
}

func TestMFAStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	a, _, codes := h.seedMFAAccount(t, "a@x.com", "P1")

	_, err := h.mfa.Verify(ctx, a.ID, "", codes[1])
	require.NoError(t, err)

	st, err := h.mfa.Status(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MFAStatus{MFAEnabled: true, MFASetupCompleted: true, RemainingBackupCodes: 9}, st)

	e := h.lastEvent(t)
	require.Equal(t, domain.ActionMFAStatus, e.Action)

	_, err = h.mfa.Status(ctx, "missing")
	require.ErrorIs(t, err, ErrAccountNotFound)
}
