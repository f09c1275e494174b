package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	acct, err := h.accounts.Register(ctx, domain.Registration{
		FullName: "Alice",
		Email:    "Alice@X.com",
		Password: "P1",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", acct.Email)
	require.Equal(t, domain.RoleUser, acct.Role)

	stored := h.account(t, acct.ID)
	require.False(t, stored.Verified)
	require.NotNil(t, stored.OTPCode)
	require.Len(t, *stored.OTPCode, 6)
	require.True(t, stored.OTPExpiresAt.Equal(h.clock.Now().Add(domain.OTPValidity)))
	require.True(t, stored.PasswordUpdatedAt.Equal(h.clock.Now()))
	require.Equal(t, *stored.OTPCode, h.mailer.last("alice@x.com"))

	// Unverified accounts cannot log in yet.
	res := login(t, h, domain.LoginRequest{Email: "alice@x.com", Password: "P1"})
	require.Equal(t, domain.LoginUnverified, res.Outcome)

	require.ErrorIs(t, h.accounts.VerifyEmail(ctx, "alice@x.com", "000000x"), ErrInvalidOTP)
	require.NoError(t, h.accounts.VerifyEmail(ctx, "alice@x.com", *stored.OTPCode))

	stored = h.account(t, acct.ID)
	require.True(t, stored.Verified)
	require.Nil(t, stored.OTPCode)
	require.Nil(t, stored.OTPExpiresAt)

	e := h.lastEvent(t)
	require.Equal(t, domain.ActionVerifyEmail, e.Action)
	require.True(t, e.Success)

	res = login(t, h, domain.LoginRequest{Email: "alice@x.com", Password: "P1"})
	require.Equal(t, domain.LoginAuthenticated, res.Outcome)
}

func TestRegisterRejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	h.seedAccount(t, "a@x.com", "P1", nil)

	_, err := h.accounts.Register(ctx, domain.Registration{FullName: "A", Email: "A@x.com", Password: "P2"})
	require.ErrorIs(t, err, ErrAccountExists)

	e := h.lastEvent(t)
	require.Equal(t, domain.ActionRegister, e.Action)
	require.Equal(t, domain.SeverityMedium, e.Severity)
	require.False(t, e.Success)

	for _, bad := range []domain.Registration{
		{FullName: "A", Email: "not-an-email", Password: "P"},
		{FullName: "A", Email: "b@x.com"},
		{Email: "b@x.com", Password: "P"},
	} {
		_, err := h.accounts.Register(ctx, bad)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestVerifyEmailExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	acct, err := h.accounts.Register(ctx, domain.Registration{FullName: "A", Email: "a@x.com", Password: "P1"})
	require.NoError(t, err)
	code := h.mailer.last("a@x.com")

	h.clock.Advance(domain.OTPValidity + time.Second)
	require.ErrorIs(t, h.accounts.VerifyEmail(ctx, "a@x.com", code), ErrInvalidOTP)
	require.False(t, h.account(t, acct.ID).Verified)

	require.ErrorIs(t, h.accounts.VerifyEmail(ctx, "nobody@x.com", code), ErrInvalidOTP)
	e := h.lastEvent(t)
	require.Equal(t, domain.ActionVerifyEmail, e.Action)
	require.Nil(t, e.UserID)
}

func TestResendOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	acct, err := h.accounts.Register(ctx, domain.Registration{FullName: "A", Email: "a@x.com", Password: "P1"})
	require.NoError(t, err)

	h.clock.Advance(domain.OTPValidity + time.Second)
	require.NoError(t, h.accounts.ResendOTP(ctx, "a@x.com"))

	fresh := h.mailer.last("a@x.com")
	stored := h.account(t, acct.ID)
	require.Equal(t, fresh, *stored.OTPCode)
	require.True(t, stored.OTPExpiresAt.Equal(h.clock.Now().Add(domain.OTPValidity)))
	require.NoError(t, h.accounts.VerifyEmail(ctx, "a@x.com", fresh))

	require.ErrorIs(t, h.accounts.ResendOTP(ctx, "nobody@x.com"), ErrAccountNotFound)
	e := h.lastEvent(t)
	require.Equal(t, domain.ActionResendOTP, e.Action)
	require.Equal(t, domain.SeverityMedium, e.Severity)
}
