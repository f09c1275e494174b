package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewSessionClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewSessionClaims("01ACCOUNT", "staff", "sam@example.com", []string{"pwd"}, time.Hour, "bookit-auth", now)

	require.Equal(t, "01ACCOUNT", c.Subject)
	require.Equal(t, "staff", c.Role)
	require.Equal(t, "sam@example.com", c.Email)
	require.Equal(t, "bookit-auth", c.Issuer)
	require.True(t, c.ExpiresAt.Time.Equal(now.Add(time.Hour)))
	require.True(t, c.IssuedAt.Time.Equal(now))
	require.NotEmpty(t, c.ID)

	other := jwtx.NewSessionClaims("01ACCOUNT", "staff", "sam@example.com", nil, time.Hour, "bookit-auth", now)
	require.NotEqual(t, c.ID, other.ID)
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "bookit-auth"}}

	require.NoError(t, c.ValidateIssuer("bookit-auth"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		rc   jwt.RegisteredClaims
		want error
	}{
		{"valid token", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}, nil},
		{"expired token", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}, jwtx.ErrExpired},
		{"not yet valid", jwt.RegisteredClaims{NotBefore: jwt.NewNumericDate(now.Add(time.Minute))}, jwtx.ErrNotYetValid},
		{"no exp or nbf", jwt.RegisteredClaims{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &jwtx.Claims{RegisteredClaims: tt.rc}
			if tt.want == nil {
				require.NoError(t, c.ValidateExpiry())
				return
			}
			require.ErrorIs(t, c.ValidateExpiry(), tt.want)
		})
	}
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Now().UTC()

	within := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
	}}
	require.NoError(t, within.ValidateExpiryWithLeeway(30*time.Second))

	beyond := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Minute)),
	}}
	require.ErrorIs(t, beyond.ValidateExpiryWithLeeway(30*time.Second), jwtx.ErrExpired)
}
