package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed validity of a login session token.
const SessionTTL = time.Hour

// Authentication method references carried in the amr claim.
const (
	AMRPassword   = "pwd"
	AMRTOTP       = "otp"
	AMRBackupCode = "backup"
	AMRMFA        = "mfa"
)

// Claims are session-token claims shared by every BookIt service that
// accepts tokens from the auth service.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the account role: "user", "staff" or "admin".
	Role string `json:"role,omitempty"`

	// Email of the authenticated account.
	Email string `json:"email,omitempty"`

	// Authentication Methods Reference, e.g. ["pwd"] or ["pwd","mfa"].
	AMR []string `json:"amr,omitempty"`
}

// NewSessionClaims builds the claims for a freshly authenticated account.
func NewSessionClaims(
	subject, role, email string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:  role,
		Email: email,
		AMR:   amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
