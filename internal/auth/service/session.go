package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/pkg/jwtx"
)

// SessionIssuer mints the bearer token returned by a successful login.
type SessionIssuer struct {
	Signer jwtx.Signer
	Issuer string
	Now    func() time.Time
}

// Issue signs a session token for a, recording how it authenticated in the
// amr claim.
func (s *SessionIssuer) Issue(a domain.Account, amr ...string) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	claims := jwtx.NewSessionClaims(a.ID, string(a.Role), a.Email, amr, jwtx.SessionTTL, s.Issuer, now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}
