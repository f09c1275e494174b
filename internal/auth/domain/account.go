package domain

import "time"

// Role is the fixed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

const (
	// MaxFailedLogins is the failed-password count that triggers a lockout.
	MaxFailedLogins = 5

	// LockoutDuration is how long a lockout lasts.
	LockoutDuration = 15 * time.Minute

	// PasswordValidity is how long a password may be used after it was set.
	PasswordValidity = 90 * 24 * time.Hour

	// OTPValidity is how long an email verification code stays usable.
	OTPValidity = 5 * time.Minute
)

type Account struct {
	ID       string
	Email    string // lower-cased, unique
	FullName string
	Address  string
	Phone    string
	Role     Role

	PasswordHash      string // argon2id PHC
	PasswordUpdatedAt time.Time

	Verified     bool
	OTPCode      *string
	OTPExpiresAt *time.Time

	FailedLoginAttempts int
	LockoutUntil        *time.Time

	MFAEnabled          bool
	MFASetupCompleted   bool
	MFASecret           *string  // sealed, base64
	MFABackupCodes      []string // SHA-256 hex digests, ordered
	LastMFAVerification *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLockedOut reports whether a lockout is in force at now.
func (a *Account) IsLockedOut(now time.Time) bool {
	return a.LockoutUntil != nil && a.LockoutUntil.After(now)
}

// PasswordExpired reports whether the password is older than PasswordValidity.
func (a *Account) PasswordExpired(now time.Time) bool {
	return now.After(a.PasswordUpdatedAt.Add(PasswordValidity))
}

// MFAChallengeRequired is the only condition that gates an MFA challenge at
// login. A stored secret alone never does.
func (a *Account) MFAChallengeRequired() bool {
	return a.MFAEnabled && a.MFASetupCompleted
}

// Registration is the self-service sign-up input.
type Registration struct {
	FullName string
	Address  string
	Phone    string
	Email    string
	Password string
}
