package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so a transaction can only be opened from the root.
type Store interface {
	Accounts() Accounts
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts holds credential and MFA state. Updates are field-level so that
// concurrent writers only race on the columns they touch.
type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches the lower-cased email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account. A taken email yields ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)

	// SetVerificationCode stores a fresh email OTP and its expiry.
	SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error

	// MarkVerified sets verified and clears the OTP.
	MarkVerified(ctx context.Context, id string) error

	// ClearExpiredVerificationCodes nulls OTPs that expired before now and
	// returns how many were cleared.
	ClearExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error)

	// UpdateLoginFailures writes the failed-attempt counter and lockout expiry.
	UpdateLoginFailures(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error

	// ResetLoginFailures zeroes the counter and clears any lockout.
	ResetLoginFailures(ctx context.Context, id string) error

	// SetMFASecret stores a sealed secret and marks MFA as not yet set up.
	SetMFASecret(ctx context.Context, id, sealedSecret string) error

	// EnableMFA completes setup with the given backup code hashes.
	EnableMFA(ctx context.Context, id string, backupCodeHashes []string, at time.Time) error

	// DisableMFA clears the secret, backup codes and both MFA flags.
	DisableMFA(ctx context.Context, id string) error

	// ReplaceBackupCodes overwrites the backup code hash set.
	ReplaceBackupCodes(ctx context.Context, id string, backupCodeHashes []string) error

	// ConsumeBackupCode removes hash from the account's set in one statement.
	// It reports false when the hash was not present, so two concurrent
	// submissions of one code consume it at most once.
	ConsumeBackupCode(ctx context.Context, id, hash string) (bool, error)

	// TouchMFAVerification records a successful MFA check.
	TouchMFAVerification(ctx context.Context, id string, at time.Time) error
}

// AuditEvents is the append-only activity log.
type AuditEvents interface {
	InsertAuditEvent(ctx context.Context, e domain.AuditEvent) error

	// ListAuditEvents returns matches newest first. A limit below 1 returns
	// every match.
	ListAuditEvents(ctx context.Context, f domain.AuditFilter, limit, offset int) ([]domain.AuditEvent, error)

	CountAuditEvents(ctx context.Context, f domain.AuditFilter) (int, error)

	// CountAuditEventsBy groups matches by field and returns the largest
	// groups first. A limit below 1 returns every group.
	CountAuditEventsBy(ctx context.Context, field GroupField, f domain.AuditFilter, limit int) ([]domain.Count, error)

	// CountDistinctUsers counts distinct non-null actors among matches.
	CountDistinctUsers(ctx context.Context, f domain.AuditFilter) (int, error)

	// DeleteAuditEventsBefore removes events stamped strictly before cutoff.
	DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GroupField names an audit column that can be grouped on.
type GroupField string

const (
	GroupByAction    GroupField = "action"
	GroupBySeverity  GroupField = "severity"
	GroupBySuccess   GroupField = "success"
	GroupByIPAddress GroupField = "ip_address"
)
