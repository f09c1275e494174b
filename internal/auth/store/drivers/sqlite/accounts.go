package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/jmoiron/sqlx"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type accountsRepo struct {
	q queryer
}

type accountRow struct {
	ID                  string         `db:"id"`
	Email               string         `db:"email"`
	FullName            string         `db:"full_name"`
	Address             string         `db:"address"`
	Phone               string         `db:"phone"`
	Role                string         `db:"role"`
	PasswordHash        string         `db:"password_hash"`
	PasswordUpdatedAt   string         `db:"password_updated_at"`
	Verified            bool           `db:"verified"`
	OTPCode             sql.NullString `db:"otp_code"`
	OTPExpiresAt        sql.NullString `db:"otp_expires_at"`
	FailedLoginAttempts int            `db:"failed_login_attempts"`
	LockoutUntil        sql.NullString `db:"lockout_until"`
	MFAEnabled          bool           `db:"mfa_enabled"`
	MFASetupCompleted   bool           `db:"mfa_setup_completed"`
	MFASecret           sql.NullString `db:"mfa_secret"`
	MFABackupCodes      string         `db:"mfa_backup_codes"`
	LastMFAVerification sql.NullString `db:"last_mfa_verification"`
	CreatedAt           string         `db:"created_at"`
	UpdatedAt           string         `db:"updated_at"`
}

const accountColumns = `id, email, full_name, address, phone, role, password_hash,
	password_updated_at, verified, otp_code, otp_expires_at, failed_login_attempts,
	lockout_until, mfa_enabled, mfa_setup_completed, mfa_secret, mfa_backup_codes,
	last_mfa_verification, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, normalizeEmail(email))
}

func (r *accountsRepo) get(ctx context.Context, query string, arg any) (domain.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, arg); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	codes, err := encodeCodes(a.MFABackupCodes)
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		normalizeEmail(a.Email),
		a.FullName,
		a.Address,
		a.Phone,
		string(a.Role),
		a.PasswordHash,
		formatTime(a.PasswordUpdatedAt),
		a.Verified,
		mapOptionalString(a.OTPCode),
		mapOptionalTime(a.OTPExpiresAt),
		a.FailedLoginAttempts,
		mapOptionalTime(a.LockoutUntil),
		a.MFAEnabled,
		a.MFASetupCompleted,
		mapOptionalString(a.MFASecret),
		codes,
		mapOptionalTime(a.LastMFAVerification),
		now,
		now,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM accounts`); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *accountsRepo) SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.update(ctx, id, `otp_code = ?, otp_expires_at = ?`, code, formatTime(expiresAt))
}

func (r *accountsRepo) MarkVerified(ctx context.Context, id string) error {
	return r.update(ctx, id, `verified = 1, otp_code = NULL, otp_expires_at = NULL`)
}

func (r *accountsRepo) ClearExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts SET otp_code = NULL, otp_expires_at = NULL, updated_at = ?
		WHERE otp_code IS NOT NULL AND otp_expires_at < ?`,
		formatTime(time.Now()), formatTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) UpdateLoginFailures(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	return r.update(ctx, id, `failed_login_attempts = ?, lockout_until = ?`, attempts, mapOptionalTime(lockoutUntil))
}

func (r *accountsRepo) ResetLoginFailures(ctx context.Context, id string) error {
	return r.update(ctx, id, `failed_login_attempts = 0, lockout_until = NULL`)
}

func (r *accountsRepo) SetMFASecret(ctx context.Context, id, sealedSecret string) error {
	return r.update(ctx, id, `mfa_secret = ?, mfa_enabled = 0, mfa_setup_completed = 0`, sealedSecret)
}

func (r *accountsRepo) EnableMFA(ctx context.Context, id string, backupCodeHashes []string, at time.Time) error {
	codes, err := encodeCodes(backupCodeHashes)
	if err != nil {
		return err
	}
	return r.update(ctx, id,
		`mfa_enabled = 1, mfa_setup_completed = 1, mfa_backup_codes = ?, last_mfa_verification = ?`,
		codes, formatTime(at))
}

func (r *accountsRepo) DisableMFA(ctx context.Context, id string) error {
	return r.update(ctx, id, `mfa_enabled = 0, mfa_setup_completed = 0, mfa_secret = NULL,
		mfa_backup_codes = '[]', last_mfa_verification = NULL`)
}

func (r *accountsRepo) ReplaceBackupCodes(ctx context.Context, id string, backupCodeHashes []string) error {
	codes, err := encodeCodes(backupCodeHashes)
	if err != nil {
		return err
	}
	return r.update(ctx, id, `mfa_backup_codes = ?`, codes)
}

func (r *accountsRepo) ConsumeBackupCode(ctx context.Context, id, hash string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET mfa_backup_codes = (
				SELECT COALESCE(json_group_array(value), '[]')
				FROM (SELECT value FROM json_each(accounts.mfa_backup_codes) WHERE value <> ? ORDER BY key)
			),
			updated_at = ?
		WHERE id = ?
		  AND EXISTS (SELECT 1 FROM json_each(accounts.mfa_backup_codes) WHERE value = ?)`,
		hash, formatTime(time.Now()), id, hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *accountsRepo) TouchMFAVerification(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, `last_mfa_verification = ?`, formatTime(at))
}

// update applies set to one account, bumps updated_at and reports
// ErrNotFound when no row matched.
func (r *accountsRepo) update(ctx context.Context, id, set string, args ...any) error {
	args = append(args, formatTime(time.Now()), id)
	res, err := r.q.ExecContext(ctx, `UPDATE accounts SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapAccount(row accountRow) (domain.Account, error) {
	a := domain.Account{
		ID:                  row.ID,
		Email:               row.Email,
		FullName:            row.FullName,
		Address:             row.Address,
		Phone:               row.Phone,
		Role:                domain.Role(row.Role),
		PasswordHash:        row.PasswordHash,
		Verified:            row.Verified,
		OTPCode:             mapNullStringPtr(row.OTPCode),
		FailedLoginAttempts: row.FailedLoginAttempts,
		MFAEnabled:          row.MFAEnabled,
		MFASetupCompleted:   row.MFASetupCompleted,
		MFASecret:           mapNullStringPtr(row.MFASecret),
	}

	if err := json.Unmarshal([]byte(row.MFABackupCodes), &a.MFABackupCodes); err != nil {
		return domain.Account{}, fmt.Errorf("failed to decode backup codes: %w", err)
	}

	var err error
	if a.PasswordUpdatedAt, err = parseTime(row.PasswordUpdatedAt); err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return domain.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return domain.Account{}, err
	}
	if a.OTPExpiresAt, err = mapNullTimePtr(row.OTPExpiresAt); err != nil {
		return domain.Account{}, err
	}
	if a.LockoutUntil, err = mapNullTimePtr(row.LockoutUntil); err != nil {
		return domain.Account{}, err
	}
	if a.LastMFAVerification, err = mapNullTimePtr(row.LastMFAVerification); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func encodeCodes(codes []string) (string, error) {
	if codes == nil {
		codes = []string{}
	}
	b, err := json.Marshal(codes)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup codes: %w", err)
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var serr *moderncsqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return strings.Contains(serr.Error(), "UNIQUE constraint failed")
}
