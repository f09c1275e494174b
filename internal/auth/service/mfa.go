package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/metrics"
	"github.com/aussiebroadwan/bookit/internal/auth/mfa"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

// MFAService manages TOTP enrolment, backup codes and standalone MFA
// verification for an account.
type MFAService struct {
	Store  store.Store
	Engine *mfa.Engine
	Audit  *audit.Logger
	Now    func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Initialize generates and stores a new sealed secret. MFA stays disabled
// until VerifySetup succeeds.
func (s *MFAService) Initialize(ctx context.Context, accountID string) (domain.MFASetup, error) {
	acct, err := s.account(ctx, domain.ActionMFAInit, accountID, "MFA initialization for non-existent user")
	if err != nil {
		return domain.MFASetup{}, err
	}
	actor := audit.ActorFromAccount(acct)

	if acct.MFAChallengeRequired() {
		return domain.MFASetup{}, ErrMFAAlreadyEnabled
	}

	secret, err := s.Engine.GenerateSecret(acct.Email)
	if err != nil {
		return domain.MFASetup{}, s.fault(ctx, domain.ActionMFAInit, actor, "MFA initialization failed", err)
	}
	qr, err := s.Engine.QRCode(secret.ProvisioningURI)
	if err != nil {
		return domain.MFASetup{}, s.fault(ctx, domain.ActionMFAInit, actor, "MFA initialization failed", err)
	}
	sealed, err := s.Engine.EncryptSecret(secret.Secret)
	if err != nil {
		return domain.MFASetup{}, s.fault(ctx, domain.ActionMFAInit, actor, "MFA initialization failed", err)
	}
	if err := s.Store.Accounts().SetMFASecret(ctx, acct.ID, sealed); err != nil {
		return domain.MFASetup{}, s.fault(ctx, domain.ActionMFAInit, actor, "MFA initialization failed", err)
	}

	s.Audit.DataModification(ctx, domain.ActionMFAInit, actor, domain.ResourceUser, acct.ID,
		map[string]any{"action": "MFA setup initialized"})

	return domain.MFASetup{
		QRCode:         qr,
		ManualEntryKey: secret.DisplayKey,
		ProvisionURI:   secret.ProvisioningURI,
	}, nil
}

// VerifySetup confirms enrolment with a TOTP code, enables MFA and returns
// the plaintext backup codes. They are never retrievable again.
func (s *MFAService) VerifySetup(ctx context.Context, accountID, code string) ([]string, error) {
	acct, err := s.account(ctx, domain.ActionMFAVerifySetup, accountID, "MFA verification for non-existent user")
	if err != nil {
		return nil, err
	}
	actor := audit.ActorFromAccount(acct)

	if acct.MFASecret == nil {
		s.Audit.Security(ctx, domain.ActionMFAVerifySetup, actor,
			"MFA verification without initialization", domain.SeverityMedium)
		return nil, ErrMFANotInitialized
	}
	if acct.MFAChallengeRequired() {
		return nil, ErrMFAAlreadyEnabled
	}

	secret, err := s.Engine.DecryptSecret(*acct.MFASecret)
	if err != nil {
		return nil, s.fault(ctx, domain.ActionMFAVerifySetup, actor, "MFA setup verification failed", err)
	}
	ok := s.Engine.VerifyCode(code, secret)
	metrics.ObserveMFA(string(domain.MFAMethodTOTP), ok)
	if !ok {
		s.Audit.Security(ctx, domain.ActionMFAVerifySetup, actor,
			"Invalid MFA token during setup", domain.SeverityMedium)
		return nil, ErrInvalidMFACode
	}

	codes, err := mfa.GenerateBackupCodes(mfa.BackupCodeCount)
	if err != nil {
		return nil, s.fault(ctx, domain.ActionMFAVerifySetup, actor, "MFA setup verification failed", err)
	}
	if err := s.Store.Accounts().EnableMFA(ctx, acct.ID, mfa.HashBackupCodes(codes), s.now()); err != nil {
		return nil, s.fault(ctx, domain.ActionMFAVerifySetup, actor, "MFA setup verification failed", err)
	}

	s.Audit.DataModification(ctx, domain.ActionMFAEnable, actor, domain.ResourceUser, acct.ID,
		map[string]any{"action": "MFA setup completed and enabled"})
	return codes, nil
}

// Verify checks a TOTP code or a backup code outside of login. A backup
// code is consumed on success and wins when both are given.
func (s *MFAService) Verify(ctx context.Context, accountID, code, backupCode string) (domain.MFAVerification, error) {
	code = strings.TrimSpace(code)
	backupCode = strings.TrimSpace(backupCode)
	if code == "" && backupCode == "" {
		return domain.MFAVerification{}, ErrInvalidInput
	}

	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.MFAVerification{}, s.fault(ctx, domain.ActionMFAVerify, nil, "MFA verification error", err)
	}
	if err != nil || !acct.MFAChallengeRequired() {
		s.Audit.Security(ctx, domain.ActionMFAVerify, nil,
			"MFA verification for user without MFA: "+accountID, domain.SeverityHigh)
		return domain.MFAVerification{}, ErrMFANotEnabled
	}
	actor := audit.ActorFromAccount(acct)

	method, ok, err := verifySecondFactor(ctx, s.Store, s.Engine, acct, code, backupCode)
	if err != nil {
		return domain.MFAVerification{}, s.fault(ctx, domain.ActionMFAVerify, actor, "MFA verification error", err)
	}
	metrics.ObserveMFA(string(method), ok)
	if !ok {
		what := "TOTP token"
		if method == domain.MFAMethodBackupCode {
			what = "backup code"
		}
		s.Audit.Security(ctx, domain.ActionMFAFailed, actor,
			"Failed MFA verification - "+what, domain.SeverityHigh)
		return domain.MFAVerification{}, ErrInvalidMFACode
	}

	if err := s.Store.Accounts().TouchMFAVerification(ctx, acct.ID, s.now()); err != nil {
		return domain.MFAVerification{}, s.fault(ctx, domain.ActionMFAVerify, actor, "MFA verification error", err)
	}

	remaining := len(acct.MFABackupCodes)
	if method == domain.MFAMethodBackupCode {
		remaining--
	}
	s.Audit.DataAccess(ctx, domain.ActionMFAVerify, actor, domain.ResourceUser, acct.ID,
		map[string]any{"method": string(method), "remainingBackupCodes": remaining})

	return domain.MFAVerification{Method: method, RemainingBackupCodes: remaining}, nil
}

// Disable turns MFA off after re-checking the account password.
func (s *MFAService) Disable(ctx context.Context, accountID, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	acct, err := s.account(ctx, domain.ActionMFADisable, accountID, "MFA disable for non-existent user")
	if err != nil {
		return err
	}
	actor := audit.ActorFromAccount(acct)

	if err := s.checkPassword(ctx, domain.ActionMFADisable, actor, acct, password,
		"Invalid password during MFA disable attempt"); err != nil {
		return err
	}

	if err := s.Store.Accounts().DisableMFA(ctx, acct.ID); err != nil {
		return s.fault(ctx, domain.ActionMFADisable, actor, "MFA disable failed", err)
	}

	s.Audit.DataModification(ctx, domain.ActionMFADisable, actor, domain.ResourceUser, acct.ID,
		map[string]any{"action": "MFA disabled"})
	return nil
}

// RegenerateBackupCodes replaces every backup code after re-checking the
// account password.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, accountID, password string) ([]string, error) {
	if password == "" {
		return nil, ErrInvalidInput
	}
	acct, err := s.account(ctx, domain.ActionMFABackupRegen, accountID, "Backup code regeneration for non-existent user")
	if err != nil {
		return nil, err
	}
	actor := audit.ActorFromAccount(acct)

	if !acct.MFAChallengeRequired() {
		return nil, ErrMFANotEnabled
	}
	if err := s.checkPassword(ctx, domain.ActionMFABackupRegen, actor, acct, password,
		"Invalid password during backup code regeneration"); err != nil {
		return nil, err
	}

	codes, err := mfa.GenerateBackupCodes(mfa.BackupCodeCount)
	if err != nil {
		return nil, s.fault(ctx, domain.ActionMFABackupRegen, actor, "Backup code regeneration failed", err)
	}
	if err := s.Store.Accounts().ReplaceBackupCodes(ctx, acct.ID, mfa.HashBackupCodes(codes)); err != nil {
		return nil, s.fault(ctx, domain.ActionMFABackupRegen, actor, "Backup code regeneration failed", err)
	}

	s.Audit.DataModification(ctx, domain.ActionMFABackupRegen, actor, domain.ResourceUser, acct.ID,
		map[string]any{"action": "MFA backup codes regenerated"})
	return codes, nil
}

// Status reports the MFA flags and how many backup codes remain.
func (s *MFAService) Status(ctx context.Context, accountID string) (domain.MFAStatus, error) {
	acct, err := s.account(ctx, domain.ActionMFAStatus, accountID, "MFA status check for non-existent user")
	if err != nil {
		return domain.MFAStatus{}, err
	}

	s.Audit.DataAccess(ctx, domain.ActionMFAStatus, audit.ActorFromAccount(acct), domain.ResourceUser, acct.ID, nil)
	return domain.MFAStatus{
		MFAEnabled:           acct.MFAEnabled,
		MFASetupCompleted:    acct.MFASetupCompleted,
		RemainingBackupCodes: len(acct.MFABackupCodes),
	}, nil
}

// account loads the caller's account. A missing account is audited as a
// HIGH security event since a valid session pointed at it.
func (s *MFAService) account(ctx context.Context, action domain.Action, id, missing string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.Audit.Security(ctx, action, nil, missing, domain.SeverityHigh)
		return domain.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, s.fault(ctx, action, nil, "Failed to load account", err)
	}
	return acct, nil
}

func (s *MFAService) checkPassword(
	ctx context.Context,
	action domain.Action,
	actor *audit.Actor,
	acct domain.Account,
	password, failure string,
) error {
	err := cryptox.VerifyPassword(password, acct.PasswordHash)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		s.Audit.Security(ctx, action, actor, failure, domain.SeverityHigh)
		return ErrInvalidPassword
	default:
		return s.fault(ctx, action, actor, "Password check failed", err)
	}
}

func (s *MFAService) fault(ctx context.Context, action domain.Action, actor *audit.Actor, what string, err error) error {
	slogx.FromContext(ctx).Error(strings.ToLower(what), slog.String("action", string(action)), slog.Any("error", err))
	s.Audit.Security(ctx, action, actor, what+": "+err.Error(), domain.SeverityHigh)
	return fmt.Errorf("%s: %w", strings.ToLower(what), err)
}

// verifySecondFactor checks a backup code when one is given and a TOTP code
// otherwise. A matching backup code is removed in a single conditional
// update so concurrent submissions consume it at most once. A secret that
// cannot be decrypted counts as a mismatch.
func verifySecondFactor(
	ctx context.Context,
	st store.Store,
	engine *mfa.Engine,
	acct domain.Account,
	code, backup string,
) (domain.MFAMethod, bool, error) {
	if backup != "" {
		if !mfa.VerifyBackupCode(backup, acct.MFABackupCodes) {
			return domain.MFAMethodBackupCode, false, nil
		}
		consumed, err := st.Accounts().ConsumeBackupCode(ctx, acct.ID, mfa.HashBackupCode(backup))
		if err != nil {
			return domain.MFAMethodBackupCode, false, fmt.Errorf("failed to consume backup code: %w", err)
		}
		return domain.MFAMethodBackupCode, consumed, nil
	}

	if acct.MFASecret == nil {
		return domain.MFAMethodTOTP, false, nil
	}
	secret, err := engine.DecryptSecret(*acct.MFASecret)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to decrypt MFA secret",
			slog.String("account_id", acct.ID), slog.Any("error", err))
		return domain.MFAMethodTOTP, false, nil
	}
	return domain.MFAMethodTOTP, engine.VerifyCode(code, secret), nil
}
