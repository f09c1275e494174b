package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/metrics"
	"github.com/aussiebroadwan/bookit/internal/auth/mfa"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/aussiebroadwan/bookit/pkg/jwtx"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

// AuthService runs the login state machine. Expected outcomes are returned
// as a domain.LoginResult; only infrastructure faults are errors.
type AuthService struct {
	Store    store.Store
	MFA      *mfa.Engine
	Sessions *SessionIssuer
	Audit    *audit.Logger
	Now      func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck runs one password verification against a throwaway hash
// so an unknown email costs the same as a wrong password.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("bookit-dummy-password")
	})
	if dummyHash != "" {
		_ = cryptox.VerifyPassword(password, dummyHash)
	}
}

// Login evaluates one login attempt. Every terminal state writes exactly one
// audit event.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	start := time.Now()

	res, err := s.login(ctx, req)

	metrics.LoginDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("ERROR").Inc()
		slogx.FromContext(ctx).Error("login failed", slog.Any("error", err))
		s.Audit.Security(ctx, domain.ActionLogin, nil, "Login error: "+err.Error(), domain.SeverityHigh)
		return domain.LoginResult{}, err
	}
	metrics.LoginAttempts.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (s *AuthService) login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	now := s.now()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		burnPasswordCheck(req.Password)
		s.Audit.Record(ctx, audit.Entry{
			Action:       domain.ActionFailedLogin,
			Description:  "Login attempt with unknown email",
			Severity:     domain.SeverityMedium,
			Failed:       true,
			ErrorMessage: domain.MsgInvalidCredentials,
			StatusCode:   http.StatusBadRequest,
			ResourceType: domain.ResourceUser,
			Metadata:     map[string]any{"email": email},
		})
		return invalidCredentials(), nil
	}
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to load account: %w", err)
	}
	actor := audit.ActorFromAccount(acct)

	if acct.IsLockedOut(now) {
		msg := fmt.Sprintf(domain.MsgLockedOutUntil, acct.LockoutUntil.UTC().Format(time.RFC3339))
		s.loginFailure(ctx, actor, domain.SeverityMedium, http.StatusForbidden, "Login attempt on locked account", nil)
		return domain.LoginResult{Outcome: domain.LoginLockedOut, Message: msg}, nil
	}

	if err := cryptox.VerifyPassword(req.Password, acct.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.LoginResult{}, fmt.Errorf("failed to verify password: %w", err)
		}
		return s.wrongPassword(ctx, acct, actor, now)
	}

	if !acct.Verified {
		s.Audit.Record(ctx, audit.Entry{
			Actor:        actor,
			Action:       domain.ActionLogin,
			Description:  "Login attempt with unverified email: " + acct.Email,
			Severity:     domain.SeverityMedium,
			Failed:       true,
			ErrorMessage: domain.MsgUnverified,
			StatusCode:   http.StatusBadRequest,
			ResourceType: domain.ResourceUser,
			ResourceID:   acct.ID,
		})
		return domain.LoginResult{Outcome: domain.LoginUnverified, Message: domain.MsgUnverified}, nil
	}

	if acct.PasswordExpired(now) {
		s.loginFailure(ctx, actor, domain.SeverityMedium, http.StatusForbidden, domain.MsgPasswordExpired, nil)
		return domain.LoginResult{Outcome: domain.LoginExpiredPassword, Message: domain.MsgPasswordExpired}, nil
	}

	if acct.FailedLoginAttempts != 0 || acct.LockoutUntil != nil {
		if err := s.Store.Accounts().ResetLoginFailures(ctx, acct.ID); err != nil {
			return domain.LoginResult{}, fmt.Errorf("failed to reset login failures: %w", err)
		}
	}

	amr := []string{jwtx.AMRPassword}
	var method domain.MFAMethod

	if acct.MFAChallengeRequired() {
		code := strings.TrimSpace(req.MFACode)
		backup := strings.TrimSpace(req.BackupCode)

		if code == "" && backup == "" {
			s.Audit.Record(ctx, audit.Entry{
				Actor:        actor,
				Action:       domain.ActionLoginMFARequired,
				Description:  "Login requires MFA for user: " + acct.Email,
				Severity:     domain.SeverityLow,
				ResourceType: domain.ResourceUser,
				ResourceID:   acct.ID,
			})
			return domain.LoginResult{
				Outcome:    domain.LoginMFARequired,
				Message:    domain.MsgMFARequired,
				AccountID:  acct.ID,
				MFAEnabled: true,
			}, nil
		}

		var ok bool
		method, ok, err = verifySecondFactor(ctx, s.Store, s.MFA, acct, code, backup)
		if err != nil {
			return domain.LoginResult{}, err
		}
		metrics.ObserveMFA(string(method), ok)
		if !ok {
			s.loginFailure(ctx, actor, domain.SeverityHigh, http.StatusBadRequest, "Invalid MFA token",
				map[string]any{"stage": "mfa", "method": string(method)})
			return domain.LoginResult{Outcome: domain.LoginMFAInvalid, Message: domain.MsgMFAInvalid}, nil
		}
		if err := s.Store.Accounts().TouchMFAVerification(ctx, acct.ID, now); err != nil {
			return domain.LoginResult{}, fmt.Errorf("failed to record MFA verification: %w", err)
		}

		amr = append(amr, jwtx.AMRMFA)
		if method == domain.MFAMethodBackupCode {
			amr = append(amr, jwtx.AMRBackupCode)
		} else {
			amr = append(amr, jwtx.AMRTOTP)
		}
	}

	token, err := s.Sessions.Issue(acct, amr...)
	if err != nil {
		return domain.LoginResult{}, err
	}

	s.Audit.Authentication(ctx, domain.ActionLogin, actor, true, "")
	return domain.LoginResult{
		Outcome:    domain.LoginAuthenticated,
		Message:    domain.MsgLoginSuccess,
		AccountID:  acct.ID,
		Role:       acct.Role,
		Token:      token,
		MFAEnabled: acct.MFAEnabled,
		MFAMethod:  method,
	}, nil
}

// wrongPassword bumps the failure counter, locking the account once it
// reaches domain.MaxFailedLogins.
func (s *AuthService) wrongPassword(
	ctx context.Context,
	acct domain.Account,
	actor *audit.Actor,
	now time.Time,
) (domain.LoginResult, error) {
	attempts := acct.FailedLoginAttempts + 1

	if attempts >= domain.MaxFailedLogins {
		until := now.Add(domain.LockoutDuration)
		if err := s.Store.Accounts().UpdateLoginFailures(ctx, acct.ID, attempts, &until); err != nil {
			return domain.LoginResult{}, fmt.Errorf("failed to record lockout: %w", err)
		}
		s.loginFailure(ctx, actor, domain.SeverityHigh, http.StatusForbidden,
			"Account locked due to multiple failed login attempts.",
			map[string]any{"failedAttempts": attempts, "lockoutUntil": until.UTC().Format(time.RFC3339)})
		return domain.LoginResult{Outcome: domain.LoginLockedOut, Message: domain.MsgLockoutTriggered}, nil
	}

	if err := s.Store.Accounts().UpdateLoginFailures(ctx, acct.ID, attempts, nil); err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to record login failure: %w", err)
	}
	s.loginFailure(ctx, actor, domain.SeverityMedium, http.StatusBadRequest, domain.MsgInvalidCredentials,
		map[string]any{"failedAttempts": attempts})
	return invalidCredentials(), nil
}

// loginFailure records a FAILED_LOGIN event against a known account.
func (s *AuthService) loginFailure(
	ctx context.Context,
	actor *audit.Actor,
	severity domain.Severity,
	status int,
	msg string,
	metadata map[string]any,
) {
	s.Audit.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       domain.ActionFailedLogin,
		Description:  "User failed login",
		Severity:     severity,
		Failed:       true,
		ErrorMessage: msg,
		StatusCode:   status,
		ResourceType: domain.ResourceUser,
		ResourceID:   actor.ID,
		Metadata:     metadata,
	})
}

func invalidCredentials() domain.LoginResult {
	return domain.LoginResult{Outcome: domain.LoginInvalid, Message: domain.MsgInvalidCredentials}
}
