package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/aussiebroadwan/bookit/pkg/idx"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

const otpDigits = 6

// AccountService handles self-service registration and email verification.
type AccountService struct {
	Store  store.Store
	Mailer Mailer
	Audit  *audit.Logger
	Now    func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates an unverified account and mails it a verification code.
func (s *AccountService) Register(ctx context.Context, req domain.Registration) (domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return domain.Account{}, ErrInvalidInput
	}

	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, email); err == nil {
		s.Audit.Security(ctx, domain.ActionRegister, nil,
			"Registration attempt with existing email: "+email, domain.SeverityMedium)
		return domain.Account{}, ErrAccountExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, s.fault(ctx, domain.ActionRegister, "Registration failed", err)
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.Account{}, s.fault(ctx, domain.ActionRegister, "Registration failed", err)
	}
	otp, err := cryptox.NumericCode(otpDigits)
	if err != nil {
		return domain.Account{}, s.fault(ctx, domain.ActionRegister, "Registration failed", err)
	}

	now := s.now()
	expires := now.Add(domain.OTPValidity)
	acct := domain.Account{
		ID:                idx.New().String(),
		Email:             email,
		FullName:          strings.TrimSpace(req.FullName),
		Address:           strings.TrimSpace(req.Address),
		Phone:             strings.TrimSpace(req.Phone),
		Role:              domain.RoleUser,
		PasswordHash:      hash,
		PasswordUpdatedAt: now,
		OTPCode:           &otp,
		OTPExpiresAt:      &expires,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Audit.Security(ctx, domain.ActionRegister, nil,
				"Registration attempt with existing email: "+email, domain.SeverityMedium)
			return domain.Account{}, ErrAccountExists
		}
		return domain.Account{}, s.fault(ctx, domain.ActionRegister, "Registration failed", err)
	}

	if err := s.Mailer.SendVerificationCode(ctx, email, otp); err != nil {
		return domain.Account{}, s.fault(ctx, domain.ActionRegister, "Registration failed", err)
	}

	s.Audit.Authentication(ctx, domain.ActionRegister, audit.ActorFromAccount(acct), true, "")
	return acct, nil
}

// VerifyEmail checks a verification code and marks the account verified.
// Unknown emails, wrong codes and expired codes all yield ErrInvalidOTP.
func (s *AccountService) VerifyEmail(ctx context.Context, email, otp string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return s.fault(ctx, domain.ActionVerifyEmail, "OTP verification error", err)
	}

	if err != nil || !otpMatches(acct, otp, s.now()) {
		var actor *audit.Actor
		if err == nil {
			actor = audit.ActorFromAccount(acct)
		}
		s.Audit.Security(ctx, domain.ActionVerifyEmail, actor,
			"Failed OTP verification for email: "+email, domain.SeverityMedium)
		return ErrInvalidOTP
	}

	if err := s.Store.Accounts().MarkVerified(ctx, acct.ID); err != nil {
		return s.fault(ctx, domain.ActionVerifyEmail, "OTP verification error", err)
	}

	s.Audit.Authentication(ctx, domain.ActionVerifyEmail, audit.ActorFromAccount(acct), true, "")
	return nil
}

func otpMatches(a domain.Account, otp string, now time.Time) bool {
	if a.OTPCode == nil || a.OTPExpiresAt == nil || now.After(*a.OTPExpiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*a.OTPCode), []byte(strings.TrimSpace(otp))) == 1
}

// ResendOTP replaces the account's verification code and mails the new one.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.Audit.Security(ctx, domain.ActionResendOTP, nil,
			"OTP resend attempt for non-existent email: "+email, domain.SeverityMedium)
		return ErrAccountNotFound
	}
	if err != nil {
		return s.fault(ctx, domain.ActionResendOTP, "OTP resend failed", err)
	}

	otp, err := cryptox.NumericCode(otpDigits)
	if err != nil {
		return s.fault(ctx, domain.ActionResendOTP, "OTP resend failed", err)
	}
	if err := s.Store.Accounts().SetVerificationCode(ctx, acct.ID, otp, s.now().Add(domain.OTPValidity)); err != nil {
		return s.fault(ctx, domain.ActionResendOTP, "OTP resend failed", err)
	}
	if err := s.Mailer.SendVerificationCode(ctx, acct.Email, otp); err != nil {
		return s.fault(ctx, domain.ActionResendOTP, "OTP resend failed", err)
	}

	s.Audit.Authentication(ctx, domain.ActionResendOTP, audit.ActorFromAccount(acct), true, "")
	return nil
}

// fault logs and audits an infrastructure error and returns it wrapped.
func (s *AccountService) fault(ctx context.Context, action domain.Action, what string, err error) error {
	slogx.FromContext(ctx).Error(strings.ToLower(what), slog.String("action", string(action)), slog.Any("error", err))
	s.Audit.Security(ctx, action, nil, what+": "+err.Error(), domain.SeverityHigh)
	return fmt.Errorf("%s: %w", strings.ToLower(what), err)
}
