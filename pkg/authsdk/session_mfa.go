package authsdk

import (
	"context"
	"net/http"
)

// SetupMFA starts TOTP enrolment and returns the QR code and manual key.
func (s *Session) SetupMFA(ctx context.Context) (*MFASetupResponse, error) {
	var out MFASetupResponse
	if err := s.authJSON(ctx, http.MethodPost, "/v1/mfa/setup", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFASetup confirms enrolment with a TOTP code. The returned backup
// codes are shown only once.
func (s *Session) VerifyMFASetup(ctx context.Context, totpCode string) (*MFASetupVerifyResponse, error) {
	var out MFASetupVerifyResponse
	if err := s.authJSON(ctx, http.MethodPost, "/v1/mfa/setup/verify", MFACodeRequest{Token: totpCode}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DisableMFA turns MFA off after re-confirming the password.
func (s *Session) DisableMFA(ctx context.Context, password string) error {
	var out MessageResponse
	return s.authJSON(ctx, http.MethodPost, "/v1/mfa/disable", PasswordRequest{Password: password}, &out)
}

// RegenerateBackupCodes replaces every backup code.
func (s *Session) RegenerateBackupCodes(ctx context.Context, password string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := s.authJSON(ctx, http.MethodPost, "/v1/mfa/backup-codes", PasswordRequest{Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) MFAStatus(ctx context.Context) (*MFAStatusResponse, error) {
	var out MFAStatusResponse
	if err := s.authJSON(ctx, http.MethodGet, "/v1/mfa/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
