package service

import "errors"

var (
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidOTP          = errors.New("invalid or expired OTP")
	ErrInvalidInput        = errors.New("invalid input")
	ErrMFANotInitialized   = errors.New("MFA not initialized for this account")
	ErrMFANotEnabled       = errors.New("MFA not enabled for this account")
	ErrMFAAlreadyEnabled   = errors.New("MFA already enabled for this account")
	ErrInvalidMFACode      = errors.New("invalid MFA token or backup code")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidExportFormat = errors.New("invalid export format")
)
