package domain

// MFASetup is returned once when TOTP enrolment starts.
type MFASetup struct {
	QRCode         string // PNG data URL
	ManualEntryKey string // base32 secret for typing into an authenticator
	ProvisionURI   string // otpauth:// URI
}

type MFAStatus struct {
	MFAEnabled           bool
	MFASetupCompleted    bool
	RemainingBackupCodes int
}

// MFAMethod names the factor used to pass an MFA check.
type MFAMethod string

const (
	MFAMethodTOTP       MFAMethod = "totp"
	MFAMethodBackupCode MFAMethod = "backup_code"
)

// MFAVerification is the result of a successful verify call.
type MFAVerification struct {
	Method               MFAMethod
	RemainingBackupCodes int
}
