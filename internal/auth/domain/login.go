package domain

// LoginOutcome tags the terminal state of a login attempt.
type LoginOutcome string

const (
	LoginAuthenticated   LoginOutcome = "AUTHENTICATED"
	LoginInvalid         LoginOutcome = "INVALID"
	LoginLockedOut       LoginOutcome = "LOCKED_OUT"
	LoginUnverified      LoginOutcome = "UNVERIFIED"
	LoginExpiredPassword LoginOutcome = "EXPIRED_PASSWORD"
	LoginMFARequired     LoginOutcome = "MFA_REQUIRED"
	LoginMFAInvalid      LoginOutcome = "MFA_INVALID"
)

// Caller-facing messages. Unknown email and wrong password share one.
const (
	MsgLoginSuccess       = "Login successful"
	MsgInvalidCredentials = "Invalid email or password"
	MsgLockoutTriggered   = "Account locked due to multiple failed login attempts. Try again later."
	MsgLockedOutUntil     = "Account is locked. Try again after %s"
	MsgUnverified         = "Please verify your email first."
	MsgPasswordExpired    = "Your password has expired. Please reset your password."
	MsgMFARequired        = "MFA verification required"
	MsgMFAInvalid         = "Invalid MFA token or backup code"
)

// LoginRequest carries the credentials of one login attempt. At most one of
// MFACode and BackupCode is normally set.
type LoginRequest struct {
	Email      string
	Password   string
	MFACode    string
	BackupCode string
}

// LoginResult is the tagged result of a login attempt. Token is only set for
// LoginAuthenticated and AccountID only for LoginMFARequired and
// LoginAuthenticated.
type LoginResult struct {
	Outcome   LoginOutcome
	Message   string
	AccountID string
	Role      Role
	Token     string

	MFAEnabled bool
	MFAMethod  MFAMethod
}

// Authenticated reports whether a session token was issued.
func (r LoginResult) Authenticated() bool {
	return r.Outcome == LoginAuthenticated
}
