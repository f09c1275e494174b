package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/bookit/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInvalidOTP        = "invalid_otp"
	ErrorCodeInvalidMFACode    = "invalid_mfa_code"
	ErrorCodeInvalidPassword   = "invalid_password"
	ErrorCodeInvalidCredential = "invalid_credentials"
	ErrorCodeUnverified        = "email_not_verified"
	ErrorCodeLockedOut         = "account_locked"
	ErrorCodePasswordExpired   = "password_expired"
	ErrorCodeAccountExists     = "account_exists"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeMFANotInitialized = "mfa_not_initialized"
	ErrorCodeMFANotEnabled     = "mfa_not_enabled"
	ErrorCodeMFAAlreadyEnabled = "mfa_already_enabled"
	ErrorCodeAccessDenied      = "access_denied"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body every endpoint returns. It is used by the server
// to write responses and by the SDK client to surface them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable machine readable code (e.g. "invalid_otp")
	Code string `json:"error"`

	// Message is shown to end users as-is
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Is matches on status and code so callers can compare against the
// predefined values with errors.Is regardless of the message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidCredential,
		Message:    "Invalid email or password",
	}

	ErrUnverified = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeUnverified,
		Message:    "Please verify your email first.",
	}

	ErrLockedOut = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeLockedOut,
		Message:    "Account locked due to multiple failed login attempts. Try again later.",
	}

	ErrPasswordExpired = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodePasswordExpired,
		Message:    "Your password has expired. Please reset your password.",
	}

	ErrAccountExists = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeAccountExists,
		Message:    "User already exists",
	}

	ErrAccountNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "User not found",
	}

	ErrInvalidOTP = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidOTP,
		Message:    "Invalid or expired OTP",
	}

	ErrInvalidMFACode = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidMFACode,
		Message:    "Invalid MFA token or backup code",
	}

	ErrInvalidPassword = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidPassword,
		Message:    "Invalid password",
	}

	ErrMFANotInitialized = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeMFANotInitialized,
		Message:    "MFA not initialized. Please start setup first.",
	}

	ErrMFANotEnabled = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeMFANotEnabled,
		Message:    "MFA not enabled for this user",
	}

	ErrMFAAlreadyEnabled = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeMFAAlreadyEnabled,
		Message:    "MFA is already enabled for this user",
	}

	// ErrInvalidToken is returned when the bearer token is missing, invalid or expired.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "the access token is missing, invalid or expired",
	}

	ErrAccessDenied = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccessDenied,
		Message:    "Access denied. Insufficient permissions.",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. It returns
// nil for success statuses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != "" || apiErr.Message != "") {
		apiErr.StatusCode = resp.StatusCode
		if apiErr.Code == "" {
			apiErr.Code = codeForStatus(resp.StatusCode)
		}
		return &apiErr
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       codeForStatus(resp.StatusCode),
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrorCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrorCodeInvalidToken
	case http.StatusForbidden:
		return ErrorCodeAccessDenied
	case http.StatusNotFound:
		return ErrorCodeNotFound
	case http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	default:
		return ErrorCodeServerError
	}
}
