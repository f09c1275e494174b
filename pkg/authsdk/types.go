package authsdk

import (
	"time"

	"github.com/aussiebroadwan/bookit/pkg/jwtx"
)

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Registration
// ============================================================================

type RegisterRequest struct {
	FullName string `json:"fullname" example:"Alice Example"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp" example:"123456"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

// ============================================================================
// Login
// ============================================================================

// LoginRequest carries credentials and, on the second step of an MFA login,
// one of the second factors.
type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	MFAToken      string `json:"mfaToken,omitempty" example:"123456"`
	MFABackupCode string `json:"mfaBackupCode,omitempty" example:"A1B2C3D4"`
}

// LoginResponse is returned with 200 for both a completed login and an MFA
// challenge. RequiresMFA distinguishes the two.
type LoginResponse struct {
	Message     string `json:"message"`
	Token       string `json:"token,omitempty"`
	Role        string `json:"role,omitempty"`
	RequiresMFA bool   `json:"requiresMFA"`
	MFAEnabled  bool   `json:"mfaEnabled,omitempty"`
	UserID      string `json:"userId,omitempty"`
}

// ============================================================================
// MFA
// ============================================================================

type MFASetupResponse struct {
	Message        string `json:"message"`
	QRCode         string `json:"qrCode" example:"data:image/png;base64,iVBORw0KGgo..."`
	ManualEntryKey string `json:"manualEntryKey" example:"JBSWY3DPEHPK3PXP"`
}

// MFACodeRequest carries a TOTP code, used to finish enrolment.
type MFACodeRequest struct {
	Token string `json:"token" example:"123456"`
}

type MFASetupVerifyResponse struct {
	Message     string   `json:"message"`
	BackupCodes []string `json:"backupCodes"`
	MFAEnabled  bool     `json:"mfaEnabled"`
}

// MFAVerifyRequest carries either a TOTP code or a backup code.
type MFAVerifyRequest struct {
	Token      string `json:"token,omitempty" example:"123456"`
	BackupCode string `json:"backupCode,omitempty" example:"A1B2C3D4"`
}

type MFAVerifyResponse struct {
	Message              string `json:"message"`
	Verified             bool   `json:"verified"`
	UsedBackupCode       bool   `json:"usedBackupCode"`
	RemainingBackupCodes int    `json:"remainingBackupCodes"`
}

// PasswordRequest re-confirms the account password for sensitive changes.
type PasswordRequest struct {
	Password string `json:"password"`
}

type BackupCodesResponse struct {
	Message     string   `json:"message"`
	BackupCodes []string `json:"backupCodes"`
}

type MFAStatusResponse struct {
	MFAEnabled           bool `json:"mfaEnabled"`
	MFASetupCompleted    bool `json:"mfaSetupCompleted"`
	RemainingBackupCodes int  `json:"remainingBackupCodes"`
}

// ============================================================================
// Activity Logs
// ============================================================================

// ActivityLog is one audit trail entry.
type ActivityLog struct {
	ID        string    `json:"_id"`
	Timestamp time.Time `json:"timestamp"`

	UserID    *string `json:"userId"`
	UserEmail *string `json:"userEmail"`
	UserRole  *string `json:"userRole"`

	Action       string  `json:"action"`
	Description  string  `json:"description"`
	Severity     string  `json:"severity"`
	Success      bool    `json:"success"`
	ErrorMessage *string `json:"errorMessage,omitempty"`

	IPAddress     string  `json:"ipAddress"`
	UserAgent     *string `json:"userAgent,omitempty"`
	RequestMethod *string `json:"requestMethod,omitempty"`
	RequestURL    *string `json:"requestUrl,omitempty"`
	StatusCode    *int    `json:"statusCode,omitempty"`
	SessionID     *string `json:"sessionId,omitempty"`

	ResourceID   *string `json:"resourceId,omitempty"`
	ResourceType *string `json:"resourceType,omitempty"`

	RequestBody map[string]any `json:"requestBody,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalLogs   int  `json:"totalLogs"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type ActivityLogsResponse struct {
	Logs       []ActivityLog `json:"logs"`
	Pagination Pagination    `json:"pagination"`
}

// ActivityLogQuery selects activity logs. Zero fields are not sent.
type ActivityLogQuery struct {
	Page         int
	Limit        int
	UserID       string
	Action       string
	Severity     string
	Success      *bool
	ResourceType string
	UserEmail    string
	StartDate    *time.Time
	EndDate      *time.Time
}

// Count is one bucket of a grouped count.
type Count struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

type ActivityStatsResponse struct {
	TotalLogs      int     `json:"totalLogs"`
	ActionStats    []Count `json:"actionStats"`
	SeverityStats  []Count `json:"severityStats"`
	SuccessStats   []Count `json:"successStats"`
	ActiveUsers    int     `json:"activeUsers"`
	RecentActivity int     `json:"recentActivity"`
	TopIPs         []Count `json:"topIPs"`
	SecurityEvents int     `json:"securityEvents"`
}

type ActivitySummaryResponse struct {
	Today          int `json:"today"`
	Yesterday      int `json:"yesterday"`
	ThisWeek       int `json:"thisWeek"`
	FailedLogins   int `json:"failedLogins"`
	SecurityAlerts int `json:"securityAlerts"`
}

type PurgeRequest struct {
	Days int `json:"days" example:"90"`
}

type PurgeResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// ============================================================================
// Health & Discovery
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status is "ok", "ready" or "not_ready"
	Status string `json:"status"`

	// Uptime is the duration since the service started (e.g. "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the build version of the service
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks contains individual readiness check results.
type HealthChecks struct {
	// Database is "ok" or an error message
	Database string `json:"database"`

	// Signer is "ok" or an error message
	Signer string `json:"signer"`
}

// JWKSResponse is the key set published at /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
