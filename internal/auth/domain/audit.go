package domain

import "time"

// Action is the closed audit vocabulary. New actions are appended, never
// renamed, since stored events reference them by name.
type Action string

const (
	// Authentication
	ActionLogin            Action = "LOGIN"
	ActionLogout           Action = "LOGOUT"
	ActionRegister         Action = "REGISTER"
	ActionVerifyEmail      Action = "VERIFY_EMAIL"
	ActionResendOTP        Action = "RESEND_OTP"
	ActionLoginMFARequired Action = "LOGIN_MFA_REQUIRED"
	ActionFailedLogin      Action = "FAILED_LOGIN"

	// MFA
	ActionMFAInit        Action = "MFA_INIT"
	ActionMFAEnable      Action = "MFA_ENABLE"
	ActionMFADisable     Action = "MFA_DISABLE"
	ActionMFAVerify      Action = "MFA_VERIFY"
	ActionMFAFailed      Action = "MFA_FAILED"
	ActionMFAVerifySetup Action = "MFA_VERIFY_SETUP"
	ActionMFAStatus      Action = "MFA_STATUS"
	ActionMFABackupRegen Action = "MFA_BACKUP_REGEN"

	// Accounts
	ActionViewProfile          Action = "VIEW_PROFILE"
	ActionUpdateProfile        Action = "UPDATE_PROFILE"
	ActionUpdateProfilePicture Action = "UPDATE_PROFILE_PICTURE"
	ActionViewUsers            Action = "VIEW_USERS"
	ActionDeleteUser           Action = "DELETE_USER"

	// Rooms
	ActionCreateRoom Action = "CREATE_ROOM"
	ActionUpdateRoom Action = "UPDATE_ROOM"
	ActionDeleteRoom Action = "DELETE_ROOM"
	ActionViewRoom   Action = "VIEW_ROOM"
	ActionViewRooms  Action = "VIEW_ROOMS"

	// Bookings
	ActionCreateBooking  Action = "CREATE_BOOKING"
	ActionUpdateBooking  Action = "UPDATE_BOOKING"
	ActionDeleteBooking  Action = "DELETE_BOOKING"
	ActionViewBooking    Action = "VIEW_BOOKING"
	ActionViewBookings   Action = "VIEW_BOOKINGS"
	ActionApproveBooking Action = "APPROVE_BOOKING"
	ActionRejectBooking  Action = "REJECT_BOOKING"

	// Admin
	ActionViewActivityLogs Action = "VIEW_ACTIVITY_LOGS"
	ActionExportLogs       Action = "EXPORT_LOGS"
	ActionDeleteOldLogs    Action = "DELETE_OLD_LOGS"

	// Security
	ActionUnauthorizedAccess Action = "UNAUTHORIZED_ACCESS"
	ActionSuspiciousActivity Action = "SUSPICIOUS_ACTIVITY"

	// Files
	ActionUploadFile Action = "UPLOAD_FILE"
	ActionDeleteFile Action = "DELETE_FILE"

	// System
	ActionAccessDenied    Action = "ACCESS_DENIED"
	ActionValidationError Action = "VALIDATION_ERROR"
)

var knownActions = map[Action]struct{}{
	ActionLogin: {}, ActionLogout: {}, ActionRegister: {}, ActionVerifyEmail: {},
	ActionResendOTP: {}, ActionLoginMFARequired: {}, ActionFailedLogin: {},
	ActionMFAInit: {}, ActionMFAEnable: {}, ActionMFADisable: {}, ActionMFAVerify: {},
	ActionMFAFailed: {}, ActionMFAVerifySetup: {}, ActionMFAStatus: {}, ActionMFABackupRegen: {},
	ActionViewProfile: {}, ActionUpdateProfile: {}, ActionUpdateProfilePicture: {},
	ActionViewUsers: {}, ActionDeleteUser: {},
	ActionCreateRoom: {}, ActionUpdateRoom: {}, ActionDeleteRoom: {}, ActionViewRoom: {}, ActionViewRooms: {},
	ActionCreateBooking: {}, ActionUpdateBooking: {}, ActionDeleteBooking: {}, ActionViewBooking: {},
	ActionViewBookings: {}, ActionApproveBooking: {}, ActionRejectBooking: {},
	ActionViewActivityLogs: {}, ActionExportLogs: {}, ActionDeleteOldLogs: {},
	ActionUnauthorizedAccess: {}, ActionSuspiciousActivity: {},
	ActionUploadFile: {}, ActionDeleteFile: {},
	ActionAccessDenied: {}, ActionValidationError: {},
}

// Valid reports whether a is part of the vocabulary.
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourceUser    ResourceType = "USER"
	ResourceRoom    ResourceType = "ROOM"
	ResourceBooking ResourceType = "BOOKING"
	ResourceFile    ResourceType = "FILE"
	ResourceSystem  ResourceType = "SYSTEM"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceUser, ResourceRoom, ResourceBooking, ResourceFile, ResourceSystem:
		return true
	}
	return false
}

// AuditEvent is one immutable entry of the activity log. Actor fields are a
// snapshot taken at write time and survive account changes.
type AuditEvent struct {
	ID        string    `json:"_id"`
	Timestamp time.Time `json:"timestamp"`

	UserID    *string `json:"userId"`
	UserEmail *string `json:"userEmail"`
	UserRole  *string `json:"userRole"`

	Action       Action   `json:"action"`
	Description  string   `json:"description"`
	Severity     Severity `json:"severity"`
	Success      bool     `json:"success"`
	ErrorMessage *string  `json:"errorMessage,omitempty"`

	IPAddress     string  `json:"ipAddress"`
	UserAgent     *string `json:"userAgent,omitempty"`
	RequestMethod *string `json:"requestMethod,omitempty"`
	RequestURL    *string `json:"requestUrl,omitempty"`
	StatusCode    *int    `json:"statusCode,omitempty"`
	SessionID     *string `json:"sessionId,omitempty"`

	ResourceID   *string       `json:"resourceId,omitempty"`
	ResourceType *ResourceType `json:"resourceType,omitempty"`

	RequestBody map[string]any `json:"requestBody,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// AuditFilter selects audit events. Zero fields do not filter.
type AuditFilter struct {
	UserID       string
	Action       Action
	Severity     Severity
	Success      *bool
	ResourceType ResourceType
	Email        string // case-insensitive substring
	Start        *time.Time
	End          *time.Time

	// Severities matches any of the listed severities, on top of Severity.
	Severities []Severity
	// Before is an exclusive upper bound, used for calendar-day windows.
	Before *time.Time
}

// DefaultPageSize is used when a caller asks for a page size below 1.
const DefaultPageSize = 50

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalLogs   int  `json:"totalLogs"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives the page counters for total matches.
func NewPagination(page, size, total int) Pagination {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalLogs:   total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

type AuditPage struct {
	Events     []AuditEvent `json:"logs"`
	Pagination Pagination   `json:"pagination"`
}

// Count is one bucket of a group-and-count query.
type Count struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

type AuditStats struct {
	TotalLogs      int     `json:"totalLogs"`
	ActionStats    []Count `json:"actionStats"` // top 10, most frequent first
	SeverityStats  []Count `json:"severityStats"`
	SuccessStats   []Count `json:"successStats"`   // keys "true" and "false"
	ActiveUsers    int     `json:"activeUsers"`    // distinct actors, trailing 30 days
	RecentActivity int     `json:"recentActivity"` // trailing 24 hours
	TopIPs         []Count `json:"topIPs"`         // top 10, trailing 7 days
	SecurityEvents int     `json:"securityEvents"` // HIGH and CRITICAL, trailing 30 days
}

type AuditSummary struct {
	Today          int `json:"today"`
	Yesterday      int `json:"yesterday"`
	ThisWeek       int `json:"thisWeek"`       // since midnight seven days ago
	FailedLogins   int `json:"failedLogins"`   // today
	SecurityAlerts int `json:"securityAlerts"` // HIGH and CRITICAL today
}

// ExportFormat selects the export rendering.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)
