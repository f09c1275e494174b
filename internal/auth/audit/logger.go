// Package audit records security-relevant actions to the activity log.
// Recording is best effort: a failed write is reported on the service log
// and never returned to the caller.
package audit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/metrics"
	"github.com/aussiebroadwan/bookit/pkg/httpx"
	"github.com/aussiebroadwan/bookit/pkg/idx"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

const writeTimeout = 5 * time.Second

// Writer persists audit events.
type Writer interface {
	InsertAuditEvent(ctx context.Context, e domain.AuditEvent) error
}

// Actor identifies who performed an action. A nil *Actor is anonymous.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// ActorFromAccount snapshots the identifying fields of a.
func ActorFromAccount(a domain.Account) *Actor {
	return &Actor{ID: a.ID, Email: a.Email, Role: string(a.Role)}
}

// Entry describes one event. Zero values mean: anonymous actor, LOW
// severity, success, status 200 and no resource.
type Entry struct {
	Actor        *Actor
	Action       domain.Action
	Description  string
	Severity     domain.Severity
	Failed       bool
	ErrorMessage string
	StatusCode   int
	ResourceType domain.ResourceType
	ResourceID   string
	Metadata     map[string]any
}

// Logger writes audit events. It is safe for concurrent use.
type Logger struct {
	w   Writer
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewLogger returns a logger writing to w.
func NewLogger(w Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// WithClock replaces the clock used to stamp events.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	l.now = now
	return l
}

// stamp returns the write time, nudged forward when the clock has not moved
// so that events from one process never share or reverse a timestamp.
func (l *Logger) stamp() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now().UTC()
	if !t.After(l.last) {
		t = l.last.Add(time.Nanosecond)
	}
	l.last = t
	return t
}

// Record writes e along with the request captured on ctx. It never fails;
// rejected and failed writes are logged.
func (l *Logger) Record(ctx context.Context, e Entry) {
	log := slogx.FromContext(ctx)

	if !e.Action.Valid() {
		metrics.AuditEvents.WithLabelValues(metrics.AuditRejected).Inc()
		log.Warn("audit event rejected: unknown action", "action", e.Action)
		return
	}
	if e.Severity == "" {
		e.Severity = domain.SeverityLow
	}
	if !e.Severity.Valid() {
		metrics.AuditEvents.WithLabelValues(metrics.AuditRejected).Inc()
		log.Warn("audit event rejected: unknown severity", "action", e.Action, "severity", e.Severity)
		return
	}

	event := l.build(ctx, e)

	// The write outlives a cancelled request so an aborted call is still audited.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := l.w.InsertAuditEvent(wctx, event); err != nil {
		metrics.AuditEvents.WithLabelValues(metrics.AuditFailed).Inc()
		log.Error("failed to record audit event", "action", e.Action, "err", err)
		return
	}
	metrics.AuditEvents.WithLabelValues(metrics.AuditWritten).Inc()
}

func (l *Logger) build(ctx context.Context, e Entry) domain.AuditEvent {
	ts := l.stamp()

	status := e.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	event := domain.AuditEvent{
		ID:          idx.NewAt(ts).String(),
		Timestamp:   ts,
		Action:      e.Action,
		Description: e.Description,
		Severity:    e.Severity,
		Success:     !e.Failed,
		IPAddress:   httpx.UnknownIP,
		StatusCode:  &status,
		Metadata:    e.Metadata,
	}
	if event.Description == "" {
		event.Description = string(e.Action) + " action performed"
	}
	if e.Actor != nil {
		event.UserID = optional(e.Actor.ID)
		event.UserEmail = optional(e.Actor.Email)
		event.UserRole = optional(e.Actor.Role)
	}
	if e.ErrorMessage != "" {
		event.ErrorMessage = &e.ErrorMessage
	}
	if e.ResourceType != "" {
		rt := e.ResourceType
		event.ResourceType = &rt
	}
	event.ResourceID = optional(e.ResourceID)

	if req := RequestFromContext(ctx); req != nil {
		if req.IPAddress != "" {
			event.IPAddress = req.IPAddress
		}
		event.UserAgent = optional(req.UserAgent)
		event.RequestMethod = optional(req.Method)
		event.RequestURL = optional(req.URL)
		event.SessionID = optional(req.SessionID)
		event.RequestBody = Redact(req.Body)
	}
	return event
}

// Authentication records a sign-in related action: LOW on success, MEDIUM
// and status 401 on failure.
func (l *Logger) Authentication(ctx context.Context, action domain.Action, actor *Actor, success bool, errMsg string) {
	e := Entry{
		Actor:        actor,
		Action:       action,
		Description:  "User " + humanize(action),
		ResourceType: domain.ResourceUser,
		Severity:     domain.SeverityLow,
		StatusCode:   http.StatusOK,
	}
	if actor != nil {
		e.ResourceID = actor.ID
	}
	if !success {
		e.Failed = true
		e.Severity = domain.SeverityMedium
		e.StatusCode = http.StatusUnauthorized
		e.ErrorMessage = errMsg
	}
	l.Record(ctx, e)
}

// DataAccess records a successful read.
func (l *Logger) DataAccess(
	ctx context.Context,
	action domain.Action,
	actor *Actor,
	rt domain.ResourceType,
	resourceID string,
	metadata map[string]any,
) {
	l.Record(ctx, Entry{
		Actor:        actor,
		Action:       action,
		Description:  "User accessed " + strings.ToLower(string(rt)) + " data",
		Severity:     domain.SeverityLow,
		ResourceType: rt,
		ResourceID:   resourceID,
		Metadata:     metadata,
	})
}

// DataModification records a successful write.
func (l *Logger) DataModification(
	ctx context.Context,
	action domain.Action,
	actor *Actor,
	rt domain.ResourceType,
	resourceID string,
	metadata map[string]any,
) {
	l.Record(ctx, Entry{
		Actor:        actor,
		Action:       action,
		Description:  "User " + humanize(action) + " " + strings.ToLower(string(rt)),
		Severity:     domain.SeverityMedium,
		ResourceType: rt,
		ResourceID:   resourceID,
		Metadata:     metadata,
	})
}

// Security records a denied or anomalous attempt. Severity defaults to HIGH.
func (l *Logger) Security(
	ctx context.Context,
	action domain.Action,
	actor *Actor,
	description string,
	severity domain.Severity,
) {
	if severity == "" {
		severity = domain.SeverityHigh
	}
	l.Record(ctx, Entry{
		Actor:        actor,
		Action:       action,
		Description:  description,
		Severity:     severity,
		Failed:       true,
		ErrorMessage: description,
		ResourceType: domain.ResourceSystem,
	})
}

// humanize turns MFA_VERIFY into "mfa verify".
func humanize(a domain.Action) string {
	return strings.ReplaceAll(strings.ToLower(string(a)), "_", " ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
