package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (m *memWriter) InsertAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memWriter) all() []domain.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEvent(nil), m.events...)
}

func TestRecordDefaults(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	l := NewLogger(w)

	l.Record(context.Background(), Entry{Action: domain.ActionViewRooms})

	events := w.all()
	require.Len(t, events, 1)
	e := events[0]
	require.NotEmpty(t, e.ID)
	require.Equal(t, domain.SeverityLow, e.Severity)
	require.True(t, e.Success)
	require.Equal(t, "VIEW_ROOMS action performed", e.Description)
	require.Equal(t, "unknown", e.IPAddress)
	require.NotNil(t, e.StatusCode)
	require.Equal(t, http.StatusOK, *e.StatusCode)
	require.Nil(t, e.UserID)
	require.Nil(t, e.RequestBody)
}

func TestRecordRejectsUnknownVocabulary(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	l := NewLogger(w)

	l.Record(context.Background(), Entry{Action: domain.Action("MADE_UP")})
	l.Record(context.Background(), Entry{Action: domain.ActionLogin, Severity: domain.Severity("URGENT")})
	require.Empty(t, w.all())
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	t.Parallel()

	w := &memWriter{err: errors.New("disk full")}
	l := NewLogger(w)

	require.NotPanics(t, func() {
		l.Record(context.Background(), Entry{Action: domain.ActionLogin})
		l.Security(context.Background(), domain.ActionFailedLogin, nil, "nope", "")
	})
	require.Empty(t, w.all())
}

func TestRecordSurvivesCancelledRequest(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	l := NewLogger(w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Record(ctx, Entry{Action: domain.ActionLogin})
	require.Len(t, w.all(), 1)
}

func TestTimestampsAreMonotonic(t *testing.T) {
	t.Parallel()

	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &memWriter{}
	l := NewLogger(w).WithClock(func() time.Time { return frozen })

	for range 3 {
		l.Record(context.Background(), Entry{Action: domain.ActionLogin})
	}

	events := w.all()
	require.Len(t, events, 3)
	require.True(t, events[0].Timestamp.Equal(frozen))
	require.True(t, events[1].Timestamp.After(events[0].Timestamp))
	require.True(t, events[2].Timestamp.After(events[1].Timestamp))
}

func TestRequestCapture(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	l := NewLogger(w)

	var captured context.Context
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = WithPayload(r.Context(), map[string]any{
			"email":    "a@x.com",
			"password": "hunter2",
			"Token":    "abc",
		})
	}))

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/login?x=1", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "curl/8")
	r.Header.Set("Session-Id", "sess-1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	actor := &Actor{ID: "u1", Email: "a@x.com", Role: "user"}
	l.Authentication(captured, domain.ActionLogin, actor, false, "Invalid email or password")

	events := w.all()
	require.Len(t, events, 1)
	e := events[0]
	require.Equal(t, "203.0.113.7", e.IPAddress)
	require.Equal(t, "curl/8", *e.UserAgent)
	require.Equal(t, http.MethodPost, *e.RequestMethod)
	require.Equal(t, "/v1/auth/login?x=1", *e.RequestURL)
	require.Equal(t, "sess-1", *e.SessionID)
	require.Equal(t, map[string]any{"email": "a@x.com", "password": Redacted, "Token": Redacted}, e.RequestBody)

	require.Equal(t, "User login", e.Description)
	require.Equal(t, domain.SeverityMedium, e.Severity)
	require.False(t, e.Success)
	require.Equal(t, http.StatusUnauthorized, *e.StatusCode)
	require.Equal(t, "u1", *e.UserID)
	require.Equal(t, "u1", *e.ResourceID)
	require.Equal(t, domain.ResourceUser, *e.ResourceType)
	require.Equal(t, "Invalid email or password", *e.ErrorMessage)
}

func TestWrappers(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	l := NewLogger(w)
	ctx := context.Background()
	actor := &Actor{ID: "u1", Email: "a@x.com", Role: "admin"}

	l.Authentication(ctx, domain.ActionLogin, actor, true, "")
	l.DataAccess(ctx, domain.ActionMFAStatus, actor, domain.ResourceUser, "u1", nil)
	l.DataModification(ctx, domain.ActionMFAEnable, actor, domain.ResourceUser, "u1", map[string]any{"k": "v"})
	l.Security(ctx, domain.ActionAccessDenied, actor, "Access denied", "")
	l.Security(ctx, domain.ActionMFAVerifySetup, actor, "Invalid MFA token", domain.SeverityMedium)

	events := w.all()
	require.Len(t, events, 5)

	require.Equal(t, domain.SeverityLow, events[0].Severity)
	require.True(t, events[0].Success)

	require.Equal(t, "User accessed user data", events[1].Description)
	require.Equal(t, domain.SeverityLow, events[1].Severity)
	require.True(t, events[1].Success)

	require.Equal(t, "User mfa enable user", events[2].Description)
	require.Equal(t, domain.SeverityMedium, events[2].Severity)
	require.Equal(t, map[string]any{"k": "v"}, events[2].Metadata)

	require.Equal(t, domain.SeverityHigh, events[3].Severity)
	require.False(t, events[3].Success)
	require.Equal(t, domain.ResourceSystem, *events[3].ResourceType)

	require.Equal(t, domain.SeverityMedium, events[4].Severity)
}

func TestRedact(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"email":         "a@x.com",
		"PASSWORD":      "p",
		"otp":           "123456",
		"authorization": "Bearer x",
		"secret":        "s",
		"backupCode":    "ABCD1234",
		"mfaToken":      "654321",
		"nested":        map[string]any{"token": "t", "keep": 1},
		"list":          []any{map[string]any{"password": "p"}},
		"token":         nil,
		"tokenType":     "Bearer",
		"oldPassword2":  "kept",
	}

	out := Redact(in)
	require.Equal(t, "a@x.com", out["email"])
	require.Equal(t, Redacted, out["PASSWORD"])
	require.Equal(t, Redacted, out["otp"])
	require.Equal(t, Redacted, out["authorization"])
	require.Equal(t, Redacted, out["secret"])
	require.Equal(t, Redacted, out["backupCode"])
	require.Equal(t, Redacted, out["mfaToken"])
	require.Equal(t, map[string]any{"token": Redacted, "keep": 1}, out["nested"])
	require.Equal(t, []any{map[string]any{"password": Redacted}}, out["list"])
	require.Nil(t, out["token"])
	// names match exactly, not as substrings
	require.Equal(t, "Bearer", out["tokenType"])
	require.Equal(t, "kept", out["oldPassword2"])

	// input untouched
	require.Equal(t, "p", in["PASSWORD"])
	require.Nil(t, Redact(nil))
}

func TestWithPayloadOutsideRequest(t *testing.T) {
	t.Parallel()

	ctx := WithPayload(context.Background(), map[string]any{"password": "x"})
	require.Nil(t, RequestFromContext(ctx))
}
