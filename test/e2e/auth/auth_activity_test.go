package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestActivityLogRecordsLogins checks that logins land in the activity log
// with their request context and without secrets.
func TestActivityLogRecordsLogins(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()

	_, err := svc.Client.AuthenticateWithPassword(ctx, adminEmail, "wrong-password")
	require.Error(t, err)
	admin := svc.loginAdmin(t)

	failed := false
	logs, err := admin.ListActivityLogs(ctx, authsdk.ActivityLogQuery{Action: "FAILED_LOGIN", Success: &failed})
	require.NoError(t, err)
	require.Len(t, logs.Logs, 1)

	entry := logs.Logs[0]
	require.False(t, entry.Success)
	require.NotNil(t, entry.UserEmail)
	require.Equal(t, adminEmail, *entry.UserEmail)
	require.NotEmpty(t, entry.IPAddress)
	require.NotNil(t, entry.RequestMethod)
	require.Equal(t, http.MethodPost, *entry.RequestMethod)
	require.Equal(t, "[REDACTED]", entry.RequestBody["password"])

	logins, err := admin.ListActivityLogs(ctx, authsdk.ActivityLogQuery{Action: "LOGIN"})
	require.NoError(t, err)
	require.NotEmpty(t, logins.Logs)
	require.NotNil(t, logins.Logs[0].UserID)

	mine, err := admin.ListUserActivityLogs(ctx, *logins.Logs[0].UserID, authsdk.ActivityLogQuery{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, mine.Pagination.TotalLogs, 2)
}

func TestActivityStatsSummaryAndExport(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()
	admin := svc.loginAdmin(t)

	stats, err := admin.ActivityStats(ctx)
	require.NoError(t, err)
	require.Positive(t, stats.TotalLogs)
	require.Equal(t, 1, stats.ActiveUsers)

	summary, err := admin.ActivitySummary(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, summary.Today, 2)

	var csv bytes.Buffer
	require.NoError(t, admin.ExportActivityLogs(ctx, "csv", authsdk.ActivityLogQuery{}, &csv))
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	require.Equal(t, `"Timestamp","User Email","User Role","Action","Description","IP Address","Success","Severity"`, lines[0])
	require.Greater(t, len(lines), 1)

	var raw bytes.Buffer
	require.NoError(t, admin.ExportActivityLogs(ctx, "json", authsdk.ActivityLogQuery{}, &raw))
	var exported []authsdk.ActivityLog
	require.NoError(t, json.Unmarshal(raw.Bytes(), &exported))
	require.NotEmpty(t, exported)
	require.Equal(t, "EXPORT_LOGS", exported[0].Action)

	err = admin.ExportActivityLogs(ctx, "xml", authsdk.ActivityLogQuery{}, &raw)
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
}

func TestActivityPurge(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()
	admin := svc.loginAdmin(t)

	res, err := admin.PurgeActivityLogs(ctx, 30)
	require.NoError(t, err)
	require.Zero(t, res.DeletedCount)
	require.Equal(t, "Deleted 0 old activity logs", res.Message)

	purges, err := admin.ListActivityLogs(ctx, authsdk.ActivityLogQuery{Action: "DELETE_OLD_LOGS"})
	require.NoError(t, err)
	require.NotEmpty(t, purges.Logs)
}

// TestActivityLogsAdminOnly verifies non-admins are turned away and that the
// attempt is itself recorded.
func TestActivityLogsAdminOnly(t *testing.T) {
	svc := setupAuthContainer(t)
	ctx := t.Context()

	const email, password = "carol@bookit.test", "Carol123!"
	svc.registerVerifiedUser(t, email, password)
	user, err := svc.Client.AuthenticateWithPassword(ctx, email, password)
	require.NoError(t, err)

	_, err = user.ActivityStats(ctx)
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeAccessDenied)

	_, err = user.PurgeActivityLogs(ctx, 1)
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeAccessDenied)

	anonymous := svc.Client.NewSessionFromToken("not-a-token", "")
	_, err = anonymous.ActivitySummary(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	admin := svc.loginAdmin(t)
	denied, err := admin.ListActivityLogs(ctx, authsdk.ActivityLogQuery{Action: "ACCESS_DENIED"})
	require.NoError(t, err)
	require.Len(t, denied.Logs, 2)
	require.Equal(t, "HIGH", denied.Logs[0].Severity)
	require.Equal(t, email, *denied.Logs[0].UserEmail)
}
