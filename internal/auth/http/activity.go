package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/service"
	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/aussiebroadwan/bookit/pkg/httpx"
)

// ActivityLogHandler serves the admin activity log API.
type ActivityLogHandler struct {
	AuditService *service.AuditService
}

// HandleList handles GET /v1/activity-logs
//
//	@Summary		List activity logs
//	@Description	Returns one page of the activity log, newest first.
//	@Tags			Activity Logs
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page			query		int		false	"Page number (default 1)"
//	@Param			limit			query		int		false	"Page size (default 50)"
//	@Param			userId			query		string	false	"Actor account id"
//	@Param			action			query		string	false	"Action, e.g. LOGIN"
//	@Param			severity		query		string	false	"LOW, MEDIUM, HIGH or CRITICAL"
//	@Param			success			query		bool	false	"Outcome"
//	@Param			resourceType	query		string	false	"USER, ROOM, BOOKING, FILE or SYSTEM"
//	@Param			userEmail		query		string	false	"Case-insensitive email fragment"
//	@Param			startDate		query		string	false	"Inclusive lower bound (RFC3339 or YYYY-MM-DD)"
//	@Param			endDate			query		string	false	"Inclusive upper bound (RFC3339 or YYYY-MM-DD)"
//	@Success		200				{object}	authsdk.ActivityLogsResponse
//	@Failure		400				{object}	authsdk.APIError	"Malformed date"
//	@Failure		401				{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		403				{object}	authsdk.APIError	"Not an admin"
//	@Router			/v1/activity-logs [get].
func (h *ActivityLogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseListFilter(q)
	if err != nil {
		authsdk.ErrInvalidRequest.WithMessage(err.Error()).WriteError(w)
		return
	}

	page, limit := pageParams(q)
	res, err := h.AuditService.List(r.Context(), actor(r), f, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleListForUser handles GET /v1/activity-logs/users/{userId}
//
//	@Summary		List the activity of one account
//	@Tags			Activity Logs
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userId		path		string	true	"Account id"
//	@Param			page		query		int		false	"Page number (default 1)"
//	@Param			limit		query		int		false	"Page size (default 50)"
//	@Param			action		query		string	false	"Action, e.g. LOGIN"
//	@Param			startDate	query		string	false	"Inclusive lower bound"
//	@Param			endDate		query		string	false	"Inclusive upper bound"
//	@Success		200			{object}	authsdk.ActivityLogsResponse
//	@Failure		400			{object}	authsdk.APIError	"Malformed date"
//	@Failure		403			{object}	authsdk.APIError	"Not an admin"
//	@Router			/v1/activity-logs/users/{userId} [get].
func (h *ActivityLogHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		authsdk.ErrInvalidRequest.WithMessage(err.Error()).WriteError(w)
		return
	}
	f.Action = domain.Action(q.Get("action"))

	page, limit := pageParams(q)
	res, err := h.AuditService.ListForAccount(r.Context(), actor(r), r.PathValue("userId"), f, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleStats handles GET /v1/activity-logs/stats
//
//	@Summary		Activity statistics
//	@Description	Totals, top actions, severity and outcome split, active users (30 days), activity in the last 24 hours,
//	@Description	top addresses (7 days) and HIGH or CRITICAL events (30 days).
//	@Tags			Activity Logs
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ActivityStatsResponse
//	@Failure		403	{object}	authsdk.APIError	"Not an admin"
//	@Router			/v1/activity-logs/stats [get].
func (h *ActivityLogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.AuditService.Stats(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// HandleSummary handles GET /v1/activity-logs/summary
//
//	@Summary		Activity summary
//	@Description	Event counts for today, yesterday and the last seven days, plus today's failed logins and security alerts.
//	@Tags			Activity Logs
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ActivitySummaryResponse
//	@Failure		403	{object}	authsdk.APIError	"Not an admin"
//	@Router			/v1/activity-logs/summary [get].
func (h *ActivityLogHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.AuditService.Summary(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
}

// HandleExport handles GET /v1/activity-logs/export
//
//	@Summary		Export activity logs
//	@Description	Downloads every matching event as a JSON array or as CSV with every field quoted.
//	@Tags			Activity Logs
//	@Security		BearerAuth
//	@Produce		json
//	@Produce		text/csv
//	@Param			format			query		string	false	"json (default) or csv"
//	@Param			userId			query		string	false	"Actor account id"
//	@Param			action			query		string	false	"Action, e.g. LOGIN"
//	@Param			severity		query		string	false	"LOW, MEDIUM, HIGH or CRITICAL"
//	@Param			success			query		bool	false	"Outcome"
//	@Param			resourceType	query		string	false	"USER, ROOM, BOOKING, FILE or SYSTEM"
//	@Param			userEmail		query		string	false	"Case-insensitive email fragment"
//	@Param			startDate		query		string	false	"Inclusive lower bound"
//	@Param			endDate			query		string	false	"Inclusive upper bound"
//	@Success		200				{array}		authsdk.ActivityLog
//	@Failure		400				{object}	authsdk.APIError	"Unknown format or malformed date"
//	@Failure		403				{object}	authsdk.APIError	"Not an admin"
//	@Router			/v1/activity-logs/export [get].
func (h *ActivityLogHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := service.ParseExportFormat(q.Get("format"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	f, err := parseListFilter(q)
	if err != nil {
		authsdk.ErrInvalidRequest.WithMessage(err.Error()).WriteError(w)
		return
	}

	var buf bytes.Buffer
	if err := h.AuditService.Export(r.Context(), actor(r), f, format, &buf); err != nil {
		writeServiceError(w, r, err)
		return
	}

	contentType := "application/json"
	if format == domain.ExportCSV {
		contentType = "text/csv"
	}
	httpx.NoCache(w)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+service.ExportFilename(format))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandlePurge handles DELETE /v1/activity-logs/old
//
//	@Summary		Purge old activity logs
//	@Description	Deletes events older than the given number of days (default 90). The purge itself is recorded.
//	@Tags			Activity Logs
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PurgeRequest	false	"Retention in days"
//	@Success		200		{object}	authsdk.PurgeResponse
//	@Failure		403		{object}	authsdk.APIError	"Not an admin"
//	@Router			/v1/activity-logs/old [delete].
func (h *ActivityLogHandler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PurgeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	deleted, err := h.AuditService.Purge(r.Context(), actor(r), req.Days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.PurgeResponse{
		Message:      fmt.Sprintf("Deleted %d old activity logs", deleted),
		DeletedCount: deleted,
	})
}

// parseFilter reads the date range shared by every listing endpoint.
func parseFilter(q url.Values) (domain.AuditFilter, error) {
	var f domain.AuditFilter
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"startDate", &f.Start}, {"endDate", &f.End}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := parseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %q", p.key, v)
		}
		*p.dst = &t
	}
	return f, nil
}

// parseListFilter reads every filter dimension accepted by list and export.
func parseListFilter(q url.Values) (domain.AuditFilter, error) {
	f, err := parseFilter(q)
	if err != nil {
		return f, err
	}
	f.UserID = q.Get("userId")
	f.Action = domain.Action(q.Get("action"))
	f.Severity = domain.Severity(q.Get("severity"))
	f.ResourceType = domain.ResourceType(q.Get("resourceType"))
	f.Email = q.Get("userEmail")
	if v := q.Get("success"); v != "" {
		success := v == "true"
		f.Success = &success
	}
	return f, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}

// pageParams falls back to the defaults on missing or non-positive values.
func pageParams(q url.Values) (page, limit int) {
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = domain.DefaultPageSize
	}
	return page, limit
}
