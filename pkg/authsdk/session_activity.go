package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ListActivityLogs returns one page of the activity log. Requires an admin session.
func (s *Session) ListActivityLogs(ctx context.Context, q ActivityLogQuery) (*ActivityLogsResponse, error) {
	var out ActivityLogsResponse
	if err := s.authJSON(ctx, http.MethodGet, "/v1/activity-logs"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserActivityLogs returns one page of the activity of a single account.
func (s *Session) ListUserActivityLogs(ctx context.Context, userID string, q ActivityLogQuery) (*ActivityLogsResponse, error) {
	var out ActivityLogsResponse
	path := "/v1/activity-logs/users/" + url.PathEscape(userID) + q.encode()
	if err := s.authJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ActivityStats(ctx context.Context) (*ActivityStatsResponse, error) {
	var out ActivityStatsResponse
	if err := s.authJSON(ctx, http.MethodGet, "/v1/activity-logs/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ActivitySummary(ctx context.Context) (*ActivitySummaryResponse, error) {
	var out ActivitySummaryResponse
	if err := s.authJSON(ctx, http.MethodGet, "/v1/activity-logs/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportActivityLogs streams every entry matching q in format ("json" or
// "csv") to w. Page and Limit of q are ignored.
func (s *Session) ExportActivityLogs(ctx context.Context, format string, q ActivityLogQuery, w io.Writer) error {
	q.Page, q.Limit = 0, 0
	v := q.values()
	v.Set("format", format)

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/activity-logs/export?"+v.Encode(), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

// PurgeActivityLogs deletes entries older than days. Zero uses the server default.
func (s *Session) PurgeActivityLogs(ctx context.Context, days int) (*PurgeResponse, error) {
	var out PurgeResponse
	if err := s.authJSON(ctx, http.MethodDelete, "/v1/activity-logs/old", PurgeRequest{Days: days}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (q ActivityLogQuery) encode() string {
	v := q.values()
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (q ActivityLogQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("userId", q.UserID)
	set("action", q.Action)
	set("severity", q.Severity)
	set("resourceType", q.ResourceType)
	set("userEmail", q.UserEmail)
	if q.Success != nil {
		v.Set("success", strconv.FormatBool(*q.Success))
	}
	if q.StartDate != nil {
		v.Set("startDate", q.StartDate.Format(time.RFC3339))
	}
	if q.EndDate != nil {
		v.Set("endDate", q.EndDate.Format(time.RFC3339))
	}
	return v
}
