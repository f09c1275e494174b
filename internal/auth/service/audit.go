package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/metrics"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRetentionDays is the purge window used when none is given.
	DefaultRetentionDays = 90

	statsTopN = 10
	day       = 24 * time.Hour
)

var csvHeader = []string{
	"Timestamp", "User Email", "User Role", "Action", "Description", "IP Address", "Success", "Severity",
}

// AuditService reads and prunes the activity log. Every read it serves is
// itself audited against the calling actor.
type AuditService struct {
	Store store.Store
	Audit *audit.Logger
	Now   func() time.Time

	// Location defines calendar days for Summary. Defaults to time.Local.
	Location *time.Location
}

func (s *AuditService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns one page of matching events, newest first. page is 1-indexed;
// a size below 1 uses domain.DefaultPageSize.
func (s *AuditService) List(
	ctx context.Context,
	actor *audit.Actor,
	f domain.AuditFilter,
	page, size int,
) (domain.AuditPage, error) {
	s.Audit.DataAccess(ctx, domain.ActionViewActivityLogs, actor, domain.ResourceSystem, "", nil)
	return s.page(ctx, f, page, size)
}

// ListForAccount is List restricted to one actor.
func (s *AuditService) ListForAccount(
	ctx context.Context,
	actor *audit.Actor,
	accountID string,
	f domain.AuditFilter,
	page, size int,
) (domain.AuditPage, error) {
	s.Audit.DataAccess(ctx, domain.ActionViewActivityLogs, actor, domain.ResourceUser, accountID, nil)
	f.UserID = accountID
	return s.page(ctx, f, page, size)
}

func (s *AuditService) page(ctx context.Context, f domain.AuditFilter, page, size int) (domain.AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = domain.DefaultPageSize
	}

	events, err := s.Store.AuditEvents().ListAuditEvents(ctx, f, size, (page-1)*size)
	if err != nil {
		return domain.AuditPage{}, fmt.Errorf("failed to list audit events: %w", err)
	}
	total, err := s.Store.AuditEvents().CountAuditEvents(ctx, f)
	if err != nil {
		return domain.AuditPage{}, fmt.Errorf("failed to count audit events: %w", err)
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return domain.AuditPage{Events: events, Pagination: domain.NewPagination(page, size, total)}, nil
}

// Stats computes the aggregate snapshot. Trailing windows are relative to
// the call time.
func (s *AuditService) Stats(ctx context.Context, actor *audit.Actor) (domain.AuditStats, error) {
	s.Audit.DataAccess(ctx, domain.ActionViewActivityLogs, actor, domain.ResourceSystem, "", nil)

	now := s.now()
	last30d := now.Add(-30 * day)
	last24h := now.Add(-day)
	last7d := now.Add(-7 * day)

	events := s.Store.AuditEvents()
	var out domain.AuditStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalLogs, err = events.CountAuditEvents(gctx, domain.AuditFilter{})
		return err
	})
	g.Go(func() (err error) {
		out.ActionStats, err = events.CountAuditEventsBy(gctx, store.GroupByAction, domain.AuditFilter{}, statsTopN)
		return err
	})
	g.Go(func() (err error) {
		out.SeverityStats, err = events.CountAuditEventsBy(gctx, store.GroupBySeverity, domain.AuditFilter{}, 0)
		return err
	})
	g.Go(func() (err error) {
		out.SuccessStats, err = events.CountAuditEventsBy(gctx, store.GroupBySuccess, domain.AuditFilter{}, 0)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveUsers, err = events.CountDistinctUsers(gctx, domain.AuditFilter{Start: &last30d})
		return err
	})
	g.Go(func() (err error) {
		out.RecentActivity, err = events.CountAuditEvents(gctx, domain.AuditFilter{Start: &last24h})
		return err
	})
	g.Go(func() (err error) {
		out.TopIPs, err = events.CountAuditEventsBy(gctx, store.GroupByIPAddress, domain.AuditFilter{Start: &last7d}, statsTopN)
		return err
	})
	g.Go(func() (err error) {
		out.SecurityEvents, err = events.CountAuditEvents(gctx, domain.AuditFilter{
			Start:      &last30d,
			Severities: []domain.Severity{domain.SeverityHigh, domain.SeverityCritical},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AuditStats{}, fmt.Errorf("failed to compute audit stats: %w", err)
	}
	return out, nil
}

// Summary counts events for the dashboard: today, yesterday, the week since
// midnight seven days ago, and today's failed logins and HIGH or CRITICAL
// events.
func (s *AuditService) Summary(ctx context.Context, actor *audit.Actor) (domain.AuditSummary, error) {
	s.Audit.DataAccess(ctx, domain.ActionViewActivityLogs, actor, domain.ResourceSystem, "", nil)

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)
	week := today.AddDate(0, 0, -7)

	events := s.Store.AuditEvents()
	var out domain.AuditSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Today, err = events.CountAuditEvents(gctx, domain.AuditFilter{Start: &today})
		return err
	})
	g.Go(func() (err error) {
		out.Yesterday, err = events.CountAuditEvents(gctx, domain.AuditFilter{Start: &yesterday, Before: &today})
		return err
	})
	g.Go(func() (err error) {
		out.ThisWeek, err = events.CountAuditEvents(gctx, domain.AuditFilter{Start: &week})
		return err
	})
	g.Go(func() (err error) {
		out.FailedLogins, err = events.CountAuditEvents(gctx, domain.AuditFilter{
			Start:  &today,
			Action: domain.ActionFailedLogin,
		})
		return err
	})
	g.Go(func() (err error) {
		out.SecurityAlerts, err = events.CountAuditEvents(gctx, domain.AuditFilter{
			Start:      &today,
			Severities: []domain.Severity{domain.SeverityHigh, domain.SeverityCritical},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AuditSummary{}, fmt.Errorf("failed to compute audit summary: %w", err)
	}
	return out, nil
}

// ParseExportFormat maps a query value to an export format. Empty means
// JSON.
func ParseExportFormat(v string) (domain.ExportFormat, error) {
	switch domain.ExportFormat(strings.ToLower(strings.TrimSpace(v))) {
	case "", domain.ExportJSON:
		return domain.ExportJSON, nil
	case domain.ExportCSV:
		return domain.ExportCSV, nil
	}
	return "", ErrInvalidExportFormat
}

// ExportFilename is the download name for an export in format.
func ExportFilename(format domain.ExportFormat) string {
	return "activity_logs." + string(format)
}

// Export writes every matching event to w, newest first. JSON output is an
// array of events; CSV output quotes every field.
func (s *AuditService) Export(
	ctx context.Context,
	actor *audit.Actor,
	f domain.AuditFilter,
	format domain.ExportFormat,
	w io.Writer,
) error {
	if format != domain.ExportJSON && format != domain.ExportCSV {
		return ErrInvalidExportFormat
	}
	s.Audit.DataAccess(ctx, domain.ActionExportLogs, actor, domain.ResourceSystem, "",
		map[string]any{"format": string(format)})

	events, err := s.Store.AuditEvents().ListAuditEvents(ctx, f, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list audit events: %w", err)
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}

	if format == domain.ExportJSON {
		return json.NewEncoder(w).Encode(events)
	}
	return writeCSV(w, events)
}

func writeCSV(w io.Writer, events []domain.AuditEvent) error {
	bw := bufio.NewWriter(w)
	writeQuotedRow(bw, csvHeader)
	for _, e := range events {
		writeQuotedRow(bw, []string{
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			orNA(e.UserEmail),
			orNA(e.UserRole),
			string(e.Action),
			e.Description,
			naIfEmpty(e.IPAddress),
			strconv.FormatBool(e.Success),
			string(e.Severity),
		})
	}
	return bw.Flush()
}

// writeQuotedRow writes one CSV record with every field quoted and embedded
// quotes doubled.
func writeQuotedRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_ = w.WriteByte('"')
		_, _ = w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('\n')
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return naIfEmpty(*s)
}

func naIfEmpty(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Purge deletes events stamped more than days before now and records the
// purge as a new event. A days value below 1 uses DefaultRetentionDays.
func (s *AuditService) Purge(ctx context.Context, actor *audit.Actor, days int) (int64, error) {
	if days < 1 {
		days = DefaultRetentionDays
	}
	cutoff := s.now().Add(-time.Duration(days) * day)

	deleted, err := s.Store.AuditEvents().DeleteAuditEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit events: %w", err)
	}
	metrics.AuditPurged.Add(float64(deleted))

	slogx.FromContext(ctx).Info("purged audit events",
		slog.Int64("deleted", deleted), slog.Int("cutoff_days", days))
	s.Audit.DataAccess(ctx, domain.ActionDeleteOldLogs, actor, domain.ResourceSystem, "",
		map[string]any{"deletedCount": deleted, "cutoffDays": days})
	return deleted, nil
}
