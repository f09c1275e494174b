package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/jmoiron/sqlx"
)

type auditEventsRepo struct {
	q queryer
}

type auditEventRow struct {
	ID            string         `db:"id"`
	Timestamp     string         `db:"timestamp"`
	UserID        sql.NullString `db:"user_id"`
	UserEmail     sql.NullString `db:"user_email"`
	UserRole      sql.NullString `db:"user_role"`
	Action        string         `db:"action"`
	Description   string         `db:"description"`
	Severity      string         `db:"severity"`
	Success       bool           `db:"success"`
	ErrorMessage  sql.NullString `db:"error_message"`
	IPAddress     string         `db:"ip_address"`
	UserAgent     sql.NullString `db:"user_agent"`
	RequestMethod sql.NullString `db:"request_method"`
	RequestURL    sql.NullString `db:"request_url"`
	StatusCode    sql.NullInt64  `db:"status_code"`
	SessionID     sql.NullString `db:"session_id"`
	ResourceID    sql.NullString `db:"resource_id"`
	ResourceType  sql.NullString `db:"resource_type"`
	RequestBody   sql.NullString `db:"request_body"`
	Metadata      sql.NullString `db:"metadata"`
}

const auditEventColumns = `id, timestamp, user_id, user_email, user_role, action,
	description, severity, success, error_message, ip_address, user_agent,
	request_method, request_url, status_code, session_id, resource_id,
	resource_type, request_body, metadata`

func (r *auditEventsRepo) InsertAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	body, err := encodeDocument(e.RequestBody)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	metadata, err := encodeDocument(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	var statusCode sql.NullInt64
	if e.StatusCode != nil {
		statusCode = sql.NullInt64{Int64: int64(*e.StatusCode), Valid: true}
	}
	var resourceType sql.NullString
	if e.ResourceType != nil {
		resourceType = sql.NullString{String: string(*e.ResourceType), Valid: true}
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO audit_events (`+auditEventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.Timestamp),
		mapOptionalString(e.UserID),
		mapOptionalString(e.UserEmail),
		mapOptionalString(e.UserRole),
		string(e.Action),
		e.Description,
		string(e.Severity),
		e.Success,
		mapOptionalString(e.ErrorMessage),
		e.IPAddress,
		mapOptionalString(e.UserAgent),
		mapOptionalString(e.RequestMethod),
		mapOptionalString(e.RequestURL),
		statusCode,
		mapOptionalString(e.SessionID),
		mapOptionalString(e.ResourceID),
		resourceType,
		body,
		metadata,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *auditEventsRepo) ListAuditEvents(
	ctx context.Context,
	f domain.AuditFilter,
	limit, offset int,
) ([]domain.AuditEvent, error) {
	where, args := buildAuditWhere(f)

	// id breaks timestamp ties; ULIDs minted in one process sort by time.
	query := `SELECT ` + auditEventColumns + ` FROM audit_events` + where +
		` ORDER BY timestamp DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(offset, 0))
	}

	var rows []auditEventRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, err
	}

	events := make([]domain.AuditEvent, 0, len(rows))
	for _, row := range rows {
		e, err := mapAuditEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *auditEventsRepo) CountAuditEvents(ctx context.Context, f domain.AuditFilter) (int, error) {
	where, args := buildAuditWhere(f)

	var count int
	if err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM audit_events`+where, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *auditEventsRepo) CountAuditEventsBy(
	ctx context.Context,
	field store.GroupField,
	f domain.AuditFilter,
	limit int,
) ([]domain.Count, error) {
	var key string
	switch field {
	case store.GroupByAction, store.GroupBySeverity, store.GroupByIPAddress:
		key = string(field)
	case store.GroupBySuccess:
		key = `CASE success WHEN 1 THEN 'true' ELSE 'false' END`
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	where, args := buildAuditWhere(f)
	query := `SELECT ` + key + ` AS "key", COUNT(*) AS "count" FROM audit_events` + where +
		` GROUP BY 1 ORDER BY "count" DESC, "key" ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var counts []domain.Count
	if err := sqlx.SelectContext(ctx, r.q, &counts, query, args...); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *auditEventsRepo) CountDistinctUsers(ctx context.Context, f domain.AuditFilter) (int, error) {
	where, args := buildAuditWhere(f)

	var count int
	err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(DISTINCT user_id) FROM audit_events`+where, args...)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *auditEventsRepo) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// buildAuditWhere renders f as a WHERE clause. Every value is bound.
func buildAuditWhere(f domain.AuditFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.UserID != "" {
		conds = append(conds, `user_id = ?`)
		args = append(args, f.UserID)
	}
	if f.Action != "" {
		conds = append(conds, `action = ?`)
		args = append(args, string(f.Action))
	}
	if f.Severity != "" {
		conds = append(conds, `severity = ?`)
		args = append(args, string(f.Severity))
	}
	if len(f.Severities) > 0 {
		conds = append(conds, `severity IN (?`+strings.Repeat(`, ?`, len(f.Severities)-1)+`)`)
		for _, s := range f.Severities {
			args = append(args, string(s))
		}
	}
	if f.Success != nil {
		conds = append(conds, `success = ?`)
		args = append(args, *f.Success)
	}
	if f.ResourceType != "" {
		conds = append(conds, `resource_type = ?`)
		args = append(args, string(f.ResourceType))
	}
	if f.Email != "" {
		conds = append(conds, `LOWER(user_email) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Email))+"%")
	}
	if f.Start != nil {
		conds = append(conds, `timestamp >= ?`)
		args = append(args, formatTime(*f.Start))
	}
	if f.End != nil {
		conds = append(conds, `timestamp <= ?`)
		args = append(args, formatTime(*f.End))
	}
	if f.Before != nil {
		conds = append(conds, `timestamp < ?`)
		args = append(args, formatTime(*f.Before))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func encodeDocument(doc map[string]any) (sql.NullString, error) {
	if doc == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeDocument(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(ns.String), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func mapAuditEvent(row auditEventRow) (domain.AuditEvent, error) {
	ts, err := parseTime(row.Timestamp)
	if err != nil {
		return domain.AuditEvent{}, err
	}

	e := domain.AuditEvent{
		ID:            row.ID,
		Timestamp:     ts,
		UserID:        mapNullStringPtr(row.UserID),
		UserEmail:     mapNullStringPtr(row.UserEmail),
		UserRole:      mapNullStringPtr(row.UserRole),
		Action:        domain.Action(row.Action),
		Description:   row.Description,
		Severity:      domain.Severity(row.Severity),
		Success:       row.Success,
		ErrorMessage:  mapNullStringPtr(row.ErrorMessage),
		IPAddress:     row.IPAddress,
		UserAgent:     mapNullStringPtr(row.UserAgent),
		RequestMethod: mapNullStringPtr(row.RequestMethod),
		RequestURL:    mapNullStringPtr(row.RequestURL),
		SessionID:     mapNullStringPtr(row.SessionID),
		ResourceID:    mapNullStringPtr(row.ResourceID),
	}
	if row.StatusCode.Valid {
		code := int(row.StatusCode.Int64)
		e.StatusCode = &code
	}
	if row.ResourceType.Valid {
		rt := domain.ResourceType(row.ResourceType.String)
		e.ResourceType = &rt
	}
	if e.RequestBody, err = decodeDocument(row.RequestBody); err != nil {
		return domain.AuditEvent{}, fmt.Errorf("failed to decode request body of %s: %w", row.ID, err)
	}
	if e.Metadata, err = decodeDocument(row.Metadata); err != nil {
		return domain.AuditEvent{}, fmt.Errorf("failed to decode metadata of %s: %w", row.ID, err)
	}
	return e, nil
}
