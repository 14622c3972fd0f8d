package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

const maxAuditPage = 1000

// AuditPostgres appends and reads audit_events. Rows are never updated or deleted.
type AuditPostgres struct {
	db *sql.DB
}

func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

func (r *AuditPostgres) Insert(ctx context.Context, ev *model.AuditEvent) error {
	const q = `
		INSERT INTO audit_events (id, actor_id, action, resource_type, resource_id, room_id, outcome,
			ip_address, user_agent, request_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	details := ev.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		ev.ID,
		ev.ActorID,
		ev.Action,
		ev.ResourceType,
		ev.ResourceID,
		ev.RoomID,
		ev.Outcome,
		ev.IPAddress,
		ev.UserAgent,
		ev.RequestID,
		raw,
		ev.CreatedAt,
	)
	return err
}

// where renders the filter as a WHERE clause with positional arguments.
func where(f model.AuditFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.RoomID != "" {
		add("room_id = ?", f.RoomID)
	}
	if f.ActorID != "" {
		add("actor_id = ?", f.ActorID)
	}
	if f.Action != "" {
		add("action = ?", string(f.Action))
	}
	if f.ResourceType != "" {
		add("resource_type = ?", f.ResourceType)
	}
	if f.ResourceID != "" {
		add("resource_id = ?", f.ResourceID)
	}
	if f.From != nil {
		add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		add("created_at < ?", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *AuditPostgres) Query(ctx context.Context, f model.AuditFilter) ([]model.AuditEvent, error) {
	clause, args := where(f)
	limit := f.Limit
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}
	args = append(args, limit, f.Offset)
	q := `SELECT id, actor_id, action, resource_type, resource_id, room_id, outcome,
		ip_address, user_agent, request_id, details, created_at
		FROM audit_events` + clause + fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AuditEvent, 0)
	for rows.Next() {
		var (
			ev  model.AuditEvent
			raw []byte
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.ActorID,
			&ev.Action,
			&ev.ResourceType,
			&ev.ResourceID,
			&ev.RoomID,
			&ev.Outcome,
			&ev.IPAddress,
			&ev.UserAgent,
			&ev.RequestID,
			&raw,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &ev.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

var groupExpr = map[model.AuditGroupBy]string{
	model.GroupByAction: "action",
	model.GroupByDay:    "to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD')",
	model.GroupByUser:   "actor_id",
	model.GroupByFile:   "resource_id",
}

func (r *AuditPostgres) Aggregate(ctx context.Context, f model.AuditFilter, by model.AuditGroupBy) ([]model.AuditAggregate, error) {
	expr, ok := groupExpr[by]
	if !ok {
		return nil, fmt.Errorf("unsupported group by %q", by)
	}
	if by == model.GroupByFile {
		f.ResourceType = model.ResourceFile
	}
	clause, args := where(f)
	q := `SELECT ` + expr + ` AS bucket, COUNT(*) FROM audit_events` + clause +
		` GROUP BY bucket ORDER BY bucket ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AuditAggregate, 0)
	for rows.Next() {
		var a model.AuditAggregate
		if err := rows.Scan(&a.Key, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
