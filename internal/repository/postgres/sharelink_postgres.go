package postgres

import (
	"context"
	"database/sql"
	"time"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// ShareLinkPostgres persists share links.
type ShareLinkPostgres struct {
	db *sql.DB
}

func NewShareLinkPostgres(db *sql.DB) *ShareLinkPostgres {
	return &ShareLinkPostgres{db: db}
}

var _ repository.ShareLinkRepository = (*ShareLinkPostgres)(nil)

const shareLinkColumns = `id, token, target_type, target_id, room_id, created_by, recipient_email, recipient_name,
	message, is_active, max_views, current_views, expires_at, password_hash, allow_download, allow_print,
	require_auth, last_accessed_at, created_at, revoked_at, revoked_by`

func scanShareLink(s rowScanner) (*model.ShareLink, error) {
	var (
		l                            model.ShareLink
		maxViews                     sql.NullInt64
		expires, lastAccess, revoked sql.NullTime
	)
	if err := s.Scan(
		&l.ID,
		&l.Token,
		&l.TargetType,
		&l.TargetID,
		&l.RoomID,
		&l.CreatedBy,
		&l.RecipientEmail,
		&l.RecipientName,
		&l.Message,
		&l.IsActive,
		&maxViews,
		&l.CurrentViews,
		&expires,
		&l.PasswordHash,
		&l.AllowDownload,
		&l.AllowPrint,
		&l.RequireAuth,
		&lastAccess,
		&l.CreatedAt,
		&revoked,
		&l.RevokedBy,
	); err != nil {
		return nil, err
	}
	l.MaxViews = intPtr(maxViews)
	l.ExpiresAt = timePtr(expires)
	l.LastAccessedAt = timePtr(lastAccess)
	l.RevokedAt = timePtr(revoked)
	return &l, nil
}

// Create inserts a new link row and returns the stored record.
func (r *ShareLinkPostgres) Create(ctx context.Context, l *model.ShareLink) (*model.ShareLink, error) {
	const q = `
		INSERT INTO share_links (id, token, target_type, target_id, room_id, created_by, recipient_email,
			recipient_name, message, is_active, max_views, current_views, expires_at, password_hash,
			allow_download, allow_print, require_auth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10, 0, $11, $12, $13, $14, $15, $16)
		RETURNING ` + shareLinkColumns
	out, err := scanShareLink(r.db.QueryRowContext(ctx, q,
		l.ID,
		l.Token,
		l.TargetType,
		l.TargetID,
		l.RoomID,
		l.CreatedBy,
		l.RecipientEmail,
		l.RecipientName,
		l.Message,
		nullInt(l.MaxViews),
		nullTime(l.ExpiresAt),
		l.PasswordHash,
		l.AllowDownload,
		l.AllowPrint,
		l.RequireAuth,
		l.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return out, nil
}

func (r *ShareLinkPostgres) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	const q = `SELECT ` + shareLinkColumns + ` FROM share_links WHERE id = $1`
	l, err := scanShareLink(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (r *ShareLinkPostgres) FindByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	const q = `SELECT ` + shareLinkColumns + ` FROM share_links WHERE token = $1`
	l, err := scanShareLink(r.db.QueryRowContext(ctx, q, token))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// IncrementViews is the single conditional UPDATE that serialises redemptions on the row lock.
// Two callers racing for the last view cannot both satisfy the WHERE clause.
func (r *ShareLinkPostgres) IncrementViews(ctx context.Context, id string, now time.Time) (*model.ShareLink, error) {
	const q = `
		UPDATE share_links
		SET current_views = current_views + 1, last_accessed_at = $2
		WHERE id = $1
		  AND is_active
		  AND (expires_at IS NULL OR expires_at > $2)
		  AND (max_views IS NULL OR current_views < max_views)
		RETURNING ` + shareLinkColumns
	l, err := scanShareLink(r.db.QueryRowContext(ctx, q, id, now))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (r *ShareLinkPostgres) Deactivate(ctx context.Context, id, actorID string, now time.Time) error {
	const q = `
		UPDATE share_links
		SET is_active = false, revoked_at = $2, revoked_by = $3
		WHERE id = $1 AND is_active
	`
	_, err := r.db.ExecContext(ctx, q, id, now, actorID)
	return err
}

func (r *ShareLinkPostgres) ListByTarget(ctx context.Context, targetType model.TargetType, targetID, createdBy string) ([]model.ShareLink, error) {
	const q = `
		SELECT ` + shareLinkColumns + `
		FROM share_links
		WHERE target_type = $1 AND target_id = $2 AND ($3 = '' OR created_by = $3)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, targetType, targetID, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ShareLink, 0)
	for rows.Next() {
		l, err := scanShareLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
