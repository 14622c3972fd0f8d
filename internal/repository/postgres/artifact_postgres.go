package postgres

import (
	"context"
	"database/sql"
	"time"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// ArtifactPostgres tracks render_artifacts rows.
type ArtifactPostgres struct {
	db *sql.DB
}

func NewArtifactPostgres(db *sql.DB) *ArtifactPostgres {
	return &ArtifactPostgres{db: db}
}

var _ repository.ArtifactRepository = (*ArtifactPostgres)(nil)

func (r *ArtifactPostgres) Create(ctx context.Context, a *model.RenderArtifact) error {
	const q = `
		INSERT INTO render_artifacts (id, storage_key, file_id, viewer_id, room_id, checksum, delete_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.StorageKey,
		a.FileID,
		a.ViewerID,
		a.RoomID,
		a.Checksum,
		a.DeleteAfter,
		a.CreatedAt,
	)
	return err
}

func (r *ArtifactPostgres) ListDue(ctx context.Context, now time.Time, limit int) ([]model.RenderArtifact, error) {
	const q = `
		SELECT id, storage_key, file_id, viewer_id, room_id, checksum, delete_after, created_at
		FROM render_artifacts
		WHERE deleted_at IS NULL AND delete_after <= $1
		ORDER BY delete_after ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RenderArtifact, 0)
	for rows.Next() {
		var a model.RenderArtifact
		if err := rows.Scan(&a.ID, &a.StorageKey, &a.FileID, &a.ViewerID, &a.RoomID,
			&a.Checksum, &a.DeleteAfter, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ArtifactPostgres) MarkDeleted(ctx context.Context, id string, now time.Time) error {
	const q = `UPDATE render_artifacts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, id, now)
	return err
}
