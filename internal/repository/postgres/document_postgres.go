package postgres

import (
	"context"
	"database/sql"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const fileColumns = `id, room_id, COALESCE(folder_id::text, ''), name, storage_key, size, content_type, checksum, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(s rowScanner) (*model.File, error) {
	var f model.File
	if err := s.Scan(
		&f.ID,
		&f.RoomID,
		&f.FolderID,
		&f.Name,
		&f.StorageKey,
		&f.Size,
		&f.ContentType,
		&f.Checksum,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindFile fetches a single file by its ID.
func (r *DocumentPostgres) FindFile(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	f, err := scanFile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// FindFolder fetches a single folder by its ID.
func (r *DocumentPostgres) FindFolder(ctx context.Context, id string) (*model.Folder, error) {
	const q = `
		SELECT id, room_id, COALESCE(parent_id::text, ''), name, created_at
		FROM folders
		WHERE id = $1
	`
	var f model.Folder
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.RoomID, &f.ParentID, &f.Name, &f.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// FolderPath walks parent links upwards and returns the chain root first.
func (r *DocumentPostgres) FolderPath(ctx context.Context, folderID string) ([]model.Folder, error) {
	const q = `
		WITH RECURSIVE path AS (
			SELECT id, room_id, parent_id, name, created_at, 0 AS depth
			FROM folders WHERE id = $1
			UNION ALL
			SELECT f.id, f.room_id, f.parent_id, f.name, f.created_at, p.depth + 1
			FROM folders f JOIN path p ON f.id = p.parent_id
		)
		SELECT id, room_id, COALESCE(parent_id::text, ''), name, created_at
		FROM path
		ORDER BY depth DESC
	`
	rows, err := r.db.QueryContext(ctx, q, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Folder, 0)
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.RoomID, &f.ParentID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return out, nil
}

// ListSubtreeFiles returns files using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListSubtreeFiles(ctx context.Context, folderID string, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	const subtree = `
		WITH RECURSIVE tree AS (
			SELECT id FROM folders WHERE id = $1
			UNION ALL
			SELECT f.id FROM folders f JOIN tree t ON f.parent_id = t.id
		)
	`
	// Count total rows
	const qCount = subtree + `SELECT COUNT(*) FROM files WHERE folder_id IN (SELECT id FROM tree)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, folderID).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = subtree + `
		SELECT ` + fileColumns + `
		FROM files
		WHERE folder_id IN (SELECT id FROM tree)
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, folderID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{
		Items: items,
		Total: total,
	}, nil
}
