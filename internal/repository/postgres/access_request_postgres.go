package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// AccessRequestPostgres persists access requests and applies approvals transactionally.
type AccessRequestPostgres struct {
	db *sql.DB
}

func NewAccessRequestPostgres(db *sql.DB) *AccessRequestPostgres {
	return &AccessRequestPostgres{db: db}
}

var _ repository.AccessRequestRepository = (*AccessRequestPostgres)(nil)

const accessRequestColumns = `id, user_id, room_id, COALESCE(folder_id::text, ''), reason, status,
	reviewed_by, reviewed_at, review_note, granted_role, created_at`

func scanAccessRequest(s rowScanner) (*model.AccessRequest, error) {
	var (
		req      model.AccessRequest
		reviewed sql.NullTime
	)
	if err := s.Scan(
		&req.ID,
		&req.UserID,
		&req.RoomID,
		&req.FolderID,
		&req.Reason,
		&req.Status,
		&req.ReviewedBy,
		&reviewed,
		&req.ReviewNote,
		&req.GrantedRole,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}
	req.ReviewedAt = timePtr(reviewed)
	return &req, nil
}

func (r *AccessRequestPostgres) Create(ctx context.Context, req *model.AccessRequest) (*model.AccessRequest, error) {
	const q = `
		INSERT INTO access_requests (id, user_id, room_id, folder_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'PENDING', $6)
		RETURNING ` + accessRequestColumns
	out, err := scanAccessRequest(r.db.QueryRowContext(ctx, q,
		req.ID,
		req.UserID,
		req.RoomID,
		nullString(req.FolderID),
		req.Reason,
		req.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return out, nil
}

func (r *AccessRequestPostgres) FindByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	const q = `SELECT ` + accessRequestColumns + ` FROM access_requests WHERE id = $1`
	req, err := scanAccessRequest(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (r *AccessRequestPostgres) FindPending(ctx context.Context, userID, roomID, folderID string) (*model.AccessRequest, error) {
	const q = `
		SELECT ` + accessRequestColumns + `
		FROM access_requests
		WHERE user_id = $1 AND room_id = $2 AND COALESCE(folder_id::text, '') = $3 AND status = 'PENDING'
	`
	req, err := scanAccessRequest(r.db.QueryRowContext(ctx, q, userID, roomID, folderID))
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (r *AccessRequestPostgres) ListPending(ctx context.Context, roomID string) ([]model.AccessRequest, error) {
	const q = `
		SELECT ` + accessRequestColumns + `
		FROM access_requests
		WHERE room_id = $1 AND status = 'PENDING'
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AccessRequest, 0)
	for rows.Next() {
		req, err := scanAccessRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

const reviewRequest = `
	UPDATE access_requests
	SET status = $2, reviewed_by = $3, reviewed_at = $4, review_note = $5, granted_role = $6
	WHERE id = $1 AND status = 'PENDING'
`

// upsertAccess creates the binding or raises an existing one. Flags are only ever switched on and the
// role is precomputed by the caller as the higher of the two; id, restrictions and expiry are kept.
const upsertAccess = `
	INSERT INTO room_access (id, user_id, room_id, role,
		can_view, can_download, can_print, can_upload, can_edit, can_invite,
		can_manage_qa, can_view_audit, can_manage_users, can_manage_groups, can_manage_room,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (user_id, room_id) DO UPDATE SET
		role = EXCLUDED.role,
		can_view = room_access.can_view OR EXCLUDED.can_view,
		can_download = room_access.can_download OR EXCLUDED.can_download,
		can_print = room_access.can_print OR EXCLUDED.can_print,
		can_upload = room_access.can_upload OR EXCLUDED.can_upload,
		can_edit = room_access.can_edit OR EXCLUDED.can_edit,
		can_invite = room_access.can_invite OR EXCLUDED.can_invite,
		can_manage_qa = room_access.can_manage_qa OR EXCLUDED.can_manage_qa,
		can_view_audit = room_access.can_view_audit OR EXCLUDED.can_view_audit,
		can_manage_users = room_access.can_manage_users OR EXCLUDED.can_manage_users,
		can_manage_groups = room_access.can_manage_groups OR EXCLUDED.can_manage_groups,
		can_manage_room = room_access.can_manage_room OR EXCLUDED.can_manage_room,
		updated_at = EXCLUDED.updated_at
`

func (r *AccessRequestPostgres) Approve(ctx context.Context, req *model.AccessRequest, a *model.RoomAccess) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := transition(ctx, tx, req); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsertAccess,
		a.ID,
		a.UserID,
		a.RoomID,
		a.Role,
		a.CanView,
		a.CanDownload,
		a.CanPrint,
		a.CanUpload,
		a.CanEdit,
		a.CanInvite,
		a.CanManageQA,
		a.CanViewAudit,
		a.CanManageUsers,
		a.CanManageGroups,
		a.CanManageRoom,
		a.CreatedAt,
		a.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert room access: %w", err)
	}
	return tx.Commit()
}

func (r *AccessRequestPostgres) Deny(ctx context.Context, req *model.AccessRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := transition(ctx, tx, req); err != nil {
		return err
	}
	return tx.Commit()
}

func transition(ctx context.Context, tx *sql.Tx, req *model.AccessRequest) error {
	res, err := tx.ExecContext(ctx, reviewRequest,
		req.ID,
		req.Status,
		req.ReviewedBy,
		nullTime(req.ReviewedAt),
		req.ReviewNote,
		req.GrantedRole,
	)
	if err != nil {
		return fmt.Errorf("review access request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrConflict
	}
	return nil
}
