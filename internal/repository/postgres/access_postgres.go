package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// RoomPostgres reads room policy rows.
type RoomPostgres struct {
	db *sql.DB
}

func NewRoomPostgres(db *sql.DB) *RoomPostgres {
	return &RoomPostgres{db: db}
}

var _ repository.RoomRepository = (*RoomPostgres)(nil)

func (r *RoomPostgres) FindByID(ctx context.Context, id string) (*model.Room, error) {
	const q = `
		SELECT id, name, allow_download, allow_print, allow_copy_paste, watermark_enabled,
		       require_nda, status, expires_at, created_at
		FROM rooms
		WHERE id = $1
	`
	var (
		room    model.Room
		expires sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&room.ID,
		&room.Name,
		&room.AllowDownload,
		&room.AllowPrint,
		&room.AllowCopyPaste,
		&room.WatermarkEnabled,
		&room.RequireNDA,
		&room.Status,
		&expires,
		&room.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	room.ExpiresAt = timePtr(expires)
	return &room, nil
}

// AccessPostgres reads room_access rows.
type AccessPostgres struct {
	db *sql.DB
}

func NewAccessPostgres(db *sql.DB) *AccessPostgres {
	return &AccessPostgres{db: db}
}

var _ repository.AccessRepository = (*AccessPostgres)(nil)

func (r *AccessPostgres) Find(ctx context.Context, userID, roomID string) (*model.RoomAccess, error) {
	const q = `
		SELECT id, user_id, room_id, role,
		       can_view, can_download, can_print, can_upload, can_edit, can_invite,
		       can_manage_qa, can_view_audit, can_manage_users, can_manage_groups, can_manage_room,
		       ip_whitelist, allowed_countries, expires_at, created_at, updated_at
		FROM room_access
		WHERE user_id = $1 AND room_id = $2
	`
	var (
		a         model.RoomAccess
		ips       []byte
		countries []byte
		expires   sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q, userID, roomID).Scan(
		&a.ID,
		&a.UserID,
		&a.RoomID,
		&a.Role,
		&a.CanView,
		&a.CanDownload,
		&a.CanPrint,
		&a.CanUpload,
		&a.CanEdit,
		&a.CanInvite,
		&a.CanManageQA,
		&a.CanViewAudit,
		&a.CanManageUsers,
		&a.CanManageGroups,
		&a.CanManageRoom,
		&ips,
		&countries,
		&expires,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}

	var err error
	if a.IPWhitelist, err = decodeList(ips); err != nil {
		return nil, fmt.Errorf("decode ip_whitelist: %w", err)
	}
	if a.AllowedCountries, err = decodeList(countries); err != nil {
		return nil, fmt.Errorf("decode allowed_countries: %w", err)
	}
	a.ExpiresAt = timePtr(expires)
	return &a, nil
}

func (r *AccessPostgres) ListManagerIDs(ctx context.Context, roomID string) ([]string, error) {
	const q = `
		SELECT user_id
		FROM room_access
		WHERE room_id = $1 AND can_view AND (can_manage_users OR can_manage_room)
		  AND (expires_at IS NULL OR expires_at > now())
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FolderRulePostgres reads folder_permissions joined with group memberships.
type FolderRulePostgres struct {
	db *sql.DB
}

func NewFolderRulePostgres(db *sql.DB) *FolderRulePostgres {
	return &FolderRulePostgres{db: db}
}

var _ repository.FolderRuleRepository = (*FolderRulePostgres)(nil)

func (r *FolderRulePostgres) RulesOnPath(ctx context.Context, userID, folderID string) ([]model.FolderPermission, error) {
	const q = `
		WITH RECURSIVE path AS (
			SELECT id, parent_id, 0 AS depth FROM folders WHERE id = $2
			UNION ALL
			SELECT f.id, f.parent_id, p.depth + 1
			FROM folders f JOIN path p ON f.id = p.parent_id
		)
		SELECT fp.id, fp.folder_id, COALESCE(fp.user_id, ''), COALESCE(fp.group_id::text, ''),
		       fp.can_view, fp.can_download, fp.can_print, fp.can_upload, fp.can_edit
		FROM folder_permissions fp
		JOIN path p ON p.id = fp.folder_id
		WHERE fp.user_id = $1
		   OR fp.group_id IN (SELECT group_id FROM group_memberships WHERE user_id = $1)
		ORDER BY p.depth DESC, fp.id
	`
	rows, err := r.db.QueryContext(ctx, q, userID, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.FolderPermission, 0)
	for rows.Next() {
		var fp model.FolderPermission
		var view, download, printing, upload, edit sql.NullBool
		if err := rows.Scan(&fp.ID, &fp.FolderID, &fp.UserID, &fp.GroupID,
			&view, &download, &printing, &upload, &edit); err != nil {
			return nil, err
		}
		fp.CanView = boolPtr(view)
		fp.CanDownload = boolPtr(download)
		fp.CanPrint = boolPtr(printing)
		fp.CanUpload = boolPtr(upload)
		fp.CanEdit = boolPtr(edit)
		out = append(out, fp)
	}
	return out, rows.Err()
}
