package repository

import (
	"context"

	"dataroom/internal/model"
)

// AccessRequestRepository persists the access request lifecycle.
type AccessRequestRepository interface {
	// Create inserts a PENDING request. A concurrent duplicate yields ErrConflict.
	Create(ctx context.Context, req *model.AccessRequest) (*model.AccessRequest, error)
	FindByID(ctx context.Context, id string) (*model.AccessRequest, error)
	FindPending(ctx context.Context, userID, roomID, folderID string) (*model.AccessRequest, error)
	ListPending(ctx context.Context, roomID string) ([]model.AccessRequest, error)

	// Approve marks req APPROVED and upserts the requester's RoomAccess in the same transaction.
	// It returns ErrConflict when the request is no longer PENDING.
	Approve(ctx context.Context, req *model.AccessRequest, access *model.RoomAccess) error

	// Deny marks req DENIED. It returns ErrConflict when the request is no longer PENDING.
	Deny(ctx context.Context, req *model.AccessRequest) error
}
