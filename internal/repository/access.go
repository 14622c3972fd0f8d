package repository

import (
	"context"

	"dataroom/internal/model"
)

// RoomRepository reads room policy.
type RoomRepository interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

// AccessRepository reads RoomAccess bindings. Rows are created by approvals and never hard-deleted.
type AccessRepository interface {
	// Find returns the binding of userID to roomID.
	Find(ctx context.Context, userID, roomID string) (*model.RoomAccess, error)

	// ListManagerIDs returns the users holding view plus user or room management on roomID.
	ListManagerIDs(ctx context.Context, roomID string) ([]string, error)
}

// FolderRuleRepository reads folder-scoped permission rules.
type FolderRuleRepository interface {
	// RulesOnPath returns every rule on folderID or any of its ancestors that applies to userID
	// directly or through one of the user's group memberships, ordered root first.
	RulesOnPath(ctx context.Context, userID, folderID string) ([]model.FolderPermission, error)
}
