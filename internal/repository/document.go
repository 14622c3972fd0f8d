package repository

import (
	"context"
	"errors"

	"dataroom/internal/model"
)

var (
	// ErrNotFound is returned when a lookup or conditional update matched no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with a uniqueness rule or a concurrent transition.
	ErrConflict = errors.New("conflict")
)

// DocumentRepository defines data access for folders and files using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// FindFile returns a file by its ID.
	FindFile(ctx context.Context, id string) (*model.File, error)

	// FindFolder returns a folder by its ID.
	FindFolder(ctx context.Context, id string) (*model.Folder, error)

	// FolderPath returns the chain of folders from the room root down to (and including) folderID.
	FolderPath(ctx context.Context, folderID string) ([]model.Folder, error)

	// ListSubtreeFiles returns a paginated list of files stored anywhere below folderID and the total count.
	ListSubtreeFiles(ctx context.Context, folderID string, pq PageQuery) (*PageResult[model.File], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
