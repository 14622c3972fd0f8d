package repository

import (
	"context"
	"time"

	"dataroom/internal/model"
)

// ShareLinkRepository persists share links.
type ShareLinkRepository interface {
	Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error)
	FindByID(ctx context.Context, id string) (*model.ShareLink, error)
	FindByToken(ctx context.Context, token string) (*model.ShareLink, error)

	// IncrementViews atomically bumps current_views and last_accessed_at, but only while the link is
	// active, unexpired at now and below its view limit. It returns ErrNotFound when the guard fails.
	IncrementViews(ctx context.Context, id string, now time.Time) (*model.ShareLink, error)

	// Deactivate sets is_active=false once. Deactivating an inactive link is a no-op.
	Deactivate(ctx context.Context, id, actorID string, now time.Time) error

	// ListByTarget lists links for one target, newest first. A non-empty createdBy restricts to that creator.
	ListByTarget(ctx context.Context, targetType model.TargetType, targetID, createdBy string) ([]model.ShareLink, error)
}
