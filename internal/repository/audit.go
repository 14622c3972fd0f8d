package repository

import (
	"context"
	"time"

	"dataroom/internal/model"
)

// AuditRepository is append-only: there is no update or delete.
type AuditRepository interface {
	Insert(ctx context.Context, ev *model.AuditEvent) error
	Query(ctx context.Context, f model.AuditFilter) ([]model.AuditEvent, error)
	Aggregate(ctx context.Context, f model.AuditFilter, by model.AuditGroupBy) ([]model.AuditAggregate, error)
}

// ArtifactRepository tracks temporary watermark renditions until the sweeper removes them.
type ArtifactRepository interface {
	Create(ctx context.Context, a *model.RenderArtifact) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.RenderArtifact, error)
	MarkDeleted(ctx context.Context, id string, now time.Time) error
}
