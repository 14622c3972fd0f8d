package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, ev *model.AuditEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockAuditRepository) Query(ctx context.Context, f model.AuditFilter) ([]model.AuditEvent, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}

func (m *MockAuditRepository) Aggregate(ctx context.Context, f model.AuditFilter, by model.AuditGroupBy) ([]model.AuditAggregate, error) {
	args := m.Called(ctx, f, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditAggregate), args.Error(1)
}

type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) Create(ctx context.Context, a *model.RenderArtifact) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockArtifactRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]model.RenderArtifact, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RenderArtifact), args.Error(1)
}

func (m *MockArtifactRepository) MarkDeleted(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}
