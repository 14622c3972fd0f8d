package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
)

type MockAuditTrail struct {
	mock.Mock
}

func (m *MockAuditTrail) Append(ctx context.Context, ev *model.AuditEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockAuditTrail) Export(ctx context.Context, actor model.Identity, roomID string, f model.AuditFilter, meta model.RequestMeta) ([]model.AuditEvent, error) {
	args := m.Called(ctx, actor, roomID, f, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}

func (m *MockAuditTrail) Aggregate(ctx context.Context, actor model.Identity, roomID string, f model.AuditFilter, by model.AuditGroupBy, meta model.RequestMeta) ([]model.AuditAggregate, error) {
	args := m.Called(ctx, actor, roomID, f, by, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditAggregate), args.Error(1)
}
