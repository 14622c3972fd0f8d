package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
	"dataroom/internal/service"
)

type MockAccessRequestWorkflow struct {
	mock.Mock
}

func (m *MockAccessRequestWorkflow) Create(ctx context.Context, requester model.Identity, roomID, folderID, reason string, meta model.RequestMeta) (*model.AccessRequest, error) {
	args := m.Called(ctx, requester, roomID, folderID, reason, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestWorkflow) Review(ctx context.Context, reviewer model.Identity, requestID string, in service.ReviewInput, meta model.RequestMeta) (*model.AccessRequest, error) {
	args := m.Called(ctx, reviewer, requestID, in, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestWorkflow) ListPending(ctx context.Context, reviewer model.Identity, roomID string, meta model.RequestMeta) ([]model.AccessRequest, error) {
	args := m.Called(ctx, reviewer, roomID, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessRequest), args.Error(1)
}
