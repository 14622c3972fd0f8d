package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
)

type MockAccessRequestRepository struct {
	mock.Mock
}

func (m *MockAccessRequestRepository) Create(ctx context.Context, req *model.AccessRequest) (*model.AccessRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) FindByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) FindPending(ctx context.Context, userID, roomID, folderID string) (*model.AccessRequest, error) {
	args := m.Called(ctx, userID, roomID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) ListPending(ctx context.Context, roomID string) ([]model.AccessRequest, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) Approve(ctx context.Context, req *model.AccessRequest, access *model.RoomAccess) error {
	args := m.Called(ctx, req, access)
	return args.Error(0)
}

func (m *MockAccessRequestRepository) Deny(ctx context.Context, req *model.AccessRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
