package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

type MockAccessRepository struct {
	mock.Mock
}

func (m *MockAccessRepository) Find(ctx context.Context, userID, roomID string) (*model.RoomAccess, error) {
	args := m.Called(ctx, userID, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoomAccess), args.Error(1)
}

func (m *MockAccessRepository) ListManagerIDs(ctx context.Context, roomID string) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockFolderRuleRepository struct {
	mock.Mock
}

func (m *MockFolderRuleRepository) RulesOnPath(ctx context.Context, userID, folderID string) ([]model.FolderPermission, error) {
	args := m.Called(ctx, userID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FolderPermission), args.Error(1)
}
