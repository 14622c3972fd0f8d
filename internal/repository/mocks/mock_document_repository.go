package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindFile(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockDocumentRepository) FindFolder(ctx context.Context, id string) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockDocumentRepository) FolderPath(ctx context.Context, folderID string) ([]model.Folder, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockDocumentRepository) ListSubtreeFiles(ctx context.Context, folderID string, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	args := m.Called(ctx, folderID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.File]), args.Error(1)
}
