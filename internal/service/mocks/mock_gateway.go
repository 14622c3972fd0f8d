package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
	"dataroom/internal/service"
)

type MockContentGateway struct {
	mock.Mock
}

func (m *MockContentGateway) ViewFile(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta) (*service.FileView, error) {
	args := m.Called(ctx, viewer, fileID, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileView), args.Error(1)
}

func (m *MockContentGateway) DownloadFile(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta) (*service.FileView, error) {
	args := m.Called(ctx, viewer, fileID, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileView), args.Error(1)
}

func (m *MockContentGateway) Capabilities(ctx context.Context, viewer model.Identity, roomID, folderID string, meta model.RequestMeta) (model.EffectiveCapabilities, error) {
	args := m.Called(ctx, viewer, roomID, folderID, meta)
	return args.Get(0).(model.EffectiveCapabilities), args.Error(1)
}
