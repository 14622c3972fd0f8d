package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dataroom/internal/model"
	"dataroom/internal/service"
)

type MockShareLinkService struct {
	mock.Mock
}

func (m *MockShareLinkService) Issue(ctx context.Context, creator model.Identity, req service.IssueRequest, meta model.RequestMeta) (*service.IssuedLink, error) {
	args := m.Called(ctx, creator, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedLink), args.Error(1)
}

func (m *MockShareLinkService) Consume(ctx context.Context, req service.ConsumeRequest) (*service.ConsumeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConsumeResult), args.Error(1)
}

func (m *MockShareLinkService) OpenSharedFile(ctx context.Context, req service.ConsumeRequest, fileID string) (*service.ConsumeResult, error) {
	args := m.Called(ctx, req, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConsumeResult), args.Error(1)
}

func (m *MockShareLinkService) Revoke(ctx context.Context, actor model.Identity, linkID string, meta model.RequestMeta) error {
	args := m.Called(ctx, actor, linkID, meta)
	return args.Error(0)
}

func (m *MockShareLinkService) List(ctx context.Context, actor model.Identity, targetType model.TargetType, targetID string, meta model.RequestMeta) ([]model.ShareLink, error) {
	args := m.Called(ctx, actor, targetType, targetID, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareLink), args.Error(1)
}
