package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dataroom/internal/logger"
	"dataroom/internal/model"
	"dataroom/internal/repository"
)

type gatewayFixture struct {
	*resolverFixture
	gateway  ContentGateway
	renderer *fakeRenderer
	audit    *memAuditRepo
}

func newGatewayFixture(role model.Role, room *model.Room) *gatewayFixture {
	rf := newResolverFixture()
	f := &gatewayFixture{resolverFixture: rf, renderer: &fakeRenderer{}, audit: &memAuditRepo{}}
	log := logger.Discard()
	trail := NewAuditTrail(f.audit, rf.resolver, log)
	f.gateway = NewContentGateway(rf.docs, rf.rooms, rf.resolver, f.renderer, trail, log)

	file := &model.File{ID: "file-1", RoomID: "room-1", Name: "cap-table.pdf", ContentType: "application/pdf"}
	rf.docs.On("FindFile", mock.Anything, "file-1").Return(file, nil)
	rf.docs.On("FindFile", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	rf.rooms.On("FindByID", mock.Anything, "room-1").Return(room, nil)
	if role != "" {
		rf.access.On("Find", mock.Anything, "u-1", "room-1").Return(accessFor(role), nil)
	} else {
		rf.access.On("Find", mock.Anything, "u-1", "room-1").Return(nil, repository.ErrNotFound)
	}
	return f
}

var viewer = model.Identity{UserID: "u-1", Email: "ada@example.com", Name: "Ada"}

func TestGateway_ViewerCannotDownload(t *testing.T) {
	f := newGatewayFixture(model.RoleViewer, openRoom())

	_, err := f.gateway.DownloadFile(context.Background(), viewer, "file-1", model.RequestMeta{IP: "203.0.113.7"})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, f.renderer.count())

	events := f.audit.byAction(model.AuditDownload)
	require.Len(t, events, 1)
	assert.Equal(t, model.OutcomeDenied, events[0].Outcome)
	assert.Equal(t, reasonDownloadNotAllowed, events[0].Details["reason"])
	assert.Equal(t, "room-1", events[0].RoomID)
}

func TestGateway_ViewFile(t *testing.T) {
	room := openRoom()
	room.WatermarkEnabled = true
	room.AllowDownload = false
	f := newGatewayFixture(model.RoleContributor, room)

	view, err := f.gateway.ViewFile(context.Background(), viewer, "file-1", model.RequestMeta{IP: "203.0.113.7"})

	require.NoError(t, err)
	assert.True(t, view.Watermarked)
	assert.False(t, view.CanDownload)
	assert.True(t, view.CanPrint)
	assert.Equal(t, "https://objects.example.com/file-1", view.PointerURL)

	require.Equal(t, 1, f.renderer.count())
	req := f.renderer.requests[0]
	assert.Equal(t, "Ada", req.Viewer.Name)
	assert.Equal(t, "203.0.113.7", req.Viewer.IP)
	assert.False(t, req.Download)

	events := f.audit.byAction(model.AuditView)
	require.Len(t, events, 1)
	assert.Equal(t, model.OutcomeSuccess, events[0].Outcome)
}

func TestGateway_DownloadAllowed(t *testing.T) {
	f := newGatewayFixture(model.RoleContributor, openRoom())

	view, err := f.gateway.DownloadFile(context.Background(), viewer, "file-1", model.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, view.CanDownload)
	assert.True(t, f.renderer.requests[0].Download)
	assert.Len(t, f.audit.byAction(model.AuditDownload), 1)
}

func TestGateway_DenialsLookAlike(t *testing.T) {
	t.Run("no access", func(t *testing.T) {
		f := newGatewayFixture("", openRoom())
		_, err := f.gateway.ViewFile(context.Background(), viewer, "file-1", model.RequestMeta{})
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, "permission denied", err.Error())
	})

	t.Run("unknown file", func(t *testing.T) {
		f := newGatewayFixture(model.RoleViewer, openRoom())
		_, err := f.gateway.ViewFile(context.Background(), viewer, "missing", model.RequestMeta{})
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, "permission denied", err.Error())

		events := f.audit.byAction(model.AuditView)
		require.Len(t, events, 1)
		assert.Equal(t, reasonFileNotFound, events[0].Details["reason"])
	})
}

func TestGateway_AuditFailureFailsView(t *testing.T) {
	f := newGatewayFixture(model.RoleViewer, openRoom())
	f.audit.insertErr = errBoom

	view, err := f.gateway.ViewFile(context.Background(), viewer, "file-1", model.RequestMeta{})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, errBoom)
}

func TestGateway_Capabilities(t *testing.T) {
	f := newGatewayFixture(model.RoleAuditor, openRoom())

	caps, err := f.gateway.Capabilities(context.Background(), viewer, "room-1", "", model.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, caps.ViewAudit)
	assert.False(t, caps.Download)
	assert.Zero(t, f.audit.count())
}
