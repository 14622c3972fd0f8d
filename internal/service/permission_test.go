package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dataroom/internal/logger"
	"dataroom/internal/metrics"
	"dataroom/internal/model"
	"dataroom/internal/repository"
	repomocks "dataroom/internal/repository/mocks"
)

type resolverFixture struct {
	resolver *permissionResolver
	rooms    *repomocks.MockRoomRepository
	access   *repomocks.MockAccessRepository
	docs     *repomocks.MockDocumentRepository
	rules    *repomocks.MockFolderRuleRepository
}

func newResolverFixture() *resolverFixture {
	f := &resolverFixture{
		rooms:  new(repomocks.MockRoomRepository),
		access: new(repomocks.MockAccessRepository),
		docs:   new(repomocks.MockDocumentRepository),
		rules:  new(repomocks.MockFolderRuleRepository),
	}
	r := NewPermissionResolver(f.rooms, f.access, f.docs, f.rules, metrics.Discard(), logger.Discard())
	f.resolver = r.(*permissionResolver)
	f.resolver.now = fixedClock
	return f
}

func openRoom() *model.Room {
	return &model.Room{
		ID:               "room-1",
		Name:             "Project Falcon",
		Status:           model.RoomStatusActive,
		AllowDownload:    true,
		AllowPrint:       true,
		AllowCopyPaste:   true,
		WatermarkEnabled: false,
	}
}

func accessFor(role model.Role) *model.RoomAccess {
	return &model.RoomAccess{ID: "acc-1", UserID: "u-1", RoomID: "room-1", Role: role, Capabilities: model.RoleDefaults[role]}
}

func flag(b bool) *bool { return &b }

func TestResolve_RoleDefaultsBoundedByRoomPolicy(t *testing.T) {
	for role, defaults := range model.RoleDefaults {
		t.Run(string(role), func(t *testing.T) {
			f := newResolverFixture()
			room := openRoom()
			room.AllowDownload = false
			room.AllowPrint = false
			f.rooms.On("FindByID", mock.Anything, "room-1").Return(room, nil)
			f.access.On("Find", mock.Anything, "u-1", "room-1").Return(accessFor(role), nil)

			caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{}, model.RequestMeta{})

			require.NoError(t, err)
			assert.True(t, caps.View)
			assert.False(t, caps.Download, "room forbids download")
			assert.False(t, caps.Print, "room forbids print")
			assert.Equal(t, defaults.CanUpload, caps.Upload)
			assert.Equal(t, defaults.CanInvite, caps.Invite)
			assert.Equal(t, defaults.CanManageRoom, caps.ManageRoom)
			assert.Equal(t, role, caps.Role)
		})
	}
}

func TestResolve_AuditorNeverDownloadsAndAlwaysWatermarks(t *testing.T) {
	f := newResolverFixture()
	f.rooms.On("FindByID", mock.Anything, "room-1").Return(openRoom(), nil)
	acc := accessFor(model.RoleAuditor)
	acc.CanDownload = true
	acc.CanPrint = true
	f.access.On("Find", mock.Anything, "u-1", "room-1").Return(acc, nil)

	caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{}, model.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, caps.View)
	assert.True(t, caps.ViewAudit)
	assert.False(t, caps.Download)
	assert.False(t, caps.Print)
	assert.True(t, caps.Watermark)
}

func TestResolve_FullDenials(t *testing.T) {
	past := testNow.Add(-time.Minute)

	tests := []struct {
		name       string
		room       *model.Room
		roomErr    error
		access     *model.RoomAccess
		accessErr  error
		meta       model.RequestMeta
		wantReason string
	}{
		{name: "room missing", roomErr: repository.ErrNotFound, wantReason: reasonRoomMissing},
		{
			name:       "room archived",
			room:       &model.Room{ID: "room-1", Status: model.RoomStatusArchived},
			wantReason: reasonRoomInactive,
		},
		{
			name:       "room expired",
			room:       &model.Room{ID: "room-1", Status: model.RoomStatusActive, ExpiresAt: &past},
			wantReason: reasonRoomExpired,
		},
		{name: "no binding", room: openRoom(), accessErr: repository.ErrNotFound, wantReason: reasonNoAccess},
		{
			name: "view disabled",
			room: openRoom(),
			access: func() *model.RoomAccess {
				a := accessFor(model.RoleAdmin)
				a.CanView = false
				return a
			}(),
			wantReason: reasonViewDisabled,
		},
		{
			name: "binding expired",
			room: openRoom(),
			access: func() *model.RoomAccess {
				a := accessFor(model.RoleViewer)
				a.ExpiresAt = &past
				return a
			}(),
			wantReason: reasonAccessExpired,
		},
		{
			name: "ip outside allow-list",
			room: openRoom(),
			access: func() *model.RoomAccess {
				a := accessFor(model.RoleViewer)
				a.IPWhitelist = []string{"10.0.0.0/8"}
				return a
			}(),
			meta:       model.RequestMeta{IP: "192.0.2.10"},
			wantReason: reasonIPNotAllowed,
		},
		{
			name: "country outside allow-list",
			room: openRoom(),
			access: func() *model.RoomAccess {
				a := accessFor(model.RoleViewer)
				a.AllowedCountries = []string{"DE", "FR"}
				return a
			}(),
			meta:       model.RequestMeta{Country: "US"},
			wantReason: reasonCountryNotAllowed,
		},
		{
			name: "unknown country fails closed",
			room: openRoom(),
			access: func() *model.RoomAccess {
				a := accessFor(model.RoleViewer)
				a.AllowedCountries = []string{"DE"}
				return a
			}(),
			wantReason: reasonCountryNotAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResolverFixture()
			f.rooms.On("FindByID", mock.Anything, "room-1").Return(tt.room, tt.roomErr)
			f.access.On("Find", mock.Anything, "u-1", "room-1").Return(tt.access, tt.accessErr).Maybe()

			caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{}, tt.meta)

			require.NoError(t, err)
			assert.Equal(t, model.EffectiveCapabilities{DenyReason: tt.wantReason}, caps)
		})
	}
}

func TestResolve_RestrictionsPass(t *testing.T) {
	f := newResolverFixture()
	f.rooms.On("FindByID", mock.Anything, "room-1").Return(openRoom(), nil)
	acc := accessFor(model.RoleContributor)
	acc.IPWhitelist = []string{"203.0.113.7", "10.0.0.0/8"}
	acc.AllowedCountries = []string{"de"}
	acc.ExpiresAt = timePtr(testNow.Add(time.Hour))
	f.access.On("Find", mock.Anything, "u-1", "room-1").Return(acc, nil)

	caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{}, model.RequestMeta{IP: "10.20.30.40", Country: "DE"})

	require.NoError(t, err)
	assert.True(t, caps.View)
	assert.True(t, caps.Download)
}

func TestResolve_FolderRulesNarrow(t *testing.T) {
	file := &model.File{ID: "file-1", RoomID: "room-1", FolderID: "folder-2"}

	tests := []struct {
		name     string
		role     model.Role
		rules    []model.FolderPermission
		wantView bool
		wantDL   bool
	}{
		{
			name:     "no rules inherit",
			role:     model.RoleContributor,
			wantView: true,
			wantDL:   true,
		},
		{
			name: "group rule removes download",
			role: model.RoleContributor,
			rules: []model.FolderPermission{
				{FolderID: "folder-1", GroupID: "g-1", CanDownload: flag(false)},
			},
			wantView: true,
		},
		{
			name: "grant never widens",
			role: model.RoleViewer,
			rules: []model.FolderPermission{
				{FolderID: "folder-2", UserID: "u-1", CanDownload: flag(true)},
			},
			wantView: true,
		},
		{
			name: "view removed denies everything",
			role: model.RoleAdmin,
			rules: []model.FolderPermission{
				{FolderID: "folder-1", UserID: "u-1", CanView: flag(false)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResolverFixture()
			f.rooms.On("FindByID", mock.Anything, "room-1").Return(openRoom(), nil)
			f.access.On("Find", mock.Anything, "u-1", "room-1").Return(accessFor(tt.role), nil)
			f.docs.On("FindFile", mock.Anything, "file-1").Return(file, nil)
			f.rules.On("RulesOnPath", mock.Anything, "u-1", "folder-2").Return(tt.rules, nil)

			caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{FileID: "file-1"}, model.RequestMeta{})

			require.NoError(t, err)
			assert.Equal(t, tt.wantView, caps.View)
			assert.Equal(t, tt.wantDL, caps.Download)
			if !tt.wantView {
				assert.Equal(t, reasonFolderViewDenied, caps.DenyReason)
				assert.False(t, caps.ManageUsers)
			}
		})
	}
}

func TestResolve_OwnerSkipsFolderRules(t *testing.T) {
	f := newResolverFixture()
	f.rooms.On("FindByID", mock.Anything, "room-1").Return(openRoom(), nil)
	f.access.On("Find", mock.Anything, "u-1", "room-1").Return(accessFor(model.RoleRoomOwner), nil)
	f.docs.On("FindFolder", mock.Anything, "folder-1").Return(&model.Folder{ID: "folder-1", RoomID: "room-1"}, nil)

	caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{FolderID: "folder-1"}, model.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, caps.View)
	assert.True(t, caps.ManageRoom)
	f.rules.AssertNotCalled(t, "RulesOnPath", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_ScopeInOtherRoom(t *testing.T) {
	f := newResolverFixture()
	f.rooms.On("FindByID", mock.Anything, "room-1").Return(openRoom(), nil)
	f.access.On("Find", mock.Anything, "u-1", "room-1").Return(accessFor(model.RoleAdmin), nil)
	f.docs.On("FindFile", mock.Anything, "file-x").Return(&model.File{ID: "file-x", RoomID: "room-2"}, nil)

	caps, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{FileID: "file-x"}, model.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, reasonScopeNotFound, caps.DenyReason)
	assert.False(t, caps.View)
}

func TestResolve_RepositoryErrorPropagates(t *testing.T) {
	f := newResolverFixture()
	f.rooms.On("FindByID", mock.Anything, "room-1").Return(nil, errBoom)

	_, err := f.resolver.Resolve(context.Background(), "u-1", "room-1", Scope{}, model.RequestMeta{})

	assert.ErrorIs(t, err, errBoom)
}

func TestIPAllowed(t *testing.T) {
	tests := []struct {
		name string
		list []string
		ip   string
		want bool
	}{
		{name: "exact", list: []string{"203.0.113.7"}, ip: "203.0.113.7", want: true},
		{name: "cidr", list: []string{"198.51.100.0/24"}, ip: "198.51.100.200", want: true},
		{name: "mapped ipv6", list: []string{"203.0.113.7"}, ip: "::ffff:203.0.113.7", want: true},
		{name: "ipv6 cidr", list: []string{"2001:db8::/32"}, ip: "2001:db8::1", want: true},
		{name: "miss", list: []string{"198.51.100.0/24"}, ip: "198.51.101.1"},
		{name: "unparsable ip", list: []string{"0.0.0.0/0"}, ip: "not-an-ip"},
		{name: "empty ip", list: []string{"0.0.0.0/0"}, ip: ""},
		{name: "garbage entry", list: []string{"nonsense"}, ip: "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ipAllowed(tt.list, tt.ip))
		})
	}
}

func TestCountryAllowed(t *testing.T) {
	assert.True(t, countryAllowed([]string{"DE", "fr"}, "FR"))
	assert.False(t, countryAllowed([]string{"DE"}, "US"))
	assert.False(t, countryAllowed([]string{"DE"}, ""))
}
