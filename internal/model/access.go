package model

import (
	"strings"
	"time"
)

// Role is the tagged role of a user inside one room.
type Role string

const (
	RoleRoomOwner   Role = "ROOM_OWNER"
	RoleAdmin       Role = "ADMIN"
	RoleContributor Role = "CONTRIBUTOR"
	RoleViewer      Role = "VIEWER"
	RoleAuditor     Role = "AUDITOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := RoleDefaults[r]
	return ok
}

var roleRank = map[Role]int{
	RoleViewer:      1,
	RoleAuditor:     2,
	RoleContributor: 3,
	RoleAdmin:       4,
	RoleRoomOwner:   5,
}

// Higher returns whichever of r and other carries more authority.
func (r Role) Higher(other Role) Role {
	if roleRank[other] > roleRank[r] {
		return other
	}
	return r
}

// ParseRole converts user input into a Role, accepting any letter case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Capabilities is the explicit capability record stored per RoomAccess row.
type Capabilities struct {
	CanView         bool `json:"can_view"`
	CanDownload     bool `json:"can_download"`
	CanPrint        bool `json:"can_print"`
	CanUpload       bool `json:"can_upload"`
	CanEdit         bool `json:"can_edit"`
	CanInvite       bool `json:"can_invite"`
	CanManageQA     bool `json:"can_manage_qa"`
	CanViewAudit    bool `json:"can_view_audit"`
	CanManageUsers  bool `json:"can_manage_users"`
	CanManageGroups bool `json:"can_manage_groups"`
	CanManageRoom   bool `json:"can_manage_room"`
}

// Union returns the flags set in either c or o.
func (c Capabilities) Union(o Capabilities) Capabilities {
	return Capabilities{
		CanView:         c.CanView || o.CanView,
		CanDownload:     c.CanDownload || o.CanDownload,
		CanPrint:        c.CanPrint || o.CanPrint,
		CanUpload:       c.CanUpload || o.CanUpload,
		CanEdit:         c.CanEdit || o.CanEdit,
		CanInvite:       c.CanInvite || o.CanInvite,
		CanManageQA:     c.CanManageQA || o.CanManageQA,
		CanViewAudit:    c.CanViewAudit || o.CanViewAudit,
		CanManageUsers:  c.CanManageUsers || o.CanManageUsers,
		CanManageGroups: c.CanManageGroups || o.CanManageGroups,
		CanManageRoom:   c.CanManageRoom || o.CanManageRoom,
	}
}

// RoleDefaults seeds the capability flags of a RoomAccess row created for a role.
// Stored flags may later be overridden individually; this table is the only place
// role semantics are spelled out.
var RoleDefaults = map[Role]Capabilities{
	RoleRoomOwner: {
		CanView: true, CanDownload: true, CanPrint: true, CanUpload: true, CanEdit: true,
		CanInvite: true, CanManageQA: true, CanViewAudit: true,
		CanManageUsers: true, CanManageGroups: true, CanManageRoom: true,
	},
	RoleAdmin: {
		CanView: true, CanDownload: true, CanPrint: true, CanUpload: true, CanEdit: true,
		CanInvite: true, CanManageQA: true, CanViewAudit: true,
		CanManageUsers: true, CanManageGroups: true,
	},
	RoleContributor: {
		CanView: true, CanDownload: true, CanPrint: true, CanUpload: true, CanEdit: true,
	},
	RoleViewer: {
		CanView: true,
	},
	RoleAuditor: {
		CanView: true, CanViewAudit: true,
	},
}

// RoomAccess binds one user to one room.
type RoomAccess struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	RoomID string `json:"room_id"`
	Role   Role   `json:"role"`
	Capabilities
	IPWhitelist      []string   `json:"ip_whitelist,omitempty"`
	AllowedCountries []string   `json:"allowed_countries,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FolderPermission narrows capabilities for a user or a group on a folder subtree.
// A nil flag inherits the value from above.
type FolderPermission struct {
	ID          string `json:"id"`
	FolderID    string `json:"folder_id"`
	UserID      string `json:"user_id,omitempty"`
	GroupID     string `json:"group_id,omitempty"`
	CanView     *bool  `json:"can_view,omitempty"`
	CanDownload *bool  `json:"can_download,omitempty"`
	CanPrint    *bool  `json:"can_print,omitempty"`
	CanUpload   *bool  `json:"can_upload,omitempty"`
	CanEdit     *bool  `json:"can_edit,omitempty"`
}

// EffectiveCapabilities is the final decision for one (user, room, scope) tuple.
type EffectiveCapabilities struct {
	Role         Role `json:"role,omitempty"`
	View         bool `json:"view"`
	Download     bool `json:"download"`
	Print        bool `json:"print"`
	CopyPaste    bool `json:"copy_paste"`
	Upload       bool `json:"upload"`
	Edit         bool `json:"edit"`
	Invite       bool `json:"invite"`
	ManageQA     bool `json:"manage_qa"`
	ViewAudit    bool `json:"view_audit"`
	ManageUsers  bool `json:"manage_users"`
	ManageGroups bool `json:"manage_groups"`
	ManageRoom   bool `json:"manage_room"`
	Watermark    bool `json:"watermark"`

	// DenyReason is the internal cause of a full denial. It never leaves the service layer.
	DenyReason string `json:"-"`
}

// CanManage reports room-management capability (user or room administration).
func (c EffectiveCapabilities) CanManage() bool {
	return c.View && (c.ManageUsers || c.ManageRoom)
}

// Identity is an authenticated principal.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// DisplayName returns the name to stamp on rendered content.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// RequestMeta is the request context restrictions and audit events are evaluated against.
type RequestMeta struct {
	IP        string
	Country   string
	UserAgent string
	RequestID string
}
