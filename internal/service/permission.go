package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"dataroom/internal/metrics"
	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// Scope narrows a resolution to a folder or a file. The zero Scope means the whole room.
type Scope struct {
	FolderID string
	FileID   string
}

// PermissionResolver computes effective capabilities. Every call reads current state; nothing is cached.
type PermissionResolver interface {
	// Resolve returns the capabilities of userID in roomID for scope, evaluated against meta.
	// A full denial is a zero-capability result with DenyReason set, not an error.
	Resolve(ctx context.Context, userID, roomID string, scope Scope, meta model.RequestMeta) (model.EffectiveCapabilities, error)
}

type permissionResolver struct {
	rooms   repository.RoomRepository
	access  repository.AccessRepository
	docs    repository.DocumentRepository
	rules   repository.FolderRuleRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewPermissionResolver(
	rooms repository.RoomRepository,
	access repository.AccessRepository,
	docs repository.DocumentRepository,
	rules repository.FolderRuleRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) PermissionResolver {
	return &permissionResolver{
		rooms:   rooms,
		access:  access,
		docs:    docs,
		rules:   rules,
		metrics: m,
		logger:  logger.With(slog.String("component", "permission")),
		now:     time.Now,
	}
}

func (r *permissionResolver) Resolve(ctx context.Context, userID, roomID string, scope Scope, meta model.RequestMeta) (model.EffectiveCapabilities, error) {
	now := r.now()

	room, err := r.rooms.FindByID(ctx, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return r.none(ctx, userID, roomID, reasonRoomMissing), nil
	}
	if err != nil {
		return model.EffectiveCapabilities{}, fmt.Errorf("load room: %w", err)
	}
	if room.Status != model.RoomStatusActive {
		return r.none(ctx, userID, roomID, reasonRoomInactive), nil
	}
	if !room.Open(now) {
		return r.none(ctx, userID, roomID, reasonRoomExpired), nil
	}

	access, err := r.access.Find(ctx, userID, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return r.none(ctx, userID, roomID, reasonNoAccess), nil
	}
	if err != nil {
		return model.EffectiveCapabilities{}, fmt.Errorf("load room access: %w", err)
	}
	if !access.CanView {
		return r.none(ctx, userID, roomID, reasonViewDisabled), nil
	}
	if reason := restrictionViolation(access, meta, now); reason != "" {
		return r.none(ctx, userID, roomID, reason), nil
	}

	caps := model.EffectiveCapabilities{
		Role:         access.Role,
		View:         access.CanView,
		Download:     access.CanDownload && room.AllowDownload,
		Print:        access.CanPrint && room.AllowPrint,
		CopyPaste:    room.AllowCopyPaste,
		Upload:       access.CanUpload,
		Edit:         access.CanEdit,
		Invite:       access.CanInvite,
		ManageQA:     access.CanManageQA,
		ViewAudit:    access.CanViewAudit,
		ManageUsers:  access.CanManageUsers,
		ManageGroups: access.CanManageGroups,
		ManageRoom:   access.CanManageRoom,
		Watermark:    room.WatermarkEnabled,
	}

	folderID, err := r.scopeFolder(ctx, roomID, scope)
	if errors.Is(err, repository.ErrNotFound) {
		return r.none(ctx, userID, roomID, reasonScopeNotFound), nil
	}
	if err != nil {
		return model.EffectiveCapabilities{}, err
	}

	if folderID != "" && access.Role != model.RoleRoomOwner {
		rules, err := r.rules.RulesOnPath(ctx, userID, folderID)
		if err != nil {
			return model.EffectiveCapabilities{}, fmt.Errorf("load folder rules: %w", err)
		}
		applyFolderRules(&caps, rules)
	}

	if access.Role == model.RoleAuditor {
		caps.Download = false
		caps.Print = false
		caps.Watermark = true
	}

	if !caps.View {
		return r.none(ctx, userID, roomID, reasonFolderViewDenied), nil
	}
	return caps, nil
}

// scopeFolder returns the folder a scope is evaluated in. A scope outside roomID is reported as not found.
func (r *permissionResolver) scopeFolder(ctx context.Context, roomID string, scope Scope) (string, error) {
	switch {
	case scope.FileID != "":
		f, err := r.docs.FindFile(ctx, scope.FileID)
		if err != nil {
			return "", err
		}
		if f.RoomID != roomID {
			return "", repository.ErrNotFound
		}
		return f.FolderID, nil
	case scope.FolderID != "":
		f, err := r.docs.FindFolder(ctx, scope.FolderID)
		if err != nil {
			return "", err
		}
		if f.RoomID != roomID {
			return "", repository.ErrNotFound
		}
		return f.ID, nil
	}
	return "", nil
}

func (r *permissionResolver) none(ctx context.Context, userID, roomID, reason string) model.EffectiveCapabilities {
	r.metrics.Denied(reason)
	r.logger.InfoContext(ctx, "capabilities_denied",
		slog.String("user_id", userID),
		slog.String("room_id", roomID),
		slog.String("reason", reason),
	)
	return model.EffectiveCapabilities{DenyReason: reason}
}

// applyFolderRules AND-s every non-nil flag of every rule into caps. A nil flag inherits.
func applyFolderRules(caps *model.EffectiveCapabilities, rules []model.FolderPermission) {
	and := func(dst *bool, flag *bool) {
		if flag != nil {
			*dst = *dst && *flag
		}
	}
	for _, rule := range rules {
		and(&caps.View, rule.CanView)
		and(&caps.Download, rule.CanDownload)
		and(&caps.Print, rule.CanPrint)
		and(&caps.Upload, rule.CanUpload)
		and(&caps.Edit, rule.CanEdit)
	}
}

// restrictionViolation checks expiry, IP allow-list and country allow-list, in that order.
func restrictionViolation(a *model.RoomAccess, meta model.RequestMeta, now time.Time) string {
	if a.ExpiresAt != nil && !now.Before(*a.ExpiresAt) {
		return reasonAccessExpired
	}
	if len(a.IPWhitelist) > 0 && !ipAllowed(a.IPWhitelist, meta.IP) {
		return reasonIPNotAllowed
	}
	if len(a.AllowedCountries) > 0 && !countryAllowed(a.AllowedCountries, meta.Country) {
		return reasonCountryNotAllowed
	}
	return ""
}

// ipAllowed matches ip against exact addresses and CIDR prefixes. An unparsable ip never matches.
func ipAllowed(list []string, ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err == nil && prefix.Contains(addr) {
				return true
			}
			continue
		}
		allowed, err := netip.ParseAddr(entry)
		if err == nil && allowed.Unmap() == addr {
			return true
		}
	}
	return false
}

// countryAllowed compares ISO 3166-1 alpha-2 codes case-insensitively. An unknown country never matches.
func countryAllowed(list []string, country string) bool {
	country = strings.TrimSpace(country)
	if country == "" {
		return false
	}
	for _, c := range list {
		if strings.EqualFold(strings.TrimSpace(c), country) {
			return true
		}
	}
	return false
}
