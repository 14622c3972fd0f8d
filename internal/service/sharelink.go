package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"dataroom/internal/config"
	"dataroom/internal/metrics"
	"dataroom/internal/model"
	"dataroom/internal/notify"
	"dataroom/internal/repository"
	"dataroom/internal/throttle"
)

const (
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	tokenAttempts    = 3
	folderPageSize   = 500
)

// IssueRequest describes a new share link.
type IssueRequest struct {
	TargetType     model.TargetType `json:"target_type"`
	TargetID       string           `json:"target_id"`
	RecipientEmail string           `json:"recipient_email,omitempty"`
	RecipientName  string           `json:"recipient_name,omitempty"`
	Message        string           `json:"message,omitempty"`
	MaxViews       *int             `json:"max_views,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	Password       string           `json:"password,omitempty"`
	AllowDownload  bool             `json:"allow_download"`
	AllowPrint     bool             `json:"allow_print"`
	RequireAuth    bool             `json:"require_auth"`
}

// IssuedLink is returned once; the token is not retrievable afterwards.
type IssuedLink struct {
	ShareID  string           `json:"share_id"`
	Token    string           `json:"token"`
	ShareURL string           `json:"share_url"`
	Link     *model.ShareLink `json:"link"`
}

// ConsumeRequest is one redemption attempt. Requester is nil for anonymous callers.
type ConsumeRequest struct {
	Token     string
	Password  string
	Requester *model.Identity
	Meta      model.RequestMeta
	// Malformed marks a redemption whose body could not be read. It is refused and audited.
	Malformed bool
}

// ConsumeResult carries the frozen link permissions and a pointer to the shared content.
type ConsumeResult struct {
	ShareID       string           `json:"share_id"`
	TargetType    model.TargetType `json:"target_type"`
	AllowDownload bool             `json:"allow_download"`
	AllowPrint    bool             `json:"allow_print"`
	File          *model.File      `json:"file,omitempty"`
	Content       *Rendition       `json:"content,omitempty"`
	Folder        *model.Folder    `json:"folder,omitempty"`
	Files         []model.File     `json:"files,omitempty"`
	TotalFiles    int              `json:"total_files,omitempty"`
}

// ShareLinkService issues, redeems and revokes bearer links to one file or one folder.
type ShareLinkService interface {
	Issue(ctx context.Context, creator model.Identity, req IssueRequest, meta model.RequestMeta) (*IssuedLink, error)
	// Consume redeems one view. Every failure is the generic ErrLinkInvalid.
	Consume(ctx context.Context, req ConsumeRequest) (*ConsumeResult, error)
	// OpenSharedFile opens one file below a folder link and consumes one view.
	OpenSharedFile(ctx context.Context, req ConsumeRequest, fileID string) (*ConsumeResult, error)
	Revoke(ctx context.Context, actor model.Identity, linkID string, meta model.RequestMeta) error
	List(ctx context.Context, actor model.Identity, targetType model.TargetType, targetID string, meta model.RequestMeta) ([]model.ShareLink, error)
}

type shareLinkService struct {
	links    repository.ShareLinkRepository
	docs     repository.DocumentRepository
	rooms    repository.RoomRepository
	resolver PermissionResolver
	renderer WatermarkRenderer
	audit    AuditTrail
	limiter  throttle.Limiter
	notifier notify.Notifier
	cfg      config.ShareConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewShareLinkService(
	links repository.ShareLinkRepository,
	docs repository.DocumentRepository,
	rooms repository.RoomRepository,
	resolver PermissionResolver,
	renderer WatermarkRenderer,
	audit AuditTrail,
	limiter throttle.Limiter,
	notifier notify.Notifier,
	cfg config.ShareConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) ShareLinkService {
	return &shareLinkService{
		links:    links,
		docs:     docs,
		rooms:    rooms,
		resolver: resolver,
		renderer: renderer,
		audit:    audit,
		limiter:  limiter,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
		logger:   logger.With(slog.String("component", "sharelink")),
		now:      time.Now,
	}
}

func (s *shareLinkService) Issue(ctx context.Context, creator model.Identity, req IssueRequest, meta model.RequestMeta) (*IssuedLink, error) {
	if err := s.validateIssue(req); err != nil {
		return nil, err
	}

	ev := withMeta(model.AuditEvent{
		ActorID:      creator.UserID,
		Action:       model.AuditShareLinkIssued,
		ResourceType: model.ResourceShareLink,
		ResourceID:   string(req.TargetType) + ":" + req.TargetID,
	}, meta)

	issued, err := Audited(ctx, s.audit, s.logger, ev, func(ev *model.AuditEvent) (*IssuedLink, error) {
		roomID, scope, err := s.target(ctx, req.TargetType, req.TargetID)
		if err != nil {
			return nil, err
		}
		ev.RoomID = roomID

		caps, err := s.resolver.Resolve(ctx, creator.UserID, roomID, scope, meta)
		if err != nil {
			return nil, err
		}
		if !caps.View {
			return nil, deny(ErrPermissionDenied, caps.DenyReason)
		}
		if !caps.Invite {
			return nil, deny(ErrPermissionDenied, reasonInviteNotAllowed)
		}

		link := &model.ShareLink{
			ID:             uuid.NewString(),
			TargetType:     req.TargetType,
			TargetID:       req.TargetID,
			RoomID:         roomID,
			CreatedBy:      creator.UserID,
			RecipientEmail: strings.TrimSpace(req.RecipientEmail),
			RecipientName:  strings.TrimSpace(req.RecipientName),
			Message:        req.Message,
			MaxViews:       req.MaxViews,
			ExpiresAt:      req.ExpiresAt,
			AllowDownload:  req.AllowDownload && caps.Download,
			AllowPrint:     req.AllowPrint && caps.Print,
			RequireAuth:    req.RequireAuth,
			CreatedAt:      s.now().UTC(),
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			link.PasswordHash = string(hash)
		}

		created, err := s.create(ctx, link)
		if err != nil {
			return nil, err
		}
		ev.ResourceID = created.ID
		ev.Details = mergeDetails(ev.Details, map[string]any{
			"target_type":    string(created.TargetType),
			"target_id":      created.TargetID,
			"directed":       created.Directed(),
			"max_views":      created.MaxViews,
			"allow_download": created.AllowDownload,
			"allow_print":    created.AllowPrint,
			"require_auth":   created.RequireAuth,
		})

		return &IssuedLink{
			ShareID:  created.ID,
			Token:    created.Token,
			ShareURL: s.shareURL(created),
			Link:     created,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if issued.Link.Directed() {
		s.notify(ctx, notify.Notification{
			Recipients: []string{issued.Link.RecipientEmail},
			Template:   notify.TemplateShareLinkIssued,
			Data: map[string]any{
				"share_url":      issued.ShareURL,
				"recipient_name": issued.Link.RecipientName,
				"sender_name":    creator.DisplayName(),
				"message":        issued.Link.Message,
				"expires_at":     issued.Link.ExpiresAt,
			},
		})
	}
	return issued, nil
}

func (s *shareLinkService) validateIssue(req IssueRequest) error {
	switch req.TargetType {
	case model.TargetFile, model.TargetFolder:
	default:
		return fmt.Errorf("%w: target_type must be FILE or FOLDER", ErrInvalidInput)
	}
	if strings.TrimSpace(req.TargetID) == "" {
		return fmt.Errorf("%w: target_id is required", ErrInvalidInput)
	}
	if req.MaxViews != nil && *req.MaxViews <= 0 {
		return fmt.Errorf("%w: max_views must be positive", ErrInvalidInput)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return fmt.Errorf("%w: expires_at must be in the future", ErrInvalidInput)
	}
	if req.RecipientEmail != "" {
		if _, err := mail.ParseAddress(req.RecipientEmail); err != nil {
			return fmt.Errorf("%w: recipient_email is not a valid address", ErrInvalidInput)
		}
	}
	if len(req.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password exceeds %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}

// target resolves the owning room of a link target. Unknown targets are reported as a denial.
func (s *shareLinkService) target(ctx context.Context, tt model.TargetType, id string) (string, Scope, error) {
	if tt == model.TargetFile {
		f, err := s.docs.FindFile(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return "", Scope{}, deny(ErrPermissionDenied, reasonScopeNotFound)
		}
		if err != nil {
			return "", Scope{}, fmt.Errorf("load file: %w", err)
		}
		return f.RoomID, Scope{FileID: f.ID}, nil
	}
	f, err := s.docs.FindFolder(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", Scope{}, deny(ErrPermissionDenied, reasonScopeNotFound)
	}
	if err != nil {
		return "", Scope{}, fmt.Errorf("load folder: %w", err)
	}
	return f.RoomID, Scope{FolderID: f.ID}, nil
}

// create inserts link with a fresh token, retrying on token collision.
func (s *shareLinkService) create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err := newToken()
		if err != nil {
			return nil, err
		}
		link.Token = token
		created, err := s.links.Create(ctx, link)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create share link: %w", err)
		}
		return created, nil
	}
	return nil, fmt.Errorf("create share link: token collision after %d attempts", tokenAttempts)
}

func (s *shareLinkService) shareURL(l *model.ShareLink) string {
	if l.TargetType == model.TargetFolder {
		return s.cfg.BaseURL + "/shared/folder/" + l.Token
	}
	return s.cfg.BaseURL + "/share/" + l.Token
}

func (s *shareLinkService) Consume(ctx context.Context, req ConsumeRequest) (*ConsumeResult, error) {
	ev := s.linkEvent(model.AuditShareLinkConsumed, req)

	res, err := Audited(ctx, s.audit, s.logger, ev, func(ev *model.AuditEvent) (*ConsumeResult, error) {
		link, room, err := s.validate(ctx, req, ev)
		if err != nil {
			return nil, err
		}

		out := &ConsumeResult{
			ShareID:       link.ID,
			TargetType:    link.TargetType,
			AllowDownload: link.AllowDownload,
			AllowPrint:    link.AllowPrint,
		}
		if link.TargetType == model.TargetFile {
			file, err := s.sharedFile(ctx, link, link.TargetID)
			if err != nil {
				return nil, err
			}
			rendition, err := s.renderer.Render(ctx, s.renderRequest(link, room, file, req))
			if err != nil {
				return nil, err
			}
			out.File = file
			out.Content = rendition
		} else {
			folder, err := s.sharedFolder(ctx, link)
			if err != nil {
				return nil, err
			}
			page, err := s.docs.ListSubtreeFiles(ctx, folder.ID, repository.PageQuery{Limit: folderPageSize})
			if err != nil {
				return nil, fmt.Errorf("list shared folder: %w", err)
			}
			out.Folder = folder
			out.Files = page.Items
			out.TotalFiles = page.Total
		}

		if err := s.spendView(ctx, link, ev); err != nil {
			return nil, err
		}
		return out, nil
	})
	s.metrics.ShareConsumed(consumeOutcome(err))
	return res, err
}

// OpenSharedFile serves one file below a folder link. Every opened file costs one view of the link.
func (s *shareLinkService) OpenSharedFile(ctx context.Context, req ConsumeRequest, fileID string) (*ConsumeResult, error) {
	ev := s.linkEvent(model.AuditShareLinkFileView, req)
	ev.Details = mergeDetails(ev.Details, map[string]any{"file_id": fileID})

	res, err := Audited(ctx, s.audit, s.logger, ev, func(ev *model.AuditEvent) (*ConsumeResult, error) {
		link, room, err := s.validate(ctx, req, ev)
		if err != nil {
			return nil, err
		}
		if link.TargetType != model.TargetFolder {
			return nil, deny(ErrLinkInvalid, reasonWrongLinkType)
		}
		file, err := s.sharedFile(ctx, link, fileID)
		if err != nil {
			return nil, err
		}
		path, err := s.docs.FolderPath(ctx, file.FolderID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load folder path: %w", err)
		}
		if !slices.ContainsFunc(path, func(f model.Folder) bool { return f.ID == link.TargetID }) {
			return nil, deny(ErrLinkInvalid, reasonFileOutsideFolder)
		}

		rendition, err := s.renderer.Render(ctx, s.renderRequest(link, room, file, req))
		if err != nil {
			return nil, err
		}
		if err := s.spendView(ctx, link, ev); err != nil {
			return nil, err
		}
		return &ConsumeResult{
			ShareID:       link.ID,
			TargetType:    link.TargetType,
			AllowDownload: link.AllowDownload,
			AllowPrint:    link.AllowPrint,
			File:          file,
			Content:       rendition,
		}, nil
	})
	s.metrics.ShareConsumed(consumeOutcome(err))
	return res, err
}

// spendView takes one view under the repository's conditional update. It runs after the pointer is
// ready so a failed render never costs a view; a caller losing the race for the last view is denied
// and its rendition is left to the sweeper.
func (s *shareLinkService) spendView(ctx context.Context, link *model.ShareLink, ev *model.AuditEvent) error {
	updated, err := s.links.IncrementViews(ctx, link.ID, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return deny(ErrLinkInvalid, reasonViewLimitReached)
	}
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	ev.Details = mergeDetails(ev.Details, map[string]any{"current_views": updated.CurrentViews})
	return nil
}

// validate runs the fail-closed redemption checks in order and records what it learns on ev.
func (s *shareLinkService) validate(ctx context.Context, req ConsumeRequest, ev *model.AuditEvent) (*model.ShareLink, *model.Room, error) {
	allowed, err := s.limiter.Allow(ctx, throttle.AttemptKey(req.Token, req.Meta.IP))
	if err != nil {
		s.logger.WarnContext(ctx, "share_limiter_unavailable", slog.String("error_message", err.Error()))
	} else if !allowed {
		return nil, nil, deny(ErrLinkInvalid, reasonRateLimited)
	}

	if req.Token == "" {
		return nil, nil, deny(ErrLinkInvalid, reasonLinkNotFound)
	}
	link, err := s.links.FindByToken(ctx, req.Token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, deny(ErrLinkInvalid, reasonLinkNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load share link: %w", err)
	}
	ev.ResourceID = link.ID
	ev.RoomID = link.RoomID
	if req.Malformed {
		return nil, nil, deny(ErrLinkInvalid, reasonMalformedRequest)
	}

	now := s.now()
	if !link.IsActive {
		return nil, nil, deny(ErrLinkInvalid, reasonLinkRevoked)
	}
	if link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
		return nil, nil, deny(ErrLinkInvalid, reasonLinkExpired)
	}
	if link.MaxViews != nil && link.CurrentViews >= *link.MaxViews {
		return nil, nil, deny(ErrLinkInvalid, reasonViewLimitReached)
	}
	if link.HasPassword() {
		if req.Password == "" {
			return nil, nil, deny(ErrLinkInvalid, reasonPasswordRequired)
		}
		if bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(req.Password)) != nil {
			return nil, nil, deny(ErrLinkInvalid, reasonPasswordMismatch)
		}
	}
	if link.RequireAuth {
		if req.Requester == nil || req.Requester.UserID == "" {
			return nil, nil, deny(ErrLinkInvalid, reasonAuthRequired)
		}
		if link.Directed() && !strings.EqualFold(link.RecipientEmail, req.Requester.Email) {
			return nil, nil, deny(ErrLinkInvalid, reasonRecipientMismatch)
		}
	}

	room, err := s.rooms.FindByID(ctx, link.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, deny(ErrLinkInvalid, reasonRoomClosed)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load room: %w", err)
	}
	if !room.Open(now) {
		return nil, nil, deny(ErrLinkInvalid, reasonRoomClosed)
	}
	return link, room, nil
}

func (s *shareLinkService) sharedFile(ctx context.Context, link *model.ShareLink, fileID string) (*model.File, error) {
	f, err := s.docs.FindFile(ctx, fileID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, deny(ErrLinkInvalid, reasonTargetMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	if f.RoomID != link.RoomID {
		return nil, deny(ErrLinkInvalid, reasonTargetMissing)
	}
	return f, nil
}

func (s *shareLinkService) sharedFolder(ctx context.Context, link *model.ShareLink) (*model.Folder, error) {
	f, err := s.docs.FindFolder(ctx, link.TargetID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, deny(ErrLinkInvalid, reasonTargetMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("load folder: %w", err)
	}
	if f.RoomID != link.RoomID {
		return nil, deny(ErrLinkInvalid, reasonTargetMissing)
	}
	return f, nil
}

func (s *shareLinkService) renderRequest(link *model.ShareLink, room *model.Room, file *model.File, req ConsumeRequest) RenderRequest {
	return RenderRequest{
		File:      file,
		Room:      room,
		Viewer:    linkViewer(link, req),
		Watermark: room.WatermarkEnabled,
		Meta:      req.Meta,
	}
}

// linkViewer stamps the authenticated requester, else the named recipient, else the link itself.
func linkViewer(link *model.ShareLink, req ConsumeRequest) Viewer {
	v := Viewer{IP: req.Meta.IP}
	switch {
	case req.Requester != nil && req.Requester.UserID != "":
		v.UserID = req.Requester.UserID
		v.Name = req.Requester.DisplayName()
		v.Email = req.Requester.Email
	case link.Directed():
		v.UserID = "share:" + link.ID
		v.Name = link.RecipientName
		v.Email = link.RecipientEmail
		if v.Name == "" {
			v.Name = link.RecipientEmail
		}
	default:
		v.UserID = "share:" + link.ID
		v.Name = "Shared link"
		v.Email = "share-" + link.ID
	}
	return v
}

func (s *shareLinkService) linkEvent(action model.AuditAction, req ConsumeRequest) model.AuditEvent {
	ev := model.AuditEvent{
		Action:       action,
		ResourceType: model.ResourceShareLink,
		ResourceID:   tokenFingerprint(req.Token),
	}
	if req.Requester != nil {
		ev.ActorID = req.Requester.UserID
	}
	return withMeta(ev, req.Meta)
}

func (s *shareLinkService) Revoke(ctx context.Context, actor model.Identity, linkID string, meta model.RequestMeta) error {
	ev := withMeta(model.AuditEvent{
		ActorID:      actor.UserID,
		Action:       model.AuditShareLinkRevoked,
		ResourceType: model.ResourceShareLink,
		ResourceID:   linkID,
	}, meta)

	_, err := Audited(ctx, s.audit, s.logger, ev, func(ev *model.AuditEvent) (struct{}, error) {
		link, err := s.links.FindByID(ctx, linkID)
		if errors.Is(err, repository.ErrNotFound) {
			return struct{}{}, ErrNotFound
		}
		if err != nil {
			return struct{}{}, fmt.Errorf("load share link: %w", err)
		}
		ev.RoomID = link.RoomID

		if link.CreatedBy != actor.UserID {
			caps, err := s.resolver.Resolve(ctx, actor.UserID, link.RoomID, Scope{}, meta)
			if err != nil {
				return struct{}{}, err
			}
			if !caps.CanManage() {
				return struct{}{}, deny(ErrPermissionDenied, reasonNotCreator)
			}
		}

		if !link.IsActive {
			ev.Details = mergeDetails(ev.Details, map[string]any{"already_inactive": true})
			return struct{}{}, nil
		}
		if err := s.links.Deactivate(ctx, link.ID, actor.UserID, s.now().UTC()); err != nil {
			return struct{}{}, fmt.Errorf("deactivate share link: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (s *shareLinkService) List(ctx context.Context, actor model.Identity, targetType model.TargetType, targetID string, meta model.RequestMeta) ([]model.ShareLink, error) {
	switch targetType {
	case model.TargetFile, model.TargetFolder:
	default:
		return nil, fmt.Errorf("%w: target_type must be FILE or FOLDER", ErrInvalidInput)
	}
	roomID, scope, err := s.target(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	caps, err := s.resolver.Resolve(ctx, actor.UserID, roomID, scope, meta)
	if err != nil {
		return nil, err
	}
	if !caps.View {
		return nil, deny(ErrPermissionDenied, caps.DenyReason)
	}

	createdBy := actor.UserID
	if caps.CanManage() {
		createdBy = ""
	}
	links, err := s.links.ListByTarget(ctx, targetType, targetID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	return links, nil
}

func (s *shareLinkService) notify(ctx context.Context, n notify.Notification) {
	n.CreatedAt = s.now().UTC()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification_failed",
			slog.String("template", n.Template),
			slog.String("error_message", err.Error()),
		)
	}
}

func consumeOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if reason := Reason(err); reason != "" {
		return reason
	}
	return "error"
}

func mergeDetails(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
