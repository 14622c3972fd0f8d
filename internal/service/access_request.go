package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"dataroom/internal/model"
	"dataroom/internal/notify"
	"dataroom/internal/repository"
)

const maxReasonLength = 2000

// ReviewInput is a reviewer's decision. Role defaults to VIEWER on approval.
type ReviewInput struct {
	Decision model.ReviewDecision `json:"decision"`
	Role     model.Role           `json:"role,omitempty"`
	Note     string               `json:"note,omitempty"`
}

// AccessRequestWorkflow moves access requests from PENDING to APPROVED or DENIED.
type AccessRequestWorkflow interface {
	Create(ctx context.Context, requester model.Identity, roomID, folderID, reason string, meta model.RequestMeta) (*model.AccessRequest, error)
	Review(ctx context.Context, reviewer model.Identity, requestID string, in ReviewInput, meta model.RequestMeta) (*model.AccessRequest, error)
	ListPending(ctx context.Context, reviewer model.Identity, roomID string, meta model.RequestMeta) ([]model.AccessRequest, error)
}

type accessRequestWorkflow struct {
	requests repository.AccessRequestRepository
	rooms    repository.RoomRepository
	access   repository.AccessRepository
	docs     repository.DocumentRepository
	resolver PermissionResolver
	audit    AuditTrail
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewAccessRequestWorkflow(
	requests repository.AccessRequestRepository,
	rooms repository.RoomRepository,
	access repository.AccessRepository,
	docs repository.DocumentRepository,
	resolver PermissionResolver,
	audit AuditTrail,
	notifier notify.Notifier,
	logger *slog.Logger,
) AccessRequestWorkflow {
	return &accessRequestWorkflow{
		requests: requests,
		rooms:    rooms,
		access:   access,
		docs:     docs,
		resolver: resolver,
		audit:    audit,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "access_request")),
		now:      time.Now,
	}
}

func (w *accessRequestWorkflow) Create(ctx context.Context, requester model.Identity, roomID, folderID, reason string, meta model.RequestMeta) (*model.AccessRequest, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("%w: room id is required", ErrInvalidInput)
	}
	if len(reason) > maxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, maxReasonLength)
	}

	ev := withMeta(model.AuditEvent{
		ActorID:      requester.UserID,
		Action:       model.AuditAccessRequested,
		ResourceType: model.ResourceAccessRequest,
		ResourceID:   roomID,
		RoomID:       roomID,
	}, meta)

	created, err := Audited(ctx, w.audit, w.logger, ev, func(ev *model.AuditEvent) (*model.AccessRequest, error) {
		room, err := w.rooms.FindByID(ctx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load room: %w", err)
		}
		if !room.Open(w.now()) {
			return nil, fmt.Errorf("%w: room is not accepting requests", ErrInvalidState)
		}
		if folderID != "" {
			f, err := w.docs.FindFolder(ctx, folderID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && f.RoomID != roomID) {
				return nil, ErrNotFound
			}
			if err != nil {
				return nil, fmt.Errorf("load folder: %w", err)
			}
		}

		caps, err := w.resolver.Resolve(ctx, requester.UserID, roomID, Scope{FolderID: folderID}, meta)
		if err != nil {
			return nil, err
		}
		if caps.View {
			return nil, fmt.Errorf("%w: access already granted", ErrInvalidState)
		}
		if folderID != "" {
			// A member hidden from one folder is blocked by a folder rule, which approval does not touch.
			roomCaps, err := w.resolver.Resolve(ctx, requester.UserID, roomID, Scope{}, meta)
			if err != nil {
				return nil, err
			}
			if roomCaps.View {
				ev.Details = mergeDetails(ev.Details, map[string]any{"folder_id": folderID})
				return nil, fmt.Errorf("%w: folder is restricted by a folder rule; ask a room manager", ErrInvalidState)
			}
		}

		_, err = w.requests.FindPending(ctx, requester.UserID, roomID, folderID)
		if err == nil {
			return nil, ErrDuplicateRequest
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check pending request: %w", err)
		}

		req, err := w.requests.Create(ctx, &model.AccessRequest{
			ID:        uuid.NewString(),
			UserID:    requester.UserID,
			RoomID:    roomID,
			FolderID:  folderID,
			Reason:    strings.TrimSpace(reason),
			Status:    model.AccessRequestPending,
			CreatedAt: w.now().UTC(),
		})
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateRequest
		}
		if err != nil {
			return nil, fmt.Errorf("create access request: %w", err)
		}
		ev.ResourceID = req.ID
		if folderID != "" {
			ev.Details = mergeDetails(ev.Details, map[string]any{"folder_id": folderID})
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	w.notifyManagers(ctx, created, requester)
	return created, nil
}

func (w *accessRequestWorkflow) notifyManagers(ctx context.Context, req *model.AccessRequest, requester model.Identity) {
	managers, err := w.access.ListManagerIDs(ctx, req.RoomID)
	if err != nil {
		w.logger.WarnContext(ctx, "list_managers_failed",
			slog.String("room_id", req.RoomID),
			slog.String("error_message", err.Error()),
		)
		return
	}
	if len(managers) == 0 {
		return
	}
	w.notify(ctx, notify.Notification{
		Recipients: managers,
		Template:   notify.TemplateAccessRequested,
		Data: map[string]any{
			"request_id":     req.ID,
			"room_id":        req.RoomID,
			"folder_id":      req.FolderID,
			"requester_id":   requester.UserID,
			"requester_name": requester.DisplayName(),
			"reason":         req.Reason,
		},
	})
}

func (w *accessRequestWorkflow) Review(ctx context.Context, reviewer model.Identity, requestID string, in ReviewInput, meta model.RequestMeta) (*model.AccessRequest, error) {
	in.Decision = model.ReviewDecision(strings.ToUpper(strings.TrimSpace(string(in.Decision))))
	role, err := reviewRole(in)
	if err != nil {
		return nil, err
	}

	ev := withMeta(model.AuditEvent{
		ActorID:      reviewer.UserID,
		Action:       model.AuditAccessReviewed,
		ResourceType: model.ResourceAccessRequest,
		ResourceID:   requestID,
	}, meta)

	reviewed, err := Audited(ctx, w.audit, w.logger, ev, func(ev *model.AuditEvent) (*model.AccessRequest, error) {
		req, err := w.requests.FindByID(ctx, requestID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load access request: %w", err)
		}
		ev.RoomID = req.RoomID
		ev.Details = mergeDetails(ev.Details, map[string]any{
			"decision":     string(in.Decision),
			"requester_id": req.UserID,
		})

		caps, err := w.resolver.Resolve(ctx, reviewer.UserID, req.RoomID, Scope{}, meta)
		if err != nil {
			return nil, err
		}
		if !caps.CanManage() {
			reason := caps.DenyReason
			if reason == "" {
				reason = reasonNotManager
			}
			return nil, deny(ErrPermissionDenied, reason)
		}
		if req.Status != model.AccessRequestPending {
			return nil, fmt.Errorf("%w: request is %s", ErrInvalidState, req.Status)
		}

		now := w.now().UTC()
		req.ReviewedBy = reviewer.UserID
		req.ReviewedAt = &now
		req.ReviewNote = strings.TrimSpace(in.Note)
		if req.ReviewNote != "" {
			ev.Details["note"] = req.ReviewNote
		}

		if in.Decision == model.DecisionDeny {
			req.Status = model.AccessRequestDenied
			err = w.requests.Deny(ctx, req)
		} else {
			var grant *model.RoomAccess
			grant, err = w.grant(ctx, req, role, now)
			if err != nil {
				return nil, err
			}
			req.Status = model.AccessRequestApproved
			req.GrantedRole = grant.Role
			ev.Details["granted_role"] = string(grant.Role)
			if grant.ID == "" {
				grant.ID = uuid.NewString()
			} else {
				ev.Details["existing_access"] = true
			}
			err = w.requests.Approve(ctx, req, grant)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: request was already reviewed", ErrInvalidState)
		}
		if err != nil {
			return nil, fmt.Errorf("record review: %w", err)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	w.notify(ctx, notify.Notification{
		Recipients: []string{reviewed.UserID},
		Template:   notify.TemplateAccessReviewed,
		Data: map[string]any{
			"request_id":   reviewed.ID,
			"room_id":      reviewed.RoomID,
			"status":       string(reviewed.Status),
			"granted_role": string(reviewed.GrantedRole),
			"note":         reviewed.ReviewNote,
		},
	})
	return reviewed, nil
}

// grant builds the RoomAccess an approval writes. An existing binding is only ever raised: its role
// becomes the higher of the two, its flags are unioned with the role defaults, and its restrictions stay.
func (w *accessRequestWorkflow) grant(ctx context.Context, req *model.AccessRequest, role model.Role, now time.Time) (*model.RoomAccess, error) {
	existing, err := w.access.Find(ctx, req.UserID, req.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.RoomAccess{
			UserID:       req.UserID,
			RoomID:       req.RoomID,
			Role:         role,
			Capabilities: model.RoleDefaults[role],
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load room access: %w", err)
	}
	merged := *existing
	merged.Role = existing.Role.Higher(role)
	merged.Capabilities = existing.Capabilities.Union(model.RoleDefaults[role])
	merged.UpdatedAt = now
	return &merged, nil
}

// reviewRole validates the decision and returns the role an approval grants.
func reviewRole(in ReviewInput) (model.Role, error) {
	switch in.Decision {
	case model.DecisionDeny:
		return "", nil
	case model.DecisionApprove:
	default:
		return "", fmt.Errorf("%w: decision must be APPROVE or DENY", ErrInvalidInput)
	}
	if in.Role == "" {
		return model.RoleViewer, nil
	}
	role, ok := model.ParseRole(string(in.Role))
	if !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	if role == model.RoleRoomOwner {
		return "", fmt.Errorf("%w: %s cannot be granted through a request", ErrInvalidInput, role)
	}
	return role, nil
}

func (w *accessRequestWorkflow) ListPending(ctx context.Context, reviewer model.Identity, roomID string, meta model.RequestMeta) ([]model.AccessRequest, error) {
	caps, err := w.resolver.Resolve(ctx, reviewer.UserID, roomID, Scope{}, meta)
	if err != nil {
		return nil, err
	}
	if !caps.CanManage() {
		return nil, deny(ErrPermissionDenied, reasonNotManager)
	}
	out, err := w.requests.ListPending(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return out, nil
}

func (w *accessRequestWorkflow) notify(ctx context.Context, n notify.Notification) {
	n.CreatedAt = w.now().UTC()
	if err := w.notifier.Notify(ctx, n); err != nil {
		w.logger.WarnContext(ctx, "notification_failed",
			slog.String("template", n.Template),
			slog.String("error_message", err.Error()),
		)
	}
}
