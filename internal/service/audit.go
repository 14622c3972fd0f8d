package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// privateDetailKeys never leave the audit trail through export or aggregation.
var privateDetailKeys = map[string]struct{}{
	"note":     {},
	"question": {},
	"answer":   {},
	"content":  {},
	"body":     {},
	"message":  {},
}

// AuditTrail records security-relevant actions and serves compliance reads.
type AuditTrail interface {
	// Append stores ev synchronously. The triggering operation is not done until it returns.
	Append(ctx context.Context, ev *model.AuditEvent) error

	// Export returns the raw filtered event stream of one room. Requires viewAudit.
	Export(ctx context.Context, actor model.Identity, roomID string, f model.AuditFilter, meta model.RequestMeta) ([]model.AuditEvent, error)

	// Aggregate counts events of one room grouped by action, day, user or file. Requires viewAudit.
	Aggregate(ctx context.Context, actor model.Identity, roomID string, f model.AuditFilter, by model.AuditGroupBy, meta model.RequestMeta) ([]model.AuditAggregate, error)
}

type auditTrail struct {
	repo     repository.AuditRepository
	resolver PermissionResolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuditTrail(repo repository.AuditRepository, resolver PermissionResolver, logger *slog.Logger) AuditTrail {
	return &auditTrail{
		repo:     repo,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "audit")),
		now:      time.Now,
	}
}

func (a *auditTrail) Append(ctx context.Context, ev *model.AuditEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = a.now().UTC()
	}
	if ev.Outcome == "" {
		ev.Outcome = model.OutcomeSuccess
	}
	if err := a.repo.Insert(ctx, ev); err != nil {
		a.logger.ErrorContext(ctx, "audit_append_failed",
			slog.String("action", string(ev.Action)),
			slog.String("resource_id", ev.ResourceID),
			slog.String("error_message", err.Error()),
		)
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (a *auditTrail) Export(ctx context.Context, actor model.Identity, roomID string, f model.AuditFilter, meta model.RequestMeta) ([]model.AuditEvent, error) {
	ev := model.AuditEvent{
		ActorID:      actor.UserID,
		Action:       model.AuditAuditExport,
		ResourceType: model.ResourceRoom,
		ResourceID:   roomID,
		RoomID:       roomID,
	}
	return Audited(ctx, a, a.logger, withMeta(ev, meta), func(ev *model.AuditEvent) ([]model.AuditEvent, error) {
		if err := a.authorize(ctx, actor, roomID, meta); err != nil {
			return nil, err
		}
		f.RoomID = roomID
		events, err := a.repo.Query(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("query audit events: %w", err)
		}
		for i := range events {
			events[i].Details = stripPrivate(events[i].Details)
		}
		ev.Details = map[string]any{"rows": len(events)}
		return events, nil
	})
}

func (a *auditTrail) Aggregate(ctx context.Context, actor model.Identity, roomID string, f model.AuditFilter, by model.AuditGroupBy, meta model.RequestMeta) ([]model.AuditAggregate, error) {
	switch by {
	case model.GroupByAction, model.GroupByDay, model.GroupByUser, model.GroupByFile:
	default:
		return nil, fmt.Errorf("%w: unsupported groupBy %q", ErrInvalidInput, by)
	}
	if err := a.authorize(ctx, actor, roomID, meta); err != nil {
		a.logger.InfoContext(ctx, "audit_aggregate_denied",
			slog.String("actor_id", actor.UserID),
			slog.String("room_id", roomID),
			slog.String("reason", Reason(err)),
		)
		return nil, err
	}
	f.RoomID = roomID
	out, err := a.repo.Aggregate(ctx, f, by)
	if err != nil {
		return nil, fmt.Errorf("aggregate audit events: %w", err)
	}
	return out, nil
}

func (a *auditTrail) authorize(ctx context.Context, actor model.Identity, roomID string, meta model.RequestMeta) error {
	caps, err := a.resolver.Resolve(ctx, actor.UserID, roomID, Scope{}, meta)
	if err != nil {
		return err
	}
	if !caps.View {
		return deny(ErrPermissionDenied, caps.DenyReason)
	}
	if !caps.ViewAudit {
		return deny(ErrPermissionDenied, reasonAuditNotAllowed)
	}
	return nil
}

// stripPrivate drops private content keys at any depth.
func stripPrivate(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		if _, private := privateDetailKeys[k]; private {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			v = stripPrivate(nested)
		}
		out[k] = v
	}
	return out
}

// withMeta copies request context onto an event.
func withMeta(ev model.AuditEvent, meta model.RequestMeta) model.AuditEvent {
	ev.IPAddress = meta.IP
	ev.UserAgent = meta.UserAgent
	ev.RequestID = meta.RequestID
	if meta.Country != "" {
		if ev.Details == nil {
			ev.Details = map[string]any{}
		}
		ev.Details["country"] = meta.Country
	}
	return ev
}

// Audited runs op and appends exactly one event describing its outcome.
// op may enrich the event (resource ids, details) before returning.
// A failed append fails an otherwise successful op; denials and errors from op are returned as they are.
func Audited[T any](ctx context.Context, trail AuditTrail, logger *slog.Logger, ev model.AuditEvent, op func(ev *model.AuditEvent) (T, error)) (T, error) {
	result, opErr := op(&ev)

	switch {
	case opErr == nil:
		ev.Outcome = model.OutcomeSuccess
	case IsDenial(opErr):
		ev.Outcome = model.OutcomeDenied
	default:
		ev.Outcome = model.OutcomeError
	}
	if opErr != nil {
		if ev.Details == nil {
			ev.Details = map[string]any{}
		}
		if reason := Reason(opErr); reason != "" {
			ev.Details["reason"] = reason
		} else if !errors.Is(opErr, ErrPermissionDenied) {
			ev.Details["error"] = opErr.Error()
		}
	}

	if err := trail.Append(ctx, &ev); err != nil {
		if opErr != nil {
			logger.ErrorContext(ctx, "audit_denial_unrecorded",
				slog.String("action", string(ev.Action)),
				slog.String("reason", Reason(opErr)),
			)
			return result, opErr
		}
		var zero T
		return zero, err
	}
	return result, opErr
}
