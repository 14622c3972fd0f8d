package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/logger"
	"dataroom/internal/model"
)

func newTrail(repo *memAuditRepo, caps map[string]model.EffectiveCapabilities) AuditTrail {
	return NewAuditTrail(repo, &capsResolver{caps: caps}, logger.Discard())
}

func TestAudited_RecordsExactlyOneEventPerOutcome(t *testing.T) {
	tests := []struct {
		name        string
		opErr       error
		wantOutcome model.AuditOutcome
		wantReason  any
	}{
		{name: "success", wantOutcome: model.OutcomeSuccess},
		{name: "denial", opErr: deny(ErrPermissionDenied, reasonIPNotAllowed), wantOutcome: model.OutcomeDenied, wantReason: reasonIPNotAllowed},
		{name: "link denial", opErr: deny(ErrLinkInvalid, reasonLinkExpired), wantOutcome: model.OutcomeDenied, wantReason: reasonLinkExpired},
		{name: "failure", opErr: errBoom, wantOutcome: model.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memAuditRepo{}
			trail := newTrail(repo, nil)

			got, err := Audited(context.Background(), trail, logger.Discard(), model.AuditEvent{
				ActorID:      "u-1",
				Action:       model.AuditView,
				ResourceType: model.ResourceFile,
				ResourceID:   "file-1",
			}, func(ev *model.AuditEvent) (string, error) {
				ev.RoomID = "room-1"
				if tt.opErr != nil {
					return "", tt.opErr
				}
				return "ok", nil
			})

			assert.ErrorIs(t, err, tt.opErr)
			if tt.opErr == nil {
				assert.Equal(t, "ok", got)
			}
			require.Equal(t, 1, repo.count())
			ev := repo.events[0]
			assert.Equal(t, tt.wantOutcome, ev.Outcome)
			assert.Equal(t, "room-1", ev.RoomID)
			assert.NotEmpty(t, ev.ID)
			assert.False(t, ev.CreatedAt.IsZero())
			if tt.wantReason != nil {
				assert.Equal(t, tt.wantReason, ev.Details["reason"])
			}
			if tt.wantOutcome == model.OutcomeError {
				assert.Equal(t, "boom", ev.Details["error"])
			}
		})
	}
}

func TestAudited_AppendFailure(t *testing.T) {
	repo := &memAuditRepo{insertErr: errBoom}
	trail := newTrail(repo, nil)
	ev := model.AuditEvent{Action: model.AuditView}

	got, err := Audited(context.Background(), trail, logger.Discard(), ev, func(*model.AuditEvent) (int, error) {
		return 42, nil
	})
	assert.Zero(t, got)
	assert.ErrorIs(t, err, errBoom)

	_, err = Audited(context.Background(), trail, logger.Discard(), ev, func(*model.AuditEvent) (int, error) {
		return 0, deny(ErrPermissionDenied, reasonNoAccess)
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAuditTrail_ExportStripsPrivateContent(t *testing.T) {
	repo := &memAuditRepo{events: []model.AuditEvent{
		{
			ID:      "ev-1",
			RoomID:  "room-1",
			Action:  model.AuditAccessReviewed,
			Details: map[string]any{"decision": "APPROVE", "note": "off the record", "nested": map[string]any{"answer": "42", "ok": true}},
		},
		{ID: "ev-2", RoomID: "room-2", Action: model.AuditView},
	}}
	trail := newTrail(repo, map[string]model.EffectiveCapabilities{"auditor": {View: true, ViewAudit: true}})

	out, err := trail.Export(context.Background(), model.Identity{UserID: "auditor"}, "room-1", model.AuditFilter{}, model.RequestMeta{})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"decision": "APPROVE", "nested": map[string]any{"ok": true}}, out[0].Details)

	exports := repo.byAction(model.AuditAuditExport)
	require.Len(t, exports, 1)
	assert.Equal(t, model.OutcomeSuccess, exports[0].Outcome)
	assert.Equal(t, 1, exports[0].Details["rows"])
}

func TestAuditTrail_ExportRequiresViewAudit(t *testing.T) {
	repo := &memAuditRepo{}
	trail := newTrail(repo, map[string]model.EffectiveCapabilities{"viewer": {View: true}})

	_, err := trail.Export(context.Background(), model.Identity{UserID: "viewer"}, "room-1", model.AuditFilter{}, model.RequestMeta{})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	exports := repo.byAction(model.AuditAuditExport)
	require.Len(t, exports, 1)
	assert.Equal(t, model.OutcomeDenied, exports[0].Outcome)
	assert.Equal(t, reasonAuditNotAllowed, exports[0].Details["reason"])
}

func TestAuditTrail_Aggregate(t *testing.T) {
	repo := &memAuditRepo{events: []model.AuditEvent{
		{RoomID: "room-1", Action: model.AuditView},
		{RoomID: "room-1", Action: model.AuditView},
		{RoomID: "room-1", Action: model.AuditDownload},
	}}
	trail := newTrail(repo, map[string]model.EffectiveCapabilities{
		"auditor": {View: true, ViewAudit: true},
		"viewer":  {View: true},
	})
	ctx := context.Background()

	out, err := trail.Aggregate(ctx, model.Identity{UserID: "auditor"}, "room-1", model.AuditFilter{}, model.GroupByAction, model.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []model.AuditAggregate{{Key: "VIEW", Count: 2}, {Key: "DOWNLOAD", Count: 1}}, out)

	_, err = trail.Aggregate(ctx, model.Identity{UserID: "auditor"}, "room-1", model.AuditFilter{}, "hour", model.RequestMeta{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = trail.Aggregate(ctx, model.Identity{UserID: "viewer"}, "room-1", model.AuditFilter{}, model.GroupByDay, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestWithMeta(t *testing.T) {
	ev := withMeta(model.AuditEvent{Action: model.AuditView}, model.RequestMeta{
		IP: "203.0.113.7", Country: "DE", UserAgent: "curl/8", RequestID: "req-9",
	})

	assert.Equal(t, "203.0.113.7", ev.IPAddress)
	assert.Equal(t, "curl/8", ev.UserAgent)
	assert.Equal(t, "req-9", ev.RequestID)
	assert.Equal(t, "DE", ev.Details["country"])
}

func TestReason(t *testing.T) {
	err := deny(ErrLinkInvalid, reasonPasswordMismatch)

	assert.ErrorIs(t, err, ErrLinkInvalid)
	assert.Equal(t, reasonPasswordMismatch, Reason(err))
	assert.True(t, IsDenial(err))
	assert.Empty(t, Reason(errBoom))
	assert.False(t, IsDenial(ErrInvalidState))
}
