package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"dataroom/internal/model"
	"dataroom/internal/notify"
	"dataroom/internal/repository"
)

var testNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// memAuditRepo is an in-memory append-only audit store.
type memAuditRepo struct {
	mu        sync.Mutex
	events    []model.AuditEvent
	insertErr error
}

func (r *memAuditRepo) Insert(_ context.Context, ev *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.events = append(r.events, *ev)
	return nil
}

func (r *memAuditRepo) Query(_ context.Context, f model.AuditFilter) ([]model.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEvent
	for _, ev := range r.events {
		if f.RoomID != "" && ev.RoomID != f.RoomID {
			continue
		}
		if f.Action != "" && ev.Action != f.Action {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (r *memAuditRepo) Aggregate(_ context.Context, f model.AuditFilter, _ model.AuditGroupBy) ([]model.AuditAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	var keys []string
	for _, ev := range r.events {
		if f.RoomID != "" && ev.RoomID != f.RoomID {
			continue
		}
		k := string(ev.Action)
		if _, ok := counts[k]; !ok {
			keys = append(keys, k)
		}
		counts[k]++
	}
	out := make([]model.AuditAggregate, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.AuditAggregate{Key: k, Count: counts[k]})
	}
	return out, nil
}

func (r *memAuditRepo) byAction(a model.AuditAction) []model.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEvent
	for _, ev := range r.events {
		if ev.Action == a {
			out = append(out, ev)
		}
	}
	return out
}

func (r *memAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// memShareLinks mirrors the conditional UPDATE of the postgres repository under a mutex.
type memShareLinks struct {
	mu    sync.Mutex
	links map[string]*model.ShareLink
}

func newMemShareLinks() *memShareLinks {
	return &memShareLinks{links: map[string]*model.ShareLink{}}
}

func (r *memShareLinks) put(l *model.ShareLink) *model.ShareLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *l
	r.links[c.ID] = &c
	return l
}

func (r *memShareLinks) get(id string) model.ShareLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.links[id]
}

func (r *memShareLinks) Create(_ context.Context, l *model.ShareLink) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.Token == l.Token {
			return nil, repository.ErrConflict
		}
	}
	c := *l
	c.IsActive = true
	c.CurrentViews = 0
	r.links[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memShareLinks) FindByID(_ context.Context, id string) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (r *memShareLinks) FindByToken(_ context.Context, token string) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.Token == token {
			c := *l
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memShareLinks) IncrementViews(_ context.Context, id string, now time.Time) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || !l.IsActive {
		return nil, repository.ErrNotFound
	}
	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return nil, repository.ErrNotFound
	}
	if l.MaxViews != nil && l.CurrentViews >= *l.MaxViews {
		return nil, repository.ErrNotFound
	}
	l.CurrentViews++
	l.LastAccessedAt = &now
	c := *l
	return &c, nil
}

func (r *memShareLinks) Deactivate(_ context.Context, id, actorID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || !l.IsActive {
		return nil
	}
	l.IsActive = false
	l.RevokedAt = &now
	l.RevokedBy = actorID
	return nil
}

func (r *memShareLinks) ListByTarget(_ context.Context, tt model.TargetType, targetID, createdBy string) ([]model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ShareLink
	for _, l := range r.links {
		if l.TargetType != tt || l.TargetID != targetID {
			continue
		}
		if createdBy != "" && l.CreatedBy != createdBy {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

// capsResolver answers from a fixed table keyed by user ID. Unknown users are denied.
// folderCaps, keyed by "user/folder", overrides caps for folder scopes.
type capsResolver struct {
	mu         sync.Mutex
	caps       map[string]model.EffectiveCapabilities
	folderCaps map[string]model.EffectiveCapabilities
	calls      int
}

func (r *capsResolver) Resolve(_ context.Context, userID, _ string, scope Scope, _ model.RequestMeta) (model.EffectiveCapabilities, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if scope.FolderID != "" {
		if c, ok := r.folderCaps[userID+"/"+scope.FolderID]; ok {
			return c, nil
		}
	}
	if c, ok := r.caps[userID]; ok {
		return c, nil
	}
	return model.EffectiveCapabilities{DenyReason: reasonNoAccess}, nil
}

type fakeRenderer struct {
	mu       sync.Mutex
	requests []RenderRequest
	err      error
}

func (r *fakeRenderer) Render(_ context.Context, req RenderRequest) (*Rendition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &Rendition{
		URL:         "https://objects.example.com/" + req.File.ID,
		ExpiresAt:   testNow.Add(5 * time.Minute),
		Watermarked: req.Watermark,
	}, nil
}

func (r *fakeRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type fakeLimiter struct {
	deny bool
	err  error
}

func (l fakeLimiter) Allow(context.Context, string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return !l.deny, nil
}

var errBoom = errors.New("boom")
