package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dataroom/internal/config"
	"dataroom/internal/metrics"
	"dataroom/internal/model"
	"dataroom/internal/repository"
	"dataroom/internal/storage"
	"dataroom/internal/watermark"
)

const artifactPrefix = "tmp/watermarks"

// Render results, also used as metric labels.
const (
	renderDisabled    = "disabled"
	renderWatermarked = "watermarked"
	renderSkipped     = "skipped"
	renderDegraded    = "degraded"
)

var errTooLarge = errors.New("content exceeds render size limit")

// Viewer is the identity stamped into a rendition.
type Viewer struct {
	UserID string
	Name   string
	Email  string
	IP     string
}

// RenderRequest describes one rendition. Watermark comes from the resolved capabilities
// (room policy, or forced for auditors).
type RenderRequest struct {
	File      *model.File
	Room      *model.Room
	Viewer    Viewer
	Watermark bool
	Download  bool
	Meta      model.RequestMeta
}

// Rendition is an ephemeral pointer to content.
type Rendition struct {
	URL         string    `json:"pointer_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Watermarked bool      `json:"watermarked"`
	Degraded    bool      `json:"-"`
	Skipped     bool      `json:"-"`
	Reason      string    `json:"-"`
}

// WatermarkRenderer produces viewer-stamped renditions. Rendering problems never block the viewer:
// the original is served and the fallback is audited.
type WatermarkRenderer interface {
	Render(ctx context.Context, req RenderRequest) (*Rendition, error)
}

type watermarkRenderer struct {
	store     storage.Storage
	artifacts repository.ArtifactRepository
	audit     AuditTrail
	engines   watermark.Engines
	cfg       config.WatermarkConfig
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewWatermarkRenderer(
	store storage.Storage,
	artifacts repository.ArtifactRepository,
	audit AuditTrail,
	engines watermark.Engines,
	cfg config.WatermarkConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) WatermarkRenderer {
	return &watermarkRenderer{
		store:     store,
		artifacts: artifacts,
		audit:     audit,
		engines:   engines,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With(slog.String("component", "watermark")),
		now:       time.Now,
	}
}

func (w *watermarkRenderer) Render(ctx context.Context, req RenderRequest) (*Rendition, error) {
	if !req.Watermark {
		w.metrics.Rendered(renderDisabled)
		return w.original(ctx, req, w.cfg.ContentURLTTL)
	}

	engine, err := w.engines.For(req.File.ContentType)
	if errors.Is(err, watermark.ErrUnsupported) {
		if err := w.record(ctx, req, model.AuditWatermarkSkipped, "unsupported_content_type"); err != nil {
			return nil, err
		}
		w.metrics.Rendered(renderSkipped)
		r, err := w.original(ctx, req, w.cfg.ArtifactURLTTL)
		if err != nil {
			return nil, err
		}
		r.Skipped = true
		r.Reason = "unsupported_content_type"
		return r, nil
	}

	stamp := watermark.Stamp{
		Name:      req.Viewer.Name,
		Email:     req.Viewer.Email,
		Room:      req.Room.Name,
		Timestamp: w.now().UTC(),
		IP:        req.Viewer.IP,
	}

	rendition, err := w.renderWithTimeout(ctx, engine, req, stamp)
	if err == nil {
		w.metrics.Rendered(renderWatermarked)
		return rendition, nil
	}

	reason := degradeReason(err)
	w.logger.WarnContext(ctx, "watermark_degraded",
		slog.String("file_id", req.File.ID),
		slog.String("reason", reason),
		slog.String("error_message", err.Error()),
	)
	if err := w.record(ctx, req, model.AuditWatermarkDegraded, reason); err != nil {
		return nil, err
	}
	w.metrics.Rendered(renderDegraded)
	r, oerr := w.original(ctx, req, w.cfg.ArtifactURLTTL)
	if oerr != nil {
		return nil, oerr
	}
	r.Degraded = true
	r.Reason = reason
	return r, nil
}

type renderOutcome struct {
	rendition *Rendition
	err       error
}

// renderWithTimeout bounds the whole pipeline by RenderTimeout. Engines that ignore cancellation
// keep running in the background and their result is dropped.
func (w *watermarkRenderer) renderWithTimeout(ctx context.Context, engine watermark.Engine, req RenderRequest, stamp watermark.Stamp) (*Rendition, error) {
	if w.cfg.MaxRenderBytes > 0 && req.File.Size > w.cfg.MaxRenderBytes {
		return nil, errTooLarge
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.RenderTimeout)
	defer cancel()

	done := make(chan renderOutcome, 1)
	go func() {
		r, err := w.render(ctx, engine, req, stamp)
		done <- renderOutcome{rendition: r, err: err}
	}()

	select {
	case out := <-done:
		return out.rendition, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *watermarkRenderer) render(ctx context.Context, engine watermark.Engine, req RenderRequest, stamp watermark.Stamp) (*Rendition, error) {
	rc, _, err := w.store.Get(ctx, req.File.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("get original: %w", err)
	}
	src, err := readLimited(rc, w.cfg.MaxRenderBytes)
	rc.Close()
	if err != nil {
		return nil, err
	}

	out, err := engine.Apply(ctx, req.File.ContentType, src, stamp)
	if err != nil {
		return nil, fmt.Errorf("apply stamp: %w", err)
	}

	key, err := artifactKey(req.Room.ID, req.Viewer, out)
	if err != nil {
		return nil, err
	}
	if _, err := w.store.Put(ctx, key, bytes.NewReader(out), storage.PutObjectOptions{
		Size:        int64(len(out)),
		ContentType: req.File.ContentType,
	}); err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	now := w.now().UTC()
	sum := sha256.Sum256(out)
	artifact := &model.RenderArtifact{
		ID:          uuid.NewString(),
		StorageKey:  key,
		FileID:      req.File.ID,
		ViewerID:    req.Viewer.UserID,
		RoomID:      req.Room.ID,
		Checksum:    hex.EncodeToString(sum[:]),
		DeleteAfter: now.Add(w.cfg.Retention),
		CreatedAt:   now,
	}
	if err := w.artifacts.Create(ctx, artifact); err != nil {
		if derr := w.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			w.logger.WarnContext(ctx, "artifact_cleanup_failed", slog.String("error_message", derr.Error()))
		}
		return nil, fmt.Errorf("schedule artifact deletion: %w", err)
	}

	url, err := w.store.PresignGet(ctx, key, w.cfg.ArtifactURLTTL, w.presignOptions(req))
	if err != nil {
		return nil, fmt.Errorf("presign artifact: %w", err)
	}
	return &Rendition{URL: url, ExpiresAt: now.Add(w.cfg.ArtifactURLTTL), Watermarked: true}, nil
}

// original presigns the stored file itself. Fallbacks in a watermarking room pass the shorter
// artifact TTL so unstamped content is exposed no longer than a rendition would be.
func (w *watermarkRenderer) original(ctx context.Context, req RenderRequest, ttl time.Duration) (*Rendition, error) {
	url, err := w.store.PresignGet(ctx, req.File.StorageKey, ttl, w.presignOptions(req))
	if err != nil {
		return nil, fmt.Errorf("presign original: %w", err)
	}
	return &Rendition{URL: url, ExpiresAt: w.now().UTC().Add(ttl)}, nil
}

func (w *watermarkRenderer) presignOptions(req RenderRequest) storage.PresignOptions {
	opt := storage.PresignOptions{ContentType: req.File.ContentType}
	if req.Download {
		opt.DownloadName = req.File.Name
	}
	return opt
}

func (w *watermarkRenderer) record(ctx context.Context, req RenderRequest, action model.AuditAction, reason string) error {
	ev := withMeta(model.AuditEvent{
		ActorID:      req.Viewer.UserID,
		Action:       action,
		ResourceType: model.ResourceFile,
		ResourceID:   req.File.ID,
		RoomID:       req.Room.ID,
		Outcome:      model.OutcomeSuccess,
	}, req.Meta)
	if ev.Details == nil {
		ev.Details = map[string]any{}
	}
	ev.Details["reason"] = reason
	ev.Details["content_type"] = req.File.ContentType
	return w.audit.Append(ctx, &ev)
}

// artifactKey is content-addressed, scoped per viewer and salted with 128 random bits.
func artifactKey(roomID string, v Viewer, content []byte) (string, error) {
	viewerSum := sha256.Sum256([]byte(v.UserID + "\x00" + v.Email))
	contentSum := sha256.Sum256(content)
	salt, err := randomHex(16)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/%s-%s",
		artifactPrefix,
		roomID,
		hex.EncodeToString(viewerSum[:])[:16],
		hex.EncodeToString(contentSum[:]),
		salt,
	), nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read original: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, errTooLarge
	}
	return b, nil
}

func degradeReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "render_timeout"
	case errors.Is(err, errTooLarge):
		return "too_large"
	default:
		return "render_failed"
	}
}
