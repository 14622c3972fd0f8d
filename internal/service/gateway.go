package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dataroom/internal/model"
	"dataroom/internal/repository"
)

// FileView is what a viewer receives for one file: a short-lived pointer plus the capabilities
// the client should honour.
type FileView struct {
	PointerURL  string      `json:"pointer_url"`
	ExpiresAt   time.Time   `json:"expires_at"`
	File        *model.File `json:"file"`
	CanDownload bool        `json:"can_download"`
	CanPrint    bool        `json:"can_print"`
	Watermarked bool        `json:"watermarked"`
}

// ContentGateway is the only path from an authenticated viewer to file content.
type ContentGateway interface {
	ViewFile(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta) (*FileView, error)
	DownloadFile(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta) (*FileView, error)
	// Capabilities returns the resolved capabilities for a room or one of its folders. A denial is
	// the all-false record, not an error.
	Capabilities(ctx context.Context, viewer model.Identity, roomID, folderID string, meta model.RequestMeta) (model.EffectiveCapabilities, error)
}

type contentGateway struct {
	docs     repository.DocumentRepository
	rooms    repository.RoomRepository
	resolver PermissionResolver
	renderer WatermarkRenderer
	audit    AuditTrail
	logger   *slog.Logger
}

func NewContentGateway(
	docs repository.DocumentRepository,
	rooms repository.RoomRepository,
	resolver PermissionResolver,
	renderer WatermarkRenderer,
	audit AuditTrail,
	logger *slog.Logger,
) ContentGateway {
	return &contentGateway{
		docs:     docs,
		rooms:    rooms,
		resolver: resolver,
		renderer: renderer,
		audit:    audit,
		logger:   logger.With(slog.String("component", "gateway")),
	}
}

func (g *contentGateway) ViewFile(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta) (*FileView, error) {
	return g.serve(ctx, viewer, fileID, meta, model.AuditView, false)
}

func (g *contentGateway) DownloadFile(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta) (*FileView, error) {
	return g.serve(ctx, viewer, fileID, meta, model.AuditDownload, true)
}

func (g *contentGateway) serve(ctx context.Context, viewer model.Identity, fileID string, meta model.RequestMeta, action model.AuditAction, download bool) (*FileView, error) {
	ev := withMeta(model.AuditEvent{
		ActorID:      viewer.UserID,
		Action:       action,
		ResourceType: model.ResourceFile,
		ResourceID:   fileID,
	}, meta)

	return Audited(ctx, g.audit, g.logger, ev, func(ev *model.AuditEvent) (*FileView, error) {
		file, err := g.docs.FindFile(ctx, fileID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, deny(ErrPermissionDenied, reasonFileNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load file: %w", err)
		}
		ev.RoomID = file.RoomID

		caps, err := g.resolver.Resolve(ctx, viewer.UserID, file.RoomID, Scope{FileID: file.ID}, meta)
		if err != nil {
			return nil, err
		}
		if !caps.View {
			return nil, deny(ErrPermissionDenied, caps.DenyReason)
		}
		if download && !caps.Download {
			return nil, deny(ErrPermissionDenied, reasonDownloadNotAllowed)
		}

		room, err := g.rooms.FindByID(ctx, file.RoomID)
		if err != nil {
			return nil, fmt.Errorf("load room: %w", err)
		}

		rendition, err := g.renderer.Render(ctx, RenderRequest{
			File: file,
			Room: room,
			Viewer: Viewer{
				UserID: viewer.UserID,
				Name:   viewer.DisplayName(),
				Email:  viewer.Email,
				IP:     meta.IP,
			},
			Watermark: caps.Watermark,
			Download:  download,
			Meta:      meta,
		})
		if err != nil {
			return nil, err
		}
		ev.Details = mergeDetails(ev.Details, map[string]any{"watermarked": rendition.Watermarked})

		return &FileView{
			PointerURL:  rendition.URL,
			ExpiresAt:   rendition.ExpiresAt,
			File:        file,
			CanDownload: caps.Download,
			CanPrint:    caps.Print,
			Watermarked: rendition.Watermarked,
		}, nil
	})
}

func (g *contentGateway) Capabilities(ctx context.Context, viewer model.Identity, roomID, folderID string, meta model.RequestMeta) (model.EffectiveCapabilities, error) {
	return g.resolver.Resolve(ctx, viewer.UserID, roomID, Scope{FolderID: folderID}, meta)
}
