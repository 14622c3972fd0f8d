package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"dataroom/internal/http/middleware"
	"dataroom/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Content        service.ContentGateway
	ShareLinks     service.ShareLinkService
	AccessRequests service.AccessRequestWorkflow
	Audit          service.AuditTrail
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Share redemption routes accept anonymous callers; everything else requires a bearer identity.
func RegisterRoutes(app *fiber.App, db *sql.DB, verifier middleware.IdentityVerifier, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	optional := middleware.OptionalAuth(verifier)
	app.Post("/share/:token", optional, ConsumeShareLink(svc.ShareLinks))
	app.Post("/shared/folder/:token", optional, ConsumeShareLink(svc.ShareLinks))
	app.Post("/shared/folder/:token/files/:fileId", optional, OpenSharedFile(svc.ShareLinks))

	auth := middleware.RequireAuth(verifier, unauthorized)

	app.Get("/rooms/:roomId/capabilities", auth, RoomCapabilities(svc.Content))
	app.Get("/files/:fileId/view", auth, ViewFile(svc.Content))
	app.Get("/files/:fileId/download", auth, DownloadFile(svc.Content))

	app.Post("/share-links", auth, IssueShareLink(svc.ShareLinks))
	app.Get("/share-links", auth, ListShareLinks(svc.ShareLinks))
	app.Delete("/share-links/:id", auth, RevokeShareLink(svc.ShareLinks))

	app.Post("/rooms/:roomId/access-requests", auth, CreateAccessRequest(svc.AccessRequests))
	app.Get("/rooms/:roomId/access-requests", auth, ListAccessRequests(svc.AccessRequests))
	app.Post("/access-requests/:id/review", auth, ReviewAccessRequest(svc.AccessRequests))

	app.Get("/rooms/:roomId/audit", auth, ExportAudit(svc.Audit))
	app.Get("/rooms/:roomId/audit/summary", auth, AuditSummary(svc.Audit))
}
