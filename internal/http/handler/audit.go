package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"dataroom/internal/http/middleware"
	"dataroom/internal/model"
	"dataroom/internal/service"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// ExportAudit godoc
// @Summary Export audit events of a room
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param actorId query string false "Actor ID"
// @Param action query string false "Action"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Offset"
// @Success 200 {array} model.AuditEvent
// @Failure 403 {object} errorPayload
// @Router /rooms/{roomId}/audit [get]
func ExportAudit(trail service.AuditTrail) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, ok := auditFilter(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid audit filter")
		}
		events, err := trail.Export(c.UserContext(), identity(c), c.Params("roomId"), f, middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"items":  events,
			"limit":  f.Limit,
			"offset": f.Offset,
		})
	}
}

// AuditSummary godoc
// @Summary Aggregate audit events of a room
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param groupBy query string true "action, day, user or file"
// @Success 200 {array} model.AuditAggregate
// @Failure 400 {object} errorPayload
// @Router /rooms/{roomId}/audit/summary [get]
func AuditSummary(trail service.AuditTrail) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, ok := auditFilter(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid audit filter")
		}
		by := model.AuditGroupBy(c.Query("groupBy", string(model.GroupByAction)))
		buckets, err := trail.Aggregate(c.UserContext(), identity(c), c.Params("roomId"), f, by, middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"group_by": by, "items": buckets})
	}
}

func auditFilter(c *fiber.Ctx) (model.AuditFilter, bool) {
	f := model.AuditFilter{
		ActorID: c.Query("actorId"),
		Action:  model.AuditAction(c.Query("action")),
		Limit:   c.QueryInt("limit", defaultAuditLimit),
		Offset:  c.QueryInt("offset", 0),
	}
	if f.Limit <= 0 || f.Limit > maxAuditLimit || f.Offset < 0 {
		return f, false
	}
	for _, b := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := c.Query(b.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, false
		}
		*b.dst = &t
	}
	return f, true
}
