package handler

import (
	"github.com/gofiber/fiber/v2"

	"dataroom/internal/http/middleware"
	"dataroom/internal/service"
)

type createAccessRequestBody struct {
	FolderID string `json:"folder_id"`
	Reason   string `json:"reason"`
}

// CreateAccessRequest godoc
// @Summary Request access to a room or folder
// @Tags access-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param body body createAccessRequestBody true "Request"
// @Success 201 {object} model.AccessRequest
// @Failure 409 {object} errorPayload
// @Router /rooms/{roomId}/access-requests [post]
func CreateAccessRequest(wf service.AccessRequestWorkflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createAccessRequestBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		req, err := wf.Create(c.UserContext(), identity(c), c.Params("roomId"), body.FolderID, body.Reason, middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// ListAccessRequests godoc
// @Summary List pending access requests of a room
// @Tags access-requests
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {array} model.AccessRequest
// @Failure 403 {object} errorPayload
// @Router /rooms/{roomId}/access-requests [get]
func ListAccessRequests(wf service.AccessRequestWorkflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := wf.ListPending(c.UserContext(), identity(c), c.Params("roomId"), middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": items})
	}
}

// ReviewAccessRequest godoc
// @Summary Approve or deny an access request
// @Tags access-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Access request ID"
// @Param body body service.ReviewInput true "Decision"
// @Success 200 {object} model.AccessRequest
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /access-requests/{id}/review [post]
func ReviewAccessRequest(wf service.AccessRequestWorkflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ReviewInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		req, err := wf.Review(c.UserContext(), identity(c), c.Params("id"), in, middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(req)
	}
}
