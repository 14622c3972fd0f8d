package handler

import (
	"github.com/gofiber/fiber/v2"

	"dataroom/internal/http/middleware"
	"dataroom/internal/model"
	"dataroom/internal/service"
)

// identity returns the caller set by RequireAuth.
func identity(c *fiber.Ctx) model.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

// RoomCapabilities godoc
// @Summary Resolve the caller's capabilities
// @Description Returns the effective capabilities of the caller in a room, optionally narrowed to a folder.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param folderId query string false "Folder ID"
// @Success 200 {object} model.EffectiveCapabilities
// @Failure 401 {object} errorPayload
// @Router /rooms/{roomId}/capabilities [get]
func RoomCapabilities(gw service.ContentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caps, err := gw.Capabilities(c.UserContext(), identity(c), c.Params("roomId"), c.Query("folderId"), middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(caps)
	}
}

// ViewFile godoc
// @Summary View a file
// @Description Returns a short-lived pointer to the file content, watermarked when the room requires it.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param fileId path string true "File ID"
// @Success 200 {object} service.FileView
// @Failure 403 {object} errorPayload
// @Router /files/{fileId}/view [get]
func ViewFile(gw service.ContentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := gw.ViewFile(c.UserContext(), identity(c), c.Params("fileId"), middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).JSON(view)
	}
}

// DownloadFile godoc
// @Summary Download a file
// @Description Like view, but requires the download capability and sets a download filename on the pointer.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param fileId path string true "File ID"
// @Success 200 {object} service.FileView
// @Failure 403 {object} errorPayload
// @Router /files/{fileId}/download [get]
func DownloadFile(gw service.ContentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := gw.DownloadFile(c.UserContext(), identity(c), c.Params("fileId"), middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).JSON(view)
	}
}
