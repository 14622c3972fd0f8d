package handler

import (
	"github.com/gofiber/fiber/v2"

	"dataroom/internal/http/middleware"
	"dataroom/internal/model"
	"dataroom/internal/service"
)

type consumeBody struct {
	Password string `json:"password"`
}

// IssueShareLink godoc
// @Summary Issue a share link
// @Description Creates a bearer link to one file or folder. The token is only returned here.
// @Tags share-links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.IssueRequest true "Share link"
// @Success 201 {object} service.IssuedLink
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /share-links [post]
func IssueShareLink(svc service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.IssueRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		issued, err := svc.Issue(c.UserContext(), identity(c), req, middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(issued)
	}
}

// ListShareLinks godoc
// @Summary List share links of a target
// @Tags share-links
// @Produce json
// @Security BearerAuth
// @Param targetType query string true "FILE or FOLDER"
// @Param targetId query string true "Target ID"
// @Success 200 {array} model.ShareLink
// @Router /share-links [get]
func ListShareLinks(svc service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetType := model.TargetType(c.Query("targetType"))
		targetID := c.Query("targetId")
		if targetID == "" || (targetType != model.TargetFile && targetType != model.TargetFolder) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "targetType and targetId are required")
		}
		links, err := svc.List(c.UserContext(), identity(c), targetType, targetID, middleware.RequestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": links})
	}
}

// RevokeShareLink godoc
// @Summary Revoke a share link
// @Tags share-links
// @Security BearerAuth
// @Param id path string true "Share link ID"
// @Success 204
// @Failure 403 {object} errorPayload
// @Router /share-links/{id} [delete]
func RevokeShareLink(svc service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Revoke(c.UserContext(), identity(c), c.Params("id"), middleware.RequestMeta(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ConsumeShareLink godoc
// @Summary Redeem a share link
// @Description Consumes one view of the link. Any failure answers 404 LINK_INVALID.
// @Tags share
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param body body consumeBody false "Password"
// @Success 200 {object} service.ConsumeResult
// @Failure 404 {object} errorPayload
// @Router /share/{token} [post]
func ConsumeShareLink(svc service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := consumeRequest(c)
		res, err := svc.Consume(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// OpenSharedFile godoc
// @Summary Open a file below a shared folder
// @Tags share
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param fileId path string true "File ID"
// @Param body body consumeBody false "Password"
// @Success 200 {object} service.ConsumeResult
// @Failure 404 {object} errorPayload
// @Router /shared/folder/{token}/files/{fileId} [post]
func OpenSharedFile(svc service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := consumeRequest(c)
		res, err := svc.OpenSharedFile(c.UserContext(), req, c.Params("fileId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// consumeRequest reads the token, the optional password body and the optional caller identity.
// An unreadable body is flagged rather than rejected so the attempt is still audited.
func consumeRequest(c *fiber.Ctx) service.ConsumeRequest {
	req := service.ConsumeRequest{
		Token: c.Params("token"),
		Meta:  middleware.RequestMeta(c),
	}
	if len(c.Body()) > 0 {
		var body consumeBody
		if err := c.BodyParser(&body); err != nil {
			req.Malformed = true
		} else {
			req.Password = body.Password
		}
	}
	if id, ok := middleware.IdentityFrom(c); ok {
		req.Requester = &id
	}
	return req
}
