package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"dataroom/internal/logger"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// maxRequestIDLength bounds client supplied IDs before they reach logs and audit rows.
const maxRequestIDLength = 128

// RequestID ensures every request carries an ID.
// An incoming X-Request-ID is reused unless it is empty or oversized, in which case a UUID is generated.
// The ID is stored in locals, echoed in the response header and attached to the user context so
// services logging with slog *Context methods and audit events share it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
