package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"dataroom/internal/model"
)

// IdentityLocalKey stores the verified caller identity in Fiber's context locals.
const IdentityLocalKey = "identity"

// IdentityVerifier turns a bearer token into an identity.
type IdentityVerifier interface {
	Verify(token string) (model.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token by passing onFail to the error handler.
func RequireAuth(v IdentityVerifier, onFail func(c *fiber.Ctx) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return onFail(c)
		}
		id, err := v.Verify(token)
		if err != nil {
			return onFail(c)
		}
		c.Locals(IdentityLocalKey, id)
		return c.Next()
	}
}

// OptionalAuth stores the identity when a valid token is presented and continues anonymously otherwise.
// A present but invalid token is treated as anonymous.
func OptionalAuth(v IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if id, err := v.Verify(token); err == nil {
				c.Locals(IdentityLocalKey, id)
			}
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireAuth or OptionalAuth.
func IdentityFrom(c *fiber.Ctx) (model.Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(model.Identity)
	return id, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
