package middleware

import (
	"github.com/gofiber/fiber/v3"
)

const UserIDHeader = "X-User-ID"

// UserID returns the caller identity forwarded by the gateway. The gateway
// validates the token and strips any client-supplied copy of the header, so
// the value is trusted inside the mesh.
func UserID(c fiber.Ctx) string {
	return c.Get(UserIDHeader)
}

// RequireAuth rejects requests that reached a protected route without a
// gateway-resolved identity.
func RequireAuth(c fiber.Ctx) error {
	if UserID(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return c.Next()
}
