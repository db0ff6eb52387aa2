package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// AdminAuth protects admin endpoints with token authentication. An empty
// configured token disables the check; main warns about that at startup.
func AdminAuth(adminToken string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if adminToken == "" {
			return c.Next()
		}

		// Authorization: Bearer <token>
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				if constantTimeCompare(parts[1], adminToken) {
					return c.Next()
				}
			}
		}

		// X-Admin-Token: <token>
		if tokenHeader := c.Get("X-Admin-Token"); tokenHeader != "" {
			if constantTimeCompare(tokenHeader, adminToken) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Unauthorized",
			"message": "Valid admin token required. Use 'Authorization: Bearer <token>' or 'X-Admin-Token: <token>' header.",
		})
	}
}

// constantTimeCompare performs constant-time string comparison to prevent
// timing attacks.
func constantTimeCompare(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
