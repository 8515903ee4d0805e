package userapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Durai69/LLS-Survey/api"
)

const localClaims = "session_claims"

// authMiddleware requires a valid bearer session token
func authMiddleware(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorInvalidClient("missing session token"))
		}
		claims, err := tokens.Parse(strings.TrimSpace(auth[len(prefix):]))
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
			return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorInvalidClient("invalid session token"))
		}
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// session returns the claims of the authenticated caller
func session(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(localClaims).(*Claims)
	return claims
}
