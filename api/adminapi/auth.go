package adminapi

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/storage/model"
)

// localAdminUser holds the name of the authenticated admin user; it is not
// set while the admin API is open
const localAdminUser = "admin_user"

// authMiddleware enforces optional authentication for admin API routes.
// If there are no users in storage, all requests are allowed.
// Once a user exists, HTTP Basic authentication against UsersStore is
// required.
func authMiddleware(users model.UsersStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := users.Count()
		if err != nil {
			return api.SendError(c, err)
		}
		if count == 0 {
			return c.Next()
		}

		username, password, ok := parseBasicAuth(c)
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Basic realm=admin")
			return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorInvalidClient("missing credentials"))
		}
		u, err := users.Authenticate(username, password)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Basic realm=admin")
			return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorInvalidClient("invalid credentials"))
		}
		c.Locals(localAdminUser, u.Username)
		return c.Next()
	}
}

// adminUser returns the authenticated admin user's name or "" if the admin
// API is open
func adminUser(c *fiber.Ctx) string {
	name, _ := c.Locals(localAdminUser).(string)
	return name
}

// parseBasicAuth extracts Basic auth credentials from request headers
func parseBasicAuth(c *fiber.Ctx) (username, password string, ok bool) {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return "", "", false
	}
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	b, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(b), ":")
	return
}
