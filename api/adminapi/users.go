package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/storage/model"
)

// registerUsers wires the admin user management handlers
func registerUsers(r fiber.Router, users model.UsersStore) {
	g := r.Group("/users")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			list, err := users.List()
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(list)
		},
	)

	type createReq struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	g.Post(
		"/", func(c *fiber.Ctx) error {
			var req createReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
			}
			if req.Username == "" || req.Password == "" {
				return c.Status(fiber.StatusBadRequest).JSON(
					api.ErrorInvalidRequest("username and password are required"),
				)
			}
			u, err := users.Create(req.Username, req.Password, req.DisplayName)
			if err != nil {
				return api.SendError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(u)
		},
	)

	type updateReq struct {
		DisplayName *string `json:"display_name"`
		Password    *string `json:"password"`
		Disabled    *bool   `json:"disabled"`
	}
	g.Put(
		"/:username", func(c *fiber.Ctx) error {
			var req updateReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
			}
			u, err := users.Update(c.Params("username"), req.DisplayName, req.Password, req.Disabled)
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(u)
		},
	)

	g.Get(
		"/:username", func(c *fiber.Ctx) error {
			u, err := users.Get(c.Params("username"))
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(u)
		},
	)

	g.Delete(
		"/:username", func(c *fiber.Ctx) error {
			if err := users.Delete(c.Params("username")); err != nil {
				return api.SendError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
