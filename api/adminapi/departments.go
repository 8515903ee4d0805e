package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/storage/model"
)

func registerDepartments(r fiber.Router, departments model.DepartmentStore) {
	r.Get(
		"/departments", func(c *fiber.Ctx) error {
			list, err := departments.List()
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(list)
		},
	)
}

func registerSurveys(r fiber.Router, surveys model.SurveyStore) {
	g := r.Group("/surveys")
	g.Get(
		"/", func(c *fiber.Ctx) error {
			list, err := surveys.List()
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(list)
		},
	)
	g.Get(
		"/:surveyID", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("surveyID")
			if err != nil || id <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid survey id"))
			}
			survey, err := surveys.Get(uint(id))
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(survey)
		},
	)
}

func registerReports(r fiber.Router, reports model.ReportStore) {
	r.Get(
		"/reports/departments", func(c *fiber.Ctx) error {
			list, err := reports.DepartmentMetrics()
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(list)
		},
	)
	r.Get(
		"/reports/submissions/summary", func(c *fiber.Ctx) error {
			summary, err := reports.Summary()
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(summary)
		},
	)
	r.Get(
		"/reports/submissions/recent", func(c *fiber.Ctx) error {
			list, err := reports.Recent()
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(list)
		},
	)
}
