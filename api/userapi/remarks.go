package userapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/storage/model"
)

type respondRequest struct {
	Explanation       string `json:"explanation"`
	ActionPlan        string `json:"action_plan"`
	ResponsiblePerson string `json:"responsible_person"`
}

func (h *handler) incomingRemarks(c *fiber.Ctx) error {
	list, err := h.storages.Remarks.Incoming(session(c).DepartmentID)
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(list)
}

func (h *handler) outgoingRemarks(c *fiber.Ctx) error {
	list, err := h.storages.Remarks.Outgoing(session(c).DepartmentID)
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(list)
}

func (h *handler) respond(c *fiber.Ctx) error {
	submissionID, ok := positiveParam(c, "submissionID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid submission id"))
	}
	questionID, ok := positiveParam(c, "questionID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid question id"))
	}
	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
	}
	s := session(c)
	stored, created, err := h.storages.Remarks.Respond(
		model.RemarkResponse{
			SubmissionID:            submissionID,
			QuestionID:              questionID,
			Explanation:             req.Explanation,
			ActionPlan:              req.ActionPlan,
			ResponsiblePerson:       req.ResponsiblePerson,
			RespondedByDepartmentID: s.DepartmentID,
			RespondedBy:             s.UserID,
		},
	)
	if err != nil {
		return api.SendError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
	return c.JSON(stored)
}
