package userapi

import (
	arrays "github.com/adam-hanna/arrayOperations"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/engine"
	"github.com/Durai69/LLS-Survey/internal/metrics"
	"github.com/Durai69/LLS-Survey/storage/model"
)

type eligibilityResponse struct {
	DepartmentID uint   `json:"department_id"`
	Eligible     []uint `json:"eligible"`
}

type pairStateResponse struct {
	FromDepartmentID uint          `json:"from_department_id"`
	ToDepartmentID   uint          `json:"to_department_id"`
	State            string        `json:"state"`
	Eligible         bool          `json:"eligible"`
	Window           *model.Window `json:"window,omitempty"`
}

type submitRequest struct {
	SurveyID      uint            `json:"survey_id"`
	Answers       []engine.Answer `json:"answers"`
	OverallRating float64         `json:"overall_rating"`
	Suggestion    string          `json:"suggestion"`
}

func (h *handler) eligibility(c *fiber.Ctx) error {
	s := session(c)
	eligible, err := h.recorder.Resolver().ResolveEligibility(s.DepartmentID, h.now())
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(
		eligibilityResponse{
			DepartmentID: s.DepartmentID,
			Eligible:     eligible,
		},
	)
}

func (h *handler) pairState(c *fiber.Ctx) error {
	to, ok := positiveParam(c, "departmentID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid department id"))
	}
	from := session(c).DepartmentID
	state, window, err := h.recorder.Resolver().PairState(from, to, h.now())
	if err != nil {
		return api.SendError(c, err)
	}
	res := pairStateResponse{
		FromDepartmentID: from,
		ToDepartmentID:   to,
		State:            state.String(),
		Eligible:         state == engine.StateEligible,
	}
	if state != engine.StateNotEligible {
		res.Window = &window
	}
	return c.JSON(res)
}

// availableSurveys lists the templates the caller's department may submit
// now; the own department and already submitted targets are excluded
func (h *handler) availableSurveys(c *fiber.Ctx) error {
	own := session(c).DepartmentID
	eligible, err := h.recorder.Resolver().ResolveEligibility(own, h.now())
	if err != nil {
		return api.SendError(c, err)
	}
	departments, err := h.storages.Departments.List()
	if err != nil {
		return api.SendError(c, err)
	}
	others := make([]uint, 0, len(departments))
	for _, d := range departments {
		if d.ID != own {
			others = append(others, d.ID)
		}
	}
	targets := arrays.Intersect(eligible, others)
	surveys, err := h.storages.Surveys.ForRatedDepartments(targets)
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(surveys)
}

func (h *handler) survey(c *fiber.Ctx) error {
	id, ok := positiveParam(c, "surveyID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid survey id"))
	}
	survey, err := h.storages.Surveys.Get(id)
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(survey)
}

func submissionResult(err error) string {
	var notEligible model.NotEligibleError
	var duplicate model.DuplicateSubmissionError
	var validation model.ValidationError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.As(err, &notEligible):
		return metrics.ResultNotEligible
	case errors.As(err, &duplicate):
		return metrics.ResultDuplicate
	case errors.As(err, &validation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

func (h *handler) submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
	}
	if req.SurveyID == 0 {
		return api.SendError(c, model.NewValidationError("survey_id", "survey_id is required"))
	}
	s := session(c)
	submission, err := h.recorder.Submit(
		engine.SubmitRequest{
			SurveyID:              req.SurveyID,
			SubmitterDepartmentID: s.DepartmentID,
			SubmitterUserID:       s.UserID,
			Answers:               req.Answers,
			OverallRating:         req.OverallRating,
			Suggestion:            req.Suggestion,
		},
	)
	metrics.Submissions.WithLabelValues(submissionResult(err)).Inc()
	if err != nil {
		return api.SendError(c, err)
	}
	log.WithFields(
		log.Fields{
			"submission": submission.ID,
			"survey":     submission.SurveyID,
			"from":       submission.SubmitterDepartmentID,
			"to":         submission.RatedDepartmentID,
		},
	).Info("recorded survey submission")
	return c.Status(fiber.StatusCreated).JSON(submission)
}

func (h *handler) mySubmissions(c *fiber.Ctx) error {
	list, err := h.storages.Submissions.ListByUser(session(c).UserID)
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(list)
}
