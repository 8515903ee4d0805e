// Package userapi implements the API used by department members: listing
// and submitting surveys, and working with remarks.
package userapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/engine"
	"github.com/Durai69/LLS-Survey/storage/model"
)

// Options configures the user API
type Options struct {
	// Tokens verifies session tokens; required
	Tokens *Tokens
	// Clock overrides the time eligibility is evaluated at
	Clock func() time.Time
}

type handler struct {
	storages model.Backends
	recorder *engine.Recorder
	now      func() time.Time
}

// Register mounts all user API routes under the provided group
func Register(r fiber.Router, storages model.Backends, opts Options) error {
	if opts.Tokens == nil {
		return errors.New("userapi: no token verifier configured")
	}
	h := &handler{
		storages: storages,
		recorder: engine.NewRecorder(storages.Surveys, storages.Permissions, storages.Submissions),
		now:      time.Now,
	}
	if opts.Clock != nil {
		h.now = opts.Clock
		h.recorder = h.recorder.WithClock(opts.Clock)
	}

	r.Use(authMiddleware(opts.Tokens))

	r.Get("/departments", h.departments)
	r.Get("/eligibility", h.eligibility)
	r.Get("/eligibility/:departmentID", h.pairState)
	r.Get("/surveys/available", h.availableSurveys)
	r.Get("/surveys/:surveyID", h.survey)
	r.Post("/submissions", h.submit)
	r.Get("/submissions/mine", h.mySubmissions)
	r.Get("/remarks/incoming", h.incomingRemarks)
	r.Get("/remarks/outgoing", h.outgoingRemarks)
	r.Post("/remarks/:submissionID/:questionID/response", h.respond)
	return nil
}

func (h *handler) departments(c *fiber.Ctx) error {
	list, err := h.storages.Departments.List()
	if err != nil {
		return api.SendError(c, err)
	}
	return c.JSON(list)
}

func positiveParam(c *fiber.Ctx, name string) (uint, bool) {
	v, err := c.ParamsInt(name)
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint(v), true
}
