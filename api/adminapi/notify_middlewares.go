package adminapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/internal/metrics"
	"github.com/Durai69/LLS-Survey/notify"
	"github.com/Durai69/LLS-Survey/storage/model"
)

const localSavedMatrix = "saved_matrix"

// savedMatrix is what a successful save handler leaves in the request locals
type savedMatrix struct {
	Pairs  []model.AllowedPair
	Window model.Window
	Names  map[uint]string
}

// notifyOnSaveMiddleware sends the alerts for the saved matrix after the
// save handler responded successfully. A failing notifier does not fail the
// already committed save.
func notifyOnSaveMiddleware(notifier notify.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 400 {
			return nil
		}
		saved, ok := c.Locals(localSavedMatrix).(*savedMatrix)
		if !ok || saved == nil {
			return nil
		}
		alerts := notify.BuildAlerts(saved.Pairs, saved.Window, saved.Names, time.Now())
		if err := notifier.Notify(c.UserContext(), alerts); err != nil {
			log.WithError(err).Error("could not send alerts for saved permission matrix")
			return nil
		}
		metrics.AlertsSent.Add(float64(len(alerts)))
		return nil
	}
}
