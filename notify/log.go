package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogNotifier writes alerts to the internal log
type LogNotifier struct {
	Logger log.FieldLogger
}

// Notify implements the Notifier interface
func (n LogNotifier) Notify(_ context.Context, alerts []Alert) error {
	logger := n.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	for _, a := range alerts {
		logger.WithFields(
			log.Fields{
				"alert_id":   a.ID,
				"department": a.DepartmentName,
				"targets":    len(a.Targets),
			},
		).Info(a.Message)
	}
	return nil
}
