// Package notify builds and delivers permission change alerts. Actual mail
// delivery is done by an external mailer; this package either logs the alerts
// or hands them over through a redis list.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Alert tells the members of one department which departments they can
// survey in a window
type Alert struct {
	ID             string       `json:"id"`
	DepartmentID   uint         `json:"department_id"`
	DepartmentName string       `json:"department_name"`
	Targets        []string     `json:"targets"`
	Window         model.Window `json:"window"`
	Message        string       `json:"message"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Notifier delivers alerts
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}

// BuildAlerts creates one alert per source department of pairs. Pairs must
// already be canonical; departments without a known name are skipped, as are
// carried self pairs.
func BuildAlerts(pairs []model.AllowedPair, window model.Window, names map[uint]string, now time.Time) []Alert {
	targets := make(map[uint][]string)
	for _, p := range pairs {
		if p.FromDepartmentID == p.ToDepartmentID {
			continue
		}
		if _, ok := names[p.FromDepartmentID]; !ok {
			continue
		}
		to, ok := names[p.ToDepartmentID]
		if !ok {
			continue
		}
		targets[p.FromDepartmentID] = append(targets[p.FromDepartmentID], to)
	}

	alerts := make([]Alert, 0, len(targets))
	for from, to := range targets {
		sort.Strings(to)
		a := Alert{
			ID:             uuid.NewString(),
			DepartmentID:   from,
			DepartmentName: names[from],
			Targets:        to,
			Window:         window,
			CreatedAt:      now.UTC(),
		}
		a.Message = alertMessage(a)
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].DepartmentName < alerts[j].DepartmentName })
	return alerts
}

func alertMessage(a Alert) string {
	return fmt.Sprintf(
		"Department %s can now survey: %s. Survey period: %s to %s.",
		a.DepartmentName, strings.Join(a.Targets, ", "),
		a.Window.Start.Format(model.DateFormat), a.Window.End.Format(model.DateFormat),
	)
}

