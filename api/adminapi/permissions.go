package adminapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/engine"
	"github.com/Durai69/LLS-Survey/internal/metrics"
	"github.com/Durai69/LLS-Survey/notify"
	"github.com/Durai69/LLS-Survey/storage/model"
)

// HeaderMatrixVersion carries the version of the returned matrix snapshot
const HeaderMatrixVersion = "X-Matrix-Version"

type permissionEntry struct {
	FromDepartmentID uint   `json:"from_department_id"`
	ToDepartmentID   uint   `json:"to_department_id"`
	CanSurveySelf    bool   `json:"can_survey_self"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
}

func permissionEntries(edges []model.PermissionEdge) []permissionEntry {
	entries := make([]permissionEntry, len(edges))
	for i, e := range edges {
		w := e.Window()
		entries[i] = permissionEntry{
			FromDepartmentID: e.FromDepartmentID,
			ToDepartmentID:   e.ToDepartmentID,
			CanSurveySelf:    e.CanSurveySelf,
			StartDate:        w.Start.Format(model.DateFormat),
			EndDate:          w.End.Format(model.DateFormat),
		}
	}
	return entries
}

// matrixRequest is the body of a save and of a mail alert request
type matrixRequest struct {
	AllowedPairs []model.AllowedPair `json:"allowed_pairs"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	Version      *uint64             `json:"version,omitempty"`
}

type saveResponse struct {
	Version      uint64              `json:"version"`
	Window       model.Window        `json:"window"`
	AllowedPairs []model.AllowedPair `json:"allowed_pairs"`
	Summary      engine.Summary      `json:"summary"`
}

type summaryResponse struct {
	engine.Summary
	Version     uint64        `json:"version"`
	Window      *model.Window `json:"window,omitempty"`
	LastSavedBy *savedBy      `json:"last_saved_by,omitempty"`
}

type savedBy struct {
	Username string    `json:"username"`
	Version  uint64    `json:"version"`
	SavedAt  time.Time `json:"saved_at"`
}

type previewRequest struct {
	AllowAll  []uint              `json:"allow_all"`
	RevokeAll []uint              `json:"revoke_all"`
	Toggle    []model.AllowedPair `json:"toggle"`
}

type previewResponse struct {
	Version      uint64              `json:"version"`
	AllowedPairs []model.AllowedPair `json:"allowed_pairs"`
	Summary      engine.Summary      `json:"summary"`
}

type alertRecord struct {
	SentAt time.Time    `json:"sent_at"`
	Alerts int          `json:"alerts"`
	Window model.Window `json:"window"`
	SentBy string       `json:"sent_by,omitempty"`
}

func etag(version uint64) string {
	return strconv.Quote(strconv.FormatUint(version, 10))
}

// versionFromIfMatch parses an If-Match header holding a single (possibly
// weak) etag
func versionFromIfMatch(header string) (uint64, bool) {
	v := strings.TrimSpace(header)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	if v == "" {
		return 0, false
	}
	version, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return version, true
}

func setVersionHeaders(c *fiber.Ctx, version uint64) {
	c.Set(fiber.HeaderETag, etag(version))
	c.Set(HeaderMatrixVersion, strconv.FormatUint(version, 10))
}

// canonicalRequest turns a matrixRequest into the canonical pair list and
// window, checking all department ids against the registry
func canonicalRequest(departments model.DepartmentStore, req matrixRequest) (
	[]model.AllowedPair, model.Window, map[uint]string, error,
) {
	window, err := model.NewWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, model.Window{}, nil, err
	}
	list, err := departments.List()
	if err != nil {
		return nil, model.Window{}, nil, err
	}
	pairs, err := engine.CanonicalPairs(req.AllowedPairs, model.DepartmentIDs(list))
	if err != nil {
		return nil, model.Window{}, nil, err
	}
	return pairs, window, model.DepartmentNames(list), nil
}

func saveResult(err error) string {
	var conflict model.ConflictError
	var validation model.ValidationError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.As(err, &conflict):
		return metrics.ResultConflict
	case errors.As(err, &validation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

func registerPermissions(r fiber.Router, storages model.Backends, notifier notify.Notifier, notifyOnSave bool) {
	g := r.Group("/permissions")
	permissions := storages.Permissions
	departments := storages.Departments
	kv := storages.KV

	g.Get(
		"/", func(c *fiber.Ctx) error {
			snap, err := permissions.Load()
			if err != nil {
				return api.SendError(c, err)
			}
			setVersionHeaders(c, snap.Version)
			return c.JSON(permissionEntries(snap.Edges))
		},
	)

	save := func(c *fiber.Ctx) error {
		var req matrixRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
		}
		var version uint64
		switch {
		case req.Version != nil:
			version = *req.Version
		default:
			var ok bool
			version, ok = versionFromIfMatch(c.Get(fiber.HeaderIfMatch))
			if !ok {
				metrics.MatrixSaves.WithLabelValues(metrics.ResultInvalid).Inc()
				return api.SendError(
					c, model.NewValidationError(
						"version", "the version of the edited matrix must be given in the body or as If-Match",
					),
				)
			}
		}
		pairs, window, names, err := canonicalRequest(departments, req)
		if err != nil {
			metrics.MatrixSaves.WithLabelValues(saveResult(err)).Inc()
			return api.SendError(c, err)
		}
		m := engine.MatrixFromPairs(pairs)
		snap, err := permissions.Save(version, m.Edges(window), window)
		metrics.MatrixSaves.WithLabelValues(saveResult(err)).Inc()
		if err != nil {
			return api.SendError(c, err)
		}
		metrics.AllowedEdges.Set(float64(m.Count()))
		if err = kv.SetAny(
			model.KeyValueScopePermissions, model.KeyValueKeyLastSavedBy, savedBy{
				Username: adminUser(c),
				Version:  snap.Version,
				SavedAt:  time.Now().UTC(),
			},
		); err != nil {
			log.WithError(err).Warn("could not record who saved the permission matrix")
		}
		log.WithFields(
			log.Fields{
				"version": snap.Version,
				"allowed": m.Count(),
				"window":  window.String(),
			},
		).Info("saved permission matrix")
		c.Locals(
			localSavedMatrix, &savedMatrix{
				Pairs:  pairs,
				Window: window,
				Names:  names,
			},
		)
		setVersionHeaders(c, snap.Version)
		return c.JSON(
			saveResponse{
				Version:      snap.Version,
				Window:       window,
				AllowedPairs: pairs,
				Summary:      engine.SummarizeMatrix(m, len(names)),
			},
		)
	}
	if notifyOnSave {
		g.Post("/", notifyOnSaveMiddleware(notifier), save)
	} else {
		g.Post("/", save)
	}

	g.Get(
		"/summary", func(c *fiber.Ctx) error {
			snap, err := permissions.Load()
			if err != nil {
				return api.SendError(c, err)
			}
			n, err := departments.Count()
			if err != nil {
				return api.SendError(c, err)
			}
			res := summaryResponse{
				Summary: engine.Summarize(snap.Edges, int(n)),
				Version: snap.Version,
			}
			if !snap.Window.IsZero() {
				res.Window = &snap.Window
			}
			var last savedBy
			found, err := kv.GetAs(model.KeyValueScopePermissions, model.KeyValueKeyLastSavedBy, &last)
			if err != nil {
				return api.SendError(c, err)
			}
			if found {
				res.LastSavedBy = &last
			}
			setVersionHeaders(c, snap.Version)
			return c.JSON(res)
		},
	)

	g.Post(
		"/preview", func(c *fiber.Ctx) error {
			var req previewRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
			}
			list, err := departments.List()
			if err != nil {
				return api.SendError(c, err)
			}
			ids := model.DepartmentIDs(list)
			names := model.DepartmentNames(list)
			for _, d := range append(append([]uint{}, req.AllowAll...), req.RevokeAll...) {
				if _, ok := names[d]; !ok {
					return api.SendError(c, model.NewValidationError("department_id", "unknown department %d", d))
				}
			}
			for _, p := range req.Toggle {
				if _, ok := names[p.FromDepartmentID]; !ok {
					return api.SendError(
						c, model.NewValidationError("from_dept_id", "unknown department %d", p.FromDepartmentID),
					)
				}
				if _, ok := names[p.ToDepartmentID]; !ok {
					return api.SendError(
						c, model.NewValidationError("to_dept_id", "unknown department %d", p.ToDepartmentID),
					)
				}
			}
			snap, err := permissions.Load()
			if err != nil {
				return api.SendError(c, err)
			}
			m := engine.MatrixFromEdges(snap.Edges)
			for _, d := range req.AllowAll {
				m = engine.AllowAllFor(m, d, ids)
			}
			for _, d := range req.RevokeAll {
				m = engine.RevokeAllFor(m, d, ids)
			}
			for _, p := range req.Toggle {
				m.Toggle(p.FromDepartmentID, p.ToDepartmentID)
			}
			setVersionHeaders(c, snap.Version)
			return c.JSON(
				previewResponse{
					Version:      snap.Version,
					AllowedPairs: m.Pairs(),
					Summary:      engine.SummarizeMatrix(m, len(ids)),
				},
			)
		},
	)

	g.Post(
		"/mail-alert", func(c *fiber.Ctx) error {
			var req matrixRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(api.ErrorInvalidRequest("invalid body"))
			}
			pairs, window, names, err := canonicalRequest(departments, req)
			if err != nil {
				return api.SendError(c, err)
			}
			alerts := notify.BuildAlerts(pairs, window, names, time.Now())
			if err = notifier.Notify(c.UserContext(), alerts); err != nil {
				return api.SendError(c, errors.Wrap(err, "could not send alerts"))
			}
			metrics.AlertsSent.Add(float64(len(alerts)))
			if err = kv.SetAny(
				model.KeyValueScopeAlerts, model.KeyValueKeyLastAlert, alertRecord{
					SentAt: time.Now().UTC(),
					Alerts: len(alerts),
					Window: window,
					SentBy: adminUser(c),
				},
			); err != nil {
				log.WithError(err).Warn("could not record sent alert")
			}
			return c.JSON(
				fiber.Map{
					"message": "alerts sent",
					"alerts":  len(alerts),
				},
			)
		},
	)
}
