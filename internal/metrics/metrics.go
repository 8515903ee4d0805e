// Package metrics holds the prometheus collectors of the survey server
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "llssurvey"

// Results used as label values
const (
	ResultOK          = "ok"
	ResultConflict    = "conflict"
	ResultInvalid     = "invalid"
	ResultNotEligible = "not_eligible"
	ResultDuplicate   = "duplicate"
	ResultError       = "error"
)

// Registry is the registry all collectors of this package are registered at
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// MatrixSaves counts permission matrix saves by result
	MatrixSaves = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrix_saves_total",
			Help:      "Number of permission matrix save attempts by result.",
		}, []string{"result"},
	)
	// Submissions counts survey submissions by result
	Submissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Number of survey submission attempts by result.",
		}, []string{"result"},
	)
	// AlertsSent counts delivered permission alerts
	AlertsSent = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Number of permission change alerts handed to the notifier.",
		},
	)
	// AllowedEdges is the number of allowed pairs after the last save
	AllowedEdges = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allowed_edges",
			Help:      "Number of allowed department pairs in the current permission matrix.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler returns the http.Handler exposing all metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
