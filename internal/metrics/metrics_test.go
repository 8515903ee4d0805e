package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(MatrixSaves.WithLabelValues(ResultConflict))
	MatrixSaves.WithLabelValues(ResultConflict).Inc()
	if got := testutil.ToFloat64(MatrixSaves.WithLabelValues(ResultConflict)); got != before+1 {
		t.Fatalf("expected %f, got %f", before+1, got)
	}
	AllowedEdges.Set(6)
	if got := testutil.ToFloat64(AllowedEdges); got != 6 {
		t.Fatalf("expected 6 allowed edges, got %f", got)
	}
}

func TestHandler(t *testing.T) {
	Submissions.WithLabelValues(ResultOK).Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"llssurvey_submissions_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output does not contain %q", want)
		}
	}
}
