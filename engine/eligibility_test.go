package engine

import (
	"reflect"
	"testing"

	"github.com/Durai69/LLS-Survey/storage/model"
)

func TestResolveEligibility(t *testing.T) {
	perms := &stubPermissions{
		edges: []model.PermissionEdge{
			edge(deptIT, deptHR, january()),
			edge(deptHR, deptIT, january()),
		},
	}
	r := NewResolver(perms, newStubSubmissions())
	now := date("2025-01-15")

	tests := []struct {
		name     string
		dept     uint
		expected []uint
	}{
		{
			name:     "IT",
			dept:     deptIT,
			expected: []uint{deptHR},
		},
		{
			name:     "HR",
			dept:     deptHR,
			expected: []uint{deptIT},
		},
		{
			name:     "QA",
			dept:     deptQA,
			expected: []uint{},
		},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				got, err := r.ResolveEligibility(test.dept, now)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !reflect.DeepEqual(got, test.expected) {
					t.Errorf("expected %v, got %v", test.expected, got)
				}
			},
		)
	}
}

func TestResolveEligibilityWindowBounds(t *testing.T) {
	perms := &stubPermissions{edges: []model.PermissionEdge{edge(deptIT, deptHR, january())}}
	r := NewResolver(perms, newStubSubmissions())

	tests := []struct {
		now      string
		eligible bool
	}{
		{now: "2024-12-31", eligible: false},
		{now: "2025-01-01", eligible: true},
		{now: "2025-01-31", eligible: true},
		{now: "2025-01-31T23:59:00Z", eligible: true},
		{now: "2025-02-01", eligible: false},
	}
	for _, test := range tests {
		t.Run(
			test.now, func(t *testing.T) {
				now, err := model.ParseDate(test.now)
				if err != nil {
					t.Fatal(err)
				}
				ok, err := r.IsEligible(deptIT, deptHR, now)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ok != test.eligible {
					t.Errorf("expected eligible=%v at %s", test.eligible, test.now)
				}
			},
		)
	}
}

func TestResolveEligibilityExcludesSubmitted(t *testing.T) {
	perms := &stubPermissions{
		edges: []model.PermissionEdge{
			edge(deptIT, deptHR, january()),
			edge(deptIT, deptQA, january()),
		},
	}
	subs := newStubSubmissions()
	r := NewResolver(perms, subs)
	now := date("2025-01-15")

	sub := &model.SurveySubmission{SubmitterDepartmentID: deptIT, RatedDepartmentID: deptHR, SubmittedAt: now}
	sub.SetWindow(january())
	if err := subs.Insert(sub); err != nil {
		t.Fatal(err)
	}

	got, err := r.ResolveEligibility(deptIT, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []uint{deptQA}) {
		t.Fatalf("expected only QA, got %v", got)
	}
	state, w, err := r.PairState(deptIT, deptHR, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateSubmitted || !w.Equal(january()) {
		t.Fatalf("expected submitted in january, got %s %s", state, w)
	}
	if ok, _ := r.IsEligible(deptIT, deptHR, now); ok {
		t.Fatalf("submitted pair must not be eligible")
	}

	// a new window reopens the pair
	february := model.Window{Start: date("2025-02-01"), End: date("2025-02-28")}
	perms.edges = []model.PermissionEdge{edge(deptIT, deptHR, february)}
	if ok, _ := r.IsEligible(deptIT, deptHR, date("2025-02-10")); !ok {
		t.Fatalf("expected pair to be eligible again in a new window")
	}
}

func TestResolveEligibilitySelfEdges(t *testing.T) {
	unflagged := edge(deptQA, deptQA, january())
	flagged := edge(deptHR, deptHR, january())
	flagged.CanSurveySelf = true
	r := NewResolver(&stubPermissions{edges: []model.PermissionEdge{unflagged, flagged}}, newStubSubmissions())
	now := date("2025-01-15")

	if ok, _ := r.IsEligible(deptQA, deptQA, now); ok {
		t.Errorf("unflagged self edge must be ignored")
	}
	if ok, _ := r.IsEligible(deptHR, deptHR, now); !ok {
		t.Errorf("flagged legacy self edge must be honored")
	}
}

func TestResolveEligibilityOverlappingEdges(t *testing.T) {
	wide := model.Window{Start: date("2024-12-01"), End: date("2025-02-28")}
	r := NewResolver(
		&stubPermissions{
			edges: []model.PermissionEdge{
				edge(deptIT, deptHR, january()),
				edge(deptIT, deptHR, wide),
			},
		}, newStubSubmissions(),
	)
	state, w, err := r.PairState(deptIT, deptHR, date("2025-01-15"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateEligible {
		t.Fatalf("expected eligible, got %s", state)
	}
	if !w.Equal(wide) {
		t.Fatalf("expected earliest starting window to anchor the pair, got %s", w)
	}
	if ok, _ := r.IsEligible(deptIT, deptHR, date("2025-02-15")); !ok {
		t.Fatalf("expected eligible while any edge covers now")
	}
}
