package engine

import (
	"errors"
	"testing"

	"github.com/Durai69/LLS-Survey/storage/model"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		edges    []model.PermissionEdge
		n        int
		expected Summary
	}{
		{
			name:     "no departments",
			n:        0,
			expected: Summary{},
		},
		{
			name:     "single department",
			n:        1,
			expected: Summary{},
		},
		{
			name:     "empty matrix",
			n:        3,
			expected: Summary{Total: 6, Restricted: 6},
		},
		{
			name: "two edges",
			edges: []model.PermissionEdge{
				edge(deptIT, deptHR, january()),
				edge(deptHR, deptIT, january()),
			},
			n:        3,
			expected: Summary{Total: 6, Allowed: 2, Restricted: 4, ProgressRate: 33},
		},
		{
			name: "self edge does not count",
			edges: []model.PermissionEdge{
				edge(deptIT, deptHR, january()),
				{FromDepartmentID: deptQA, ToDepartmentID: deptQA, CanSurveySelf: true},
			},
			n:        3,
			expected: Summary{Total: 6, Allowed: 1, Restricted: 5, ProgressRate: 17},
		},
		{
			name: "duplicate edges count once",
			edges: []model.PermissionEdge{
				edge(deptIT, deptHR, january()),
				edge(deptIT, deptHR, january()),
			},
			n:        2,
			expected: Summary{Total: 2, Allowed: 1, Restricted: 1, ProgressRate: 50},
		},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				s := Summarize(test.edges, test.n)
				if s != test.expected {
					t.Errorf("expected %+v, got %+v", test.expected, s)
				}
				if s.Allowed+s.Restricted != s.Total {
					t.Errorf("allowed + restricted != total: %+v", s)
				}
			},
		)
	}
}

func TestMatrixNeverTouchesDiagonal(t *testing.T) {
	m := NewMatrix()
	m.Toggle(deptIT, deptIT)
	m.Set(deptHR, deptHR, true)
	m.BulkSetRow(deptQA, allDepartments, true)
	for _, d := range allDepartments {
		if m.Allowed(d, d) {
			t.Fatalf("self pair %d was created", d)
		}
	}
	if m.Count() != 2 {
		t.Fatalf("expected 2 allowed cells, got %d", m.Count())
	}
}

func TestMatrixToggle(t *testing.T) {
	m := NewMatrix()
	m.Toggle(deptIT, deptHR)
	if !m.Allowed(deptIT, deptHR) {
		t.Fatalf("expected IT->HR to be allowed")
	}
	if m.Allowed(deptHR, deptIT) {
		t.Fatalf("toggle must be directed")
	}
	m.Toggle(deptIT, deptHR)
	if m.Allowed(deptIT, deptHR) {
		t.Fatalf("expected IT->HR to be revoked")
	}
}

func TestMatrixCarriesLegacySelfEdge(t *testing.T) {
	m := MatrixFromEdges(
		[]model.PermissionEdge{
			{FromDepartmentID: deptQA, ToDepartmentID: deptQA, CanSurveySelf: true},
			{FromDepartmentID: deptHR, ToDepartmentID: deptHR},
		},
	)
	m = RevokeAllFor(m, deptQA, allDepartments)
	pairs := m.Pairs()
	if len(pairs) != 1 {
		t.Fatalf("expected only the flagged self pair, got %+v", pairs)
	}
	if p := pairs[0]; p.FromDepartmentID != deptQA || p.ToDepartmentID != deptQA || !p.CanSurveySelf {
		t.Fatalf("unexpected pair %+v", p)
	}
}

func TestAllowAllForRaisesAllowedByTwo(t *testing.T) {
	before := NewMatrix()
	before.Set(deptHR, deptIT, true)
	sBefore := SummarizeMatrix(before, len(allDepartments))

	after := AllowAllFor(before, deptIT, allDepartments)
	sAfter := SummarizeMatrix(after, len(allDepartments))

	if sAfter.Allowed-sBefore.Allowed != 2 {
		t.Fatalf("expected allowed to increase by 2, before %+v after %+v", sBefore, sAfter)
	}
	if sBefore.Restricted-sAfter.Restricted != 2 {
		t.Fatalf("expected restricted to decrease by 2, before %+v after %+v", sBefore, sAfter)
	}
	if before.Allowed(deptIT, deptHR) {
		t.Fatalf("candidate matrix must not modify the original")
	}

	revoked := RevokeAllFor(after, deptIT, allDepartments)
	if s := SummarizeMatrix(revoked, len(allDepartments)); s != sBefore {
		t.Fatalf("expected revoke to restore %+v, got %+v", sBefore, s)
	}
}

func TestBulkSetRowSkipsSelf(t *testing.T) {
	m := BulkSetRow(NewMatrix(), deptHR, []uint{deptIT, deptHR, deptQA}, true)
	if m.Allowed(deptHR, deptHR) {
		t.Fatalf("bulk set created a self pair")
	}
	if !m.Allowed(deptHR, deptIT) || !m.Allowed(deptHR, deptQA) {
		t.Fatalf("expected HR row to be allowed: %+v", m.Pairs())
	}
}

func TestCanonicalPairs(t *testing.T) {
	pairs, err := CanonicalPairs(
		[]model.AllowedPair{
			{FromDepartmentID: deptHR, ToDepartmentID: deptIT},
			{FromDepartmentID: deptIT, ToDepartmentID: deptHR},
			{FromDepartmentID: deptIT, ToDepartmentID: deptHR},
		}, allDepartments,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected duplicates to be removed, got %+v", pairs)
	}
	if pairs[0].FromDepartmentID != deptIT || pairs[1].FromDepartmentID != deptHR {
		t.Fatalf("expected sorted pairs, got %+v", pairs)
	}

	var vErr model.ValidationError
	_, err = CanonicalPairs([]model.AllowedPair{{FromDepartmentID: deptIT, ToDepartmentID: 99}}, allDepartments)
	if !errors.As(err, &vErr) || vErr.Field != "to_dept_id" {
		t.Fatalf("expected validation error on to_dept_id, got %v", err)
	}
	_, err = CanonicalPairs([]model.AllowedPair{{FromDepartmentID: deptIT, ToDepartmentID: deptIT}}, allDepartments)
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for unflagged self pair, got %v", err)
	}
	pairs, err = CanonicalPairs(
		[]model.AllowedPair{{FromDepartmentID: deptIT, ToDepartmentID: deptIT, CanSurveySelf: true}},
		allDepartments,
	)
	if err != nil || len(pairs) != 1 {
		t.Fatalf("expected flagged self pair to round-trip, got %+v, %v", pairs, err)
	}
}

func TestMatrixEdgesShareWindow(t *testing.T) {
	m := NewMatrix()
	m.Set(deptIT, deptHR, true)
	m.Set(deptQA, deptHR, true)
	w := january()
	for _, e := range m.Edges(w) {
		if !e.Window().Equal(w) {
			t.Fatalf("edge %+v does not carry window %s", e, w)
		}
	}
}
