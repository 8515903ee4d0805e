package engine

import (
	"sort"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Pair is an ordered (from, to) department pair
type Pair struct {
	From uint
	To   uint
}

// Matrix is an editable permission matrix keyed by ordered department pairs.
// Off-diagonal cells are set through Set, Toggle and the bulk operations;
// none of them ever touches a diagonal cell. Self pairs only exist when they
// were loaded from legacy edges and are carried through unchanged.
type Matrix struct {
	allowed map[Pair]struct{}
	self    map[uint]struct{}
}

// NewMatrix returns an empty matrix
func NewMatrix() *Matrix {
	return &Matrix{
		allowed: make(map[Pair]struct{}),
		self:    make(map[uint]struct{}),
	}
}

// MatrixFromEdges builds a matrix from stored edges. Self edges are kept only
// if flagged with CanSurveySelf.
func MatrixFromEdges(edges []model.PermissionEdge) *Matrix {
	m := NewMatrix()
	for _, e := range edges {
		if e.IsSelf() {
			if e.CanSurveySelf {
				m.self[e.FromDepartmentID] = struct{}{}
			}
			continue
		}
		m.allowed[Pair{e.FromDepartmentID, e.ToDepartmentID}] = struct{}{}
	}
	return m
}

// MatrixFromPairs builds a matrix from allowed pairs as sent by clients
func MatrixFromPairs(pairs []model.AllowedPair) *Matrix {
	m := NewMatrix()
	for _, p := range pairs {
		if p.FromDepartmentID == p.ToDepartmentID {
			if p.CanSurveySelf {
				m.self[p.FromDepartmentID] = struct{}{}
			}
			continue
		}
		m.allowed[Pair{p.FromDepartmentID, p.ToDepartmentID}] = struct{}{}
	}
	return m
}

// Clone returns an independent copy of the matrix
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix()
	for p := range m.allowed {
		c.allowed[p] = struct{}{}
	}
	for d := range m.self {
		c.self[d] = struct{}{}
	}
	return c
}

// Allowed reports whether from may survey to
func (m *Matrix) Allowed(from, to uint) bool {
	if from == to {
		_, ok := m.self[from]
		return ok
	}
	_, ok := m.allowed[Pair{from, to}]
	return ok
}

// Set grants or revokes a single off-diagonal cell; diagonal cells are ignored
func (m *Matrix) Set(from, to uint, allowed bool) {
	if from == to {
		return
	}
	p := Pair{from, to}
	if allowed {
		m.allowed[p] = struct{}{}
	} else {
		delete(m.allowed, p)
	}
}

// Toggle flips a single off-diagonal cell; diagonal cells are ignored
func (m *Matrix) Toggle(from, to uint) {
	m.Set(from, to, !m.Allowed(from, to))
}

// BulkSetRow sets the cells (from, t) for every t in targets, skipping from
// itself
func (m *Matrix) BulkSetRow(from uint, targets []uint, allowed bool) {
	for _, t := range targets {
		m.Set(from, t, allowed)
	}
}

// Count returns the number of allowed off-diagonal cells
func (m *Matrix) Count() int {
	return len(m.allowed)
}

// Pairs returns the canonical, sorted list of allowed pairs, including carried
// self pairs
func (m *Matrix) Pairs() []model.AllowedPair {
	pairs := make([]model.AllowedPair, 0, len(m.allowed)+len(m.self))
	for p := range m.allowed {
		pairs = append(
			pairs, model.AllowedPair{
				FromDepartmentID: p.From,
				ToDepartmentID:   p.To,
			},
		)
	}
	for d := range m.self {
		pairs = append(
			pairs, model.AllowedPair{
				FromDepartmentID: d,
				ToDepartmentID:   d,
				CanSurveySelf:    true,
			},
		)
	}
	sort.Slice(
		pairs, func(i, j int) bool {
			if pairs[i].FromDepartmentID != pairs[j].FromDepartmentID {
				return pairs[i].FromDepartmentID < pairs[j].FromDepartmentID
			}
			return pairs[i].ToDepartmentID < pairs[j].ToDepartmentID
		},
	)
	return pairs
}

// Edges returns the matrix as edges sharing the passed window
func (m *Matrix) Edges(window model.Window) []model.PermissionEdge {
	pairs := m.Pairs()
	edges := make([]model.PermissionEdge, len(pairs))
	for i, p := range pairs {
		edges[i] = model.PermissionEdge{
			FromDepartmentID: p.FromDepartmentID,
			ToDepartmentID:   p.ToDepartmentID,
			CanSurveySelf:    p.CanSurveySelf,
		}
		edges[i].SetWindow(window)
	}
	return edges
}

// BulkSetRow returns a copy of m where every cell (from, t), t in targets,
// is set to allowed. The diagonal is never touched.
func BulkSetRow(m *Matrix, from uint, targets []uint, allowed bool) *Matrix {
	c := m.Clone()
	c.BulkSetRow(from, targets, allowed)
	return c
}

// AllowAllFor returns a candidate matrix in which departmentID may survey every
// other department. It has no effect until saved.
func AllowAllFor(m *Matrix, departmentID uint, departments []uint) *Matrix {
	return BulkSetRow(m, departmentID, departments, true)
}

// RevokeAllFor returns a candidate matrix in which departmentID may survey no
// other department. It has no effect until saved.
func RevokeAllFor(m *Matrix, departmentID uint, departments []uint) *Matrix {
	return BulkSetRow(m, departmentID, departments, false)
}

// CanonicalPairs is the single construction of the allowed pair list used by
// saving and by alerting. It rejects pairs naming unknown departments and
// self pairs without CanSurveySelf, and removes duplicates.
func CanonicalPairs(pairs []model.AllowedPair, departments []uint) ([]model.AllowedPair, error) {
	known := make(map[uint]struct{}, len(departments))
	for _, d := range departments {
		known[d] = struct{}{}
	}
	for _, p := range pairs {
		if _, ok := known[p.FromDepartmentID]; !ok {
			return nil, model.NewValidationError("from_dept_id", "unknown department %d", p.FromDepartmentID)
		}
		if _, ok := known[p.ToDepartmentID]; !ok {
			return nil, model.NewValidationError("to_dept_id", "unknown department %d", p.ToDepartmentID)
		}
		if p.FromDepartmentID == p.ToDepartmentID && !p.CanSurveySelf {
			return nil, model.NewValidationError(
				"allowed_pairs", "department %d cannot be allowed to survey itself", p.FromDepartmentID,
			)
		}
	}
	return MatrixFromPairs(pairs).Pairs(), nil
}
