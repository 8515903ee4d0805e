package engine

import (
	"sort"
	"time"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// PermissionReader reads the persisted edges of a department
type PermissionReader interface {
	Outgoing(fromID uint) ([]model.PermissionEdge, error)
}

// SubmissionLookup answers which pairs were already submitted in a window
type SubmissionLookup interface {
	Exists(submitterDepartmentID, ratedDepartmentID uint, window model.Window) (bool, error)
	SubmittedTargets(submitterDepartmentID uint, window model.Window) ([]uint, error)
}

// PairState is the state of an ordered department pair at a point in time
type PairState int

// Pair states; Submitted is terminal for the window
const (
	StateNotEligible PairState = iota
	StateEligible
	StateSubmitted
)

// String implements the fmt.Stringer interface
func (s PairState) String() string {
	switch s {
	case StateEligible:
		return "eligible"
	case StateSubmitted:
		return "submitted"
	default:
		return "not_eligible"
	}
}

// Resolver derives eligibility from the stored matrix and submissions on
// every call; nothing is cached.
type Resolver struct {
	permissions PermissionReader
	submissions SubmissionLookup
}

// NewResolver creates a Resolver
func NewResolver(permissions PermissionReader, submissions SubmissionLookup) *Resolver {
	return &Resolver{
		permissions: permissions,
		submissions: submissions,
	}
}

// activeWindows returns for every target the window of the active edge that
// covers now. If several edges for the same target cover now, the one with
// the earliest start anchors the pair.
func activeWindows(from uint, edges []model.PermissionEdge, now time.Time) map[uint]model.Window {
	active := make(map[uint]model.Window)
	for _, e := range edges {
		if e.FromDepartmentID != from || !e.Usable() {
			continue
		}
		w := e.Window()
		if !w.Contains(now) {
			continue
		}
		if cur, ok := active[e.ToDepartmentID]; ok && !w.Start.Before(cur.Start) {
			continue
		}
		active[e.ToDepartmentID] = w
	}
	return active
}

// ResolveEligibility returns the sorted ids of the departments departmentID
// may submit a survey for at now. An empty result is valid.
func (r *Resolver) ResolveEligibility(departmentID uint, now time.Time) ([]uint, error) {
	edges, err := r.permissions.Outgoing(departmentID)
	if err != nil {
		return nil, err
	}
	active := activeWindows(departmentID, edges, now)

	byWindow := make(map[model.Window][]uint)
	for to, w := range active {
		byWindow[w] = append(byWindow[w], to)
	}
	eligible := []uint{}
	for w, targets := range byWindow {
		submitted, err := r.submissions.SubmittedTargets(departmentID, w)
		if err != nil {
			return nil, err
		}
		done := make(map[uint]struct{}, len(submitted))
		for _, s := range submitted {
			done[s] = struct{}{}
		}
		for _, t := range targets {
			if _, ok := done[t]; !ok {
				eligible = append(eligible, t)
			}
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })
	return eligible, nil
}

// PairState returns the state of (from, to) at now and, unless the pair is
// not eligible, the window the pair is anchored to.
func (r *Resolver) PairState(from, to uint, now time.Time) (PairState, model.Window, error) {
	edges, err := r.permissions.Outgoing(from)
	if err != nil {
		return StateNotEligible, model.Window{}, err
	}
	w, ok := activeWindows(from, edges, now)[to]
	if !ok {
		return StateNotEligible, model.Window{}, nil
	}
	submitted, err := r.submissions.Exists(from, to, w)
	if err != nil {
		return StateNotEligible, model.Window{}, err
	}
	if submitted {
		return StateSubmitted, w, nil
	}
	return StateEligible, w, nil
}

// IsEligible reports whether from may submit a survey about to at now
func (r *Resolver) IsEligible(from, to uint, now time.Time) (bool, error) {
	state, _, err := r.PairState(from, to, now)
	return state == StateEligible, err
}
