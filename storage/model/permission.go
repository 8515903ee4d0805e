package model

import (
	"time"

	"gorm.io/datatypes"
)

// PermissionEdge is a persisted grant allowing FromDepartmentID to survey
// ToDepartmentID while the edge's window is active. A revoked pair has no
// edge at all.
type PermissionEdge struct {
	ID               uint           `gorm:"primaryKey" json:"-"`
	FromDepartmentID uint           `gorm:"not null;uniqueIndex:idx_permission_pair" json:"from_department_id"`
	ToDepartmentID   uint           `gorm:"not null;uniqueIndex:idx_permission_pair" json:"to_department_id"`
	WindowStart      datatypes.Date `gorm:"not null" json:"start_date"`
	WindowEnd        datatypes.Date `gorm:"not null" json:"end_date"`
	// CanSurveySelf only has meaning on legacy self edges (from == to)
	CanSurveySelf bool `json:"can_survey_self"`
}

// TableName implements the gorm.Tabler interface
func (PermissionEdge) TableName() string {
	return "permissions"
}

// Window returns the validity window of this edge
func (e PermissionEdge) Window() Window {
	return Window{
		Start: DateOf(time.Time(e.WindowStart)),
		End:   DateOf(time.Time(e.WindowEnd)),
	}
}

// SetWindow sets the validity window of this edge
func (e *PermissionEdge) SetWindow(w Window) {
	e.WindowStart = datatypes.Date(DateOf(w.Start))
	e.WindowEnd = datatypes.Date(DateOf(w.End))
}

// IsSelf reports whether this is a self edge
func (e PermissionEdge) IsSelf() bool {
	return e.FromDepartmentID == e.ToDepartmentID
}

// Usable reports whether the edge can grant a survey at all; self edges are
// only honored when explicitly flagged.
func (e PermissionEdge) Usable() bool {
	return !e.IsSelf() || e.CanSurveySelf
}

// AllowedPair is the wire representation of an allowed (from, to) pair, as
// sent by administrators when saving the matrix or requesting an alert.
type AllowedPair struct {
	FromDepartmentID uint `json:"from_dept_id"`
	ToDepartmentID   uint `json:"to_dept_id"`
	CanSurveySelf    bool `json:"can_survey_self"`
}

// MatrixRevision holds the optimistic concurrency version of the permission
// matrix. There is exactly one row.
type MatrixRevision struct {
	ID        uint   `gorm:"primaryKey"`
	Version   uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// MatrixRevisionID is the primary key of the single MatrixRevision row
const MatrixRevisionID = 1

// MatrixSnapshot is a consistent, read-only view of the stored matrix.
type MatrixSnapshot struct {
	Version uint64           `json:"version"`
	Window  Window           `json:"window"`
	Edges   []PermissionEdge `json:"edges"`
}

// PermissionStore persists the permission matrix. Saves replace the whole
// matrix and are guarded by an optimistic version check.
type PermissionStore interface {
	// Load returns the complete current matrix; never a partial one
	Load() (*MatrixSnapshot, error)
	// Save replaces all edges and the window if expectedVersion still is
	// the current version; otherwise a ConflictError is returned.
	Save(expectedVersion uint64, edges []PermissionEdge, window Window) (*MatrixSnapshot, error)
	// Outgoing returns all persisted edges starting at the passed department
	Outgoing(fromID uint) ([]PermissionEdge, error)
}
