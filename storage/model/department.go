package model

import (
	"time"
)

// Department is a stable organizational unit that surveys and is surveyed by
// other departments.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	Name      string    `gorm:"size:191;uniqueIndex;not null" json:"name"`
}

// DepartmentStore is the read side of the department registry plus the
// minimal write access used by the CLI.
type DepartmentStore interface {
	// List returns all departments ordered by name
	List() ([]Department, error)
	// Get returns a department by id
	Get(id uint) (*Department, error)
	// GetByName returns a department by its unique name
	GetByName(name string) (*Department, error)
	// Create adds a department
	Create(name string) (*Department, error)
	// Count returns the number of registered departments
	Count() (int64, error)
}

// DepartmentNames maps department ids to names
func DepartmentNames(departments []Department) map[uint]string {
	names := make(map[uint]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}
	return names
}

// DepartmentIDs returns the ids of the passed departments in order
func DepartmentIDs(departments []Department) []uint {
	ids := make([]uint, len(departments))
	for i, d := range departments {
		ids[i] = d.ID
	}
	return ids
}
