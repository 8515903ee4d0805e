package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// PermissionsStorage persists the permission matrix together with its
// revision and window.
type PermissionsStorage struct {
	db *gorm.DB
}

// PermissionsStorage returns a PermissionsStorage
func (s *Storage) PermissionsStorage() *PermissionsStorage {
	return &PermissionsStorage{db: s.db}
}

// Load returns a consistent snapshot of the matrix; edges, version and window
// are read within one transaction.
func (s *PermissionsStorage) Load() (*model.MatrixSnapshot, error) {
	snap := &model.MatrixSnapshot{}
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var rev model.MatrixRevision
			if err := tx.First(&rev, model.MatrixRevisionID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Wrap(err, "permissions: load revision failed")
				}
			}
			snap.Version = rev.Version
			if err := tx.Order("from_department_id, to_department_id").Find(&snap.Edges).Error; err != nil {
				return errors.Wrap(err, "permissions: load edges failed")
			}
			kv := &KeyValueStorage{db: tx}
			found, err := kv.GetAs(model.KeyValueScopePermissions, model.KeyValueKeyWindow, &snap.Window)
			if err != nil {
				return errors.Wrap(err, "permissions: load window failed")
			}
			if !found && len(snap.Edges) > 0 {
				snap.Window = snap.Edges[0].Window()
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	if snap.Edges == nil {
		snap.Edges = []model.PermissionEdge{}
	}
	return snap, nil
}

// Save replaces the complete matrix. The revision is bumped with a
// conditional update, so of two saves based on the same version only the
// first one succeeds; the other gets a model.ConflictError.
func (s *PermissionsStorage) Save(
	expectedVersion uint64, edges []model.PermissionEdge, window model.Window,
) (*model.MatrixSnapshot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	stored := make([]model.PermissionEdge, len(edges))
	for i, e := range edges {
		e.ID = 0
		e.SetWindow(window)
		stored[i] = e
	}
	snap := &model.MatrixSnapshot{
		Version: expectedVersion + 1,
		Window:  window,
	}
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			res := tx.Model(&model.MatrixRevision{}).
				Where("id = ? AND version = ?", model.MatrixRevisionID, expectedVersion).
				Updates(
					map[string]any{
						"version":    gorm.Expr("version + 1"),
						"updated_at": time.Now(),
					},
				)
			if res.Error != nil {
				return errors.Wrap(res.Error, "permissions: bump revision failed")
			}
			if res.RowsAffected == 0 {
				return model.ConflictError("permission matrix was modified in the meantime; reload and retry")
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Delete(&model.PermissionEdge{}).Error; err != nil {
				return errors.Wrap(err, "permissions: clearing edges failed")
			}
			if len(stored) > 0 {
				if err := tx.CreateInBatches(&stored, 200).Error; err != nil {
					if isUniqueConstraintError(err) {
						return model.NewValidationError("allowed_pairs", "duplicate pair")
					}
					return errors.Wrap(err, "permissions: storing edges failed")
				}
			}
			kv := &KeyValueStorage{db: tx}
			if err := kv.SetAny(model.KeyValueScopePermissions, model.KeyValueKeyWindow, window); err != nil {
				return errors.Wrap(err, "permissions: storing window failed")
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	snap.Edges = stored
	return snap, nil
}

// Outgoing returns all edges starting at fromID
func (s *PermissionsStorage) Outgoing(fromID uint) ([]model.PermissionEdge, error) {
	var edges []model.PermissionEdge
	if err := s.db.Where("from_department_id = ?", fromID).
		Order("to_department_id").
		Find(&edges).Error; err != nil {
		return nil, errors.Wrap(err, "permissions: outgoing failed")
	}
	return edges, nil
}
