package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// DepartmentsStorage provides access to Department records.
type DepartmentsStorage struct {
	db *gorm.DB
}

// DepartmentsStorage returns a DepartmentsStorage
func (s *Storage) DepartmentsStorage() *DepartmentsStorage {
	return &DepartmentsStorage{db: s.db}
}

func (s *DepartmentsStorage) List() ([]model.Department, error) {
	var items []model.Department
	if err := s.db.Order("name").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "departments: list failed")
	}
	return items, nil
}

func (s *DepartmentsStorage) Get(id uint) (*model.Department, error) {
	var item model.Department
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("department not found: %d", id)
		}
		return nil, errors.Wrap(err, "departments: get failed")
	}
	return &item, nil
}

func (s *DepartmentsStorage) GetByName(name string) (*model.Department, error) {
	var item model.Department
	if err := s.db.Where("name = ?", name).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("department not found: %s", name)
		}
		return nil, errors.Wrap(err, "departments: get failed")
	}
	return &item, nil
}

func (s *DepartmentsStorage) Create(name string) (*model.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name", "department name is required")
	}
	item := &model.Department{Name: name}
	if err := s.db.Create(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("department already exists: %s", name)
		}
		return nil, errors.Wrap(err, "departments: create failed")
	}
	return item, nil
}

func (s *DepartmentsStorage) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&model.Department{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "departments: count failed")
	}
	return count, nil
}
