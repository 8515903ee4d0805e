package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// SurveysStorage provides access to survey templates.
type SurveysStorage struct {
	db *gorm.DB
}

// SurveysStorage returns a SurveysStorage
func (s *Storage) SurveysStorage() *SurveysStorage {
	return &SurveysStorage{db: s.db}
}

func (s *SurveysStorage) List() ([]model.Survey, error) {
	var items []model.Survey
	if err := s.db.Order("id").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "surveys: list failed")
	}
	return items, nil
}

// Get returns the template with questions sorted by their order and options
// sorted by id
func (s *SurveysStorage) Get(id uint) (*model.Survey, error) {
	var item model.Survey
	err := s.db.
		Preload(
			"Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order, id")
			},
		).
		Preload(
			"Questions.Options", func(db *gorm.DB) *gorm.DB {
				return db.Order("id")
			},
		).
		First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("survey not found: %d", id)
		}
		return nil, errors.Wrap(err, "surveys: get failed")
	}
	return &item, nil
}

func (s *SurveysStorage) ForRatedDepartments(departmentIDs []uint) ([]model.Survey, error) {
	items := []model.Survey{}
	if len(departmentIDs) == 0 {
		return items, nil
	}
	if err := s.db.Where("rated_department_id IN ?", departmentIDs).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "surveys: list by rated departments failed")
	}
	return items, nil
}

// Create stores a template with all its questions and options. The rated
// department must exist.
func (s *SurveysStorage) Create(survey *model.Survey) error {
	if survey.Title == "" {
		return model.NewValidationError("title", "title is required")
	}
	for i, q := range survey.Questions {
		if !q.Type.Valid() {
			return model.NewValidationError("questions", "question %d has unknown type '%s'", i+1, q.Type)
		}
		if q.Type == model.QuestionTypeMultipleChoice && len(q.Options) == 0 {
			return model.NewValidationError("questions", "multiple choice question %d has no options", i+1)
		}
	}
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&model.Department{}).
				Where("id = ?", survey.RatedDepartmentID).
				Count(&count).Error; err != nil {
				return errors.Wrap(err, "surveys: checking rated department failed")
			}
			if count == 0 {
				return model.NewValidationError(
					"rated_department_id", "unknown department %d", survey.RatedDepartmentID,
				)
			}
			if err := tx.Create(survey).Error; err != nil {
				return errors.Wrap(err, "surveys: create failed")
			}
			return nil
		},
	)
}
