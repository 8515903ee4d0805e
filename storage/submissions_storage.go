package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// SubmissionsStorage persists survey submissions.
type SubmissionsStorage struct {
	db *gorm.DB
}

// SubmissionsStorage returns a SubmissionsStorage
func (s *Storage) SubmissionsStorage() *SubmissionsStorage {
	return &SubmissionsStorage{db: s.db}
}

// Insert stores the submission and its answers. A pair counts as submitted
// for a window if any of its records was submitted during the window, no
// matter which window dates the record was stored under, so the check runs
// inside the insert transaction. The unique index on (submitter, rated,
// window) still decides between concurrent inserts into the same window: one
// wins, the other gets a model.DuplicateSubmissionError.
func (s *SubmissionsStorage) Insert(submission *model.SurveySubmission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	submission.SubmittedAt = submission.SubmittedAt.UTC()
	duplicate := model.DuplicateSubmissionErrorFmt(
		"department %d already submitted a survey for department %d in window %s",
		submission.SubmitterDepartmentID, submission.RatedDepartmentID, submission.Window(),
	)
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			exists, err := pairSubmitted(
				tx, submission.SubmitterDepartmentID, submission.RatedDepartmentID, submission.Window(),
			)
			if err != nil {
				return err
			}
			if exists {
				return duplicate
			}
			return tx.Create(submission).Error
		},
	)
	if err == nil {
		return nil
	}
	if errors.As(err, new(model.DuplicateSubmissionError)) {
		return err
	}
	if isUniqueConstraintError(err) {
		return duplicate
	}
	return errors.Wrap(err, "submissions: insert failed")
}

// submittedDuring restricts a query to records submitted within the window
func submittedDuring(window model.Window) func(*gorm.DB) *gorm.DB {
	from, until := window.Bounds()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("submitted_at >= ? AND submitted_at < ?", from, until)
	}
}

func pairSubmitted(db *gorm.DB, submitterDepartmentID, ratedDepartmentID uint, window model.Window) (bool, error) {
	var count int64
	err := db.Model(&model.SurveySubmission{}).
		Scopes(submittedDuring(window)).
		Where(
			"submitter_department_id = ? AND rated_department_id = ?",
			submitterDepartmentID, ratedDepartmentID,
		).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "submissions: exists failed")
	}
	return count > 0, nil
}

// Exists reports whether the pair has a record submitted during the window
func (s *SubmissionsStorage) Exists(submitterDepartmentID, ratedDepartmentID uint, window model.Window) (bool, error) {
	return pairSubmitted(s.db, submitterDepartmentID, ratedDepartmentID, window)
}

// SubmittedTargets returns the departments the submitter has a record for
// that was submitted during the window
func (s *SubmissionsStorage) SubmittedTargets(submitterDepartmentID uint, window model.Window) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&model.SurveySubmission{}).
		Scopes(submittedDuring(window)).
		Where("submitter_department_id = ?", submitterDepartmentID).
		Distinct("rated_department_id").
		Pluck("rated_department_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "submissions: submitted targets failed")
	}
	return ids, nil
}

// ListByUser returns the submissions of a user, newest first
func (s *SubmissionsStorage) ListByUser(userID string) ([]model.SurveySubmission, error) {
	items := []model.SurveySubmission{}
	if err := s.db.Where("submitter_user_id = ?", userID).
		Order("submitted_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "submissions: list by user failed")
	}
	return items, nil
}

// Get returns a submission including its answers
func (s *SubmissionsStorage) Get(id uint) (*model.SurveySubmission, error) {
	var item model.SurveySubmission
	if err := s.db.Preload("Answers").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("submission not found: %d", id)
		}
		return nil, errors.Wrap(err, "submissions: get failed")
	}
	return &item, nil
}
