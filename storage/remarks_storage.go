package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// RemarksStorage gives access to remarks left on answers and to the rated
// departments' responses.
type RemarksStorage struct {
	db *gorm.DB
}

// RemarksStorage returns a RemarksStorage
func (s *Storage) RemarksStorage() *RemarksStorage {
	return &RemarksStorage{db: s.db}
}

func (s *RemarksStorage) remarksQuery() *gorm.DB {
	return s.db.Table("survey_answers AS a").
		Select(
			"a.submission_id, a.question_id, q.text AS question_text, q.category, a.rating, a.remarks, " +
				"s.submitter_department_id, s.rated_department_id, s.submitted_at",
		).
		Joins("JOIN survey_submissions AS s ON s.id = a.submission_id").
		Joins("LEFT JOIN questions AS q ON q.id = a.question_id").
		Where("a.remarks <> ''")
}

// Incoming returns the remarks on submissions rating departmentID that were
// not responded to yet
func (s *RemarksStorage) Incoming(departmentID uint) ([]model.Remark, error) {
	remarks := []model.Remark{}
	err := s.remarksQuery().
		Joins("LEFT JOIN remark_responses AS r ON r.submission_id = a.submission_id AND r.question_id = a.question_id").
		Where("s.rated_department_id = ? AND r.id IS NULL", departmentID).
		Order("s.submitted_at DESC, a.question_id").
		Scan(&remarks).Error
	if err != nil {
		return nil, errors.Wrap(err, "remarks: incoming failed")
	}
	return remarks, nil
}

// Outgoing returns the remarks departmentID left on other departments,
// including the responses received so far
func (s *RemarksStorage) Outgoing(departmentID uint) ([]model.Remark, error) {
	remarks := []model.Remark{}
	err := s.remarksQuery().
		Where("s.submitter_department_id = ?", departmentID).
		Order("s.submitted_at DESC, a.question_id").
		Scan(&remarks).Error
	if err != nil {
		return nil, errors.Wrap(err, "remarks: outgoing failed")
	}
	if len(remarks) == 0 {
		return remarks, nil
	}
	submissionIDs := make([]uint, 0, len(remarks))
	for _, r := range remarks {
		submissionIDs = append(submissionIDs, r.SubmissionID)
	}
	var responses []model.RemarkResponse
	if err = s.db.Where("submission_id IN ?", submissionIDs).Find(&responses).Error; err != nil {
		return nil, errors.Wrap(err, "remarks: loading responses failed")
	}
	type key struct{ submission, question uint }
	byKey := make(map[key]*model.RemarkResponse, len(responses))
	for i := range responses {
		byKey[key{responses[i].SubmissionID, responses[i].QuestionID}] = &responses[i]
	}
	for i := range remarks {
		remarks[i].Response = byKey[key{remarks[i].SubmissionID, remarks[i].QuestionID}]
	}
	return remarks, nil
}

// Respond records the response of the rated department to a remark. Only
// the rated department may respond, and only once per remark.
func (s *RemarksStorage) Respond(response model.RemarkResponse) (*model.RemarkResponse, bool, error) {
	response.Explanation = strings.TrimSpace(response.Explanation)
	response.ActionPlan = strings.TrimSpace(response.ActionPlan)
	if response.Explanation == "" {
		return nil, false, model.NewValidationError("explanation", "explanation is required")
	}
	if response.ActionPlan == "" {
		return nil, false, model.NewValidationError("action_plan", "action plan is required")
	}
	response.ID = 0

	var stored *model.RemarkResponse
	created := false
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var sub model.SurveySubmission
			if err := tx.First(&sub, response.SubmissionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("submission not found: %d", response.SubmissionID)
				}
				return errors.Wrap(err, "remarks: loading submission failed")
			}
			if sub.RatedDepartmentID != response.RespondedByDepartmentID {
				return model.NotEligibleError("only the rated department may respond to a remark")
			}
			var answers int64
			if err := tx.Model(&model.SurveyAnswer{}).
				Where(
					"submission_id = ? AND question_id = ? AND remarks <> ''",
					response.SubmissionID, response.QuestionID,
				).
				Count(&answers).Error; err != nil {
				return errors.Wrap(err, "remarks: loading answer failed")
			}
			if answers == 0 {
				return model.NotFoundErrorFmt(
					"no remark for question %d in submission %d", response.QuestionID, response.SubmissionID,
				)
			}
			existing, err := findRemarkResponse(tx, response.SubmissionID, response.QuestionID)
			if err != nil {
				return err
			}
			if existing != nil {
				stored = existing
				return nil
			}
			if err = tx.Create(&response).Error; err != nil {
				return err
			}
			stored = &response
			created = true
			return nil
		},
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// lost the race against a concurrent response
			existing, findErr := findRemarkResponse(s.db, response.SubmissionID, response.QuestionID)
			if findErr != nil || existing == nil {
				return nil, false, model.AlreadyExistsError("remark was already responded to")
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return stored, created, nil
}

func findRemarkResponse(db *gorm.DB, submissionID, questionID uint) (*model.RemarkResponse, error) {
	var existing model.RemarkResponse
	err := db.Where("submission_id = ? AND question_id = ?", submissionID, questionID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "remarks: loading response failed")
	}
	return &existing, nil
}
