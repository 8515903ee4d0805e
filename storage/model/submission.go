package model

import (
	"time"

	"gorm.io/datatypes"
)

// SurveySubmission is an immutable, completed survey response. There is at
// most one submission per (submitter department, rated department) whose
// SubmittedAt lies in a given window; the stored window dates only anchor the
// record.
type SurveySubmission struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	SurveyID              uint           `gorm:"index;not null" json:"survey_id"`
	SubmitterUserID       string         `gorm:"size:191;index;not null" json:"submitter_user_id"`
	SubmitterDepartmentID uint           `gorm:"not null;uniqueIndex:idx_submission_pair_window" json:"submitter_department_id"`
	RatedDepartmentID     uint           `gorm:"not null;uniqueIndex:idx_submission_pair_window;index" json:"rated_department_id"`
	WindowStart           datatypes.Date `gorm:"not null;uniqueIndex:idx_submission_pair_window" json:"-"`
	WindowEnd             datatypes.Date `gorm:"not null;uniqueIndex:idx_submission_pair_window" json:"-"`
	SubmittedAt           time.Time      `gorm:"not null" json:"submitted_at"`
	OverallRating         float64        `json:"overall_rating"`
	Suggestions           string         `json:"suggestions,omitempty"`
	Answers               []SurveyAnswer `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

// Window returns the window the submission was made in
func (s SurveySubmission) Window() Window {
	return Window{
		Start: DateOf(time.Time(s.WindowStart)),
		End:   DateOf(time.Time(s.WindowEnd)),
	}
}

// SetWindow anchors the submission to a window
func (s *SurveySubmission) SetWindow(w Window) {
	s.WindowStart = datatypes.Date(DateOf(w.Start))
	s.WindowEnd = datatypes.Date(DateOf(w.End))
}

// SurveyAnswer is the stored answer to one question
type SurveyAnswer struct {
	ID               uint   `gorm:"primaryKey" json:"-"`
	SubmissionID     uint   `gorm:"index;not null" json:"-"`
	QuestionID       uint   `gorm:"index;not null" json:"question_id"`
	Rating           *int   `json:"rating,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
	SelectedOptionID *uint  `json:"selected_option_id,omitempty"`
}

// SubmissionStore persists submissions
type SubmissionStore interface {
	// Insert atomically stores the submission; if the pair already has a
	// record submitted during the submission's window a
	// DuplicateSubmissionError is returned
	Insert(submission *SurveySubmission) error
	// Exists reports whether the pair has a record submitted during the
	// window, whatever window dates that record was stored under
	Exists(submitterDepartmentID, ratedDepartmentID uint, window Window) (bool, error)
	// SubmittedTargets returns the rated departments the submitter
	// department has records for that were submitted during the window
	SubmittedTargets(submitterDepartmentID uint, window Window) ([]uint, error)
	// ListByUser returns the submissions of a user, newest first
	ListByUser(userID string) ([]SurveySubmission, error)
	// Get returns a submission including its answers
	Get(id uint) (*SurveySubmission, error)
}
