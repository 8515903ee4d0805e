package model

import (
	"time"
)

// QuestionType is the kind of answer a question expects
type QuestionType string

// Supported question types
const (
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Valid reports whether t is a supported question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeRating, QuestionTypeText, QuestionTypeMultipleChoice:
		return true
	default:
		return false
	}
}

// Survey is a survey template rating exactly one department
type Survey struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	CreatedAt            time.Time  `json:"created_at"`
	Title                string     `gorm:"not null" json:"title"`
	Description          string     `json:"description"`
	RatedDepartmentID    uint       `gorm:"index;not null" json:"rated_department_id"`
	ManagingDepartmentID uint       `json:"managing_department_id"`
	Questions            []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions"`
}

// Question is one question of a survey template
type Question struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	SurveyID uint             `gorm:"index;not null" json:"-"`
	Text     string           `gorm:"not null" json:"text"`
	Type     QuestionType     `gorm:"size:32;not null" json:"type"`
	Category string           `json:"category,omitempty"`
	Order    int              `gorm:"column:sort_order" json:"order"`
	Options  []QuestionOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// HasOption reports whether optionID is one of the question's options
func (q Question) HasOption(optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionOption is a selectable option of a multiple choice question
type QuestionOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"index;not null" json:"-"`
	Text       string `json:"text"`
	Value      string `json:"value"`
}

// SurveyStore gives access to survey templates
type SurveyStore interface {
	// List returns all templates without questions
	List() ([]Survey, error)
	// Get returns a template with its questions in order
	Get(id uint) (*Survey, error)
	// ForRatedDepartments returns all templates rating one of the passed
	// departments, without questions
	ForRatedDepartments(departmentIDs []uint) ([]Survey, error)
	// Create stores a new template including questions and options
	Create(survey *Survey) error
}
