package model

import (
	"time"
)

// RemarkResponse is the rated department's reaction to a remark left on one
// answer of a submission. There is at most one response per (submission,
// question).
type RemarkResponse struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	CreatedAt               time.Time `json:"created_at"`
	SubmissionID            uint      `gorm:"not null;uniqueIndex:idx_remark_response" json:"submission_id"`
	QuestionID              uint      `gorm:"not null;uniqueIndex:idx_remark_response" json:"question_id"`
	Explanation             string    `gorm:"not null" json:"explanation"`
	ActionPlan              string    `gorm:"not null" json:"action_plan"`
	ResponsiblePerson       string    `json:"responsible_person"`
	RespondedByDepartmentID uint      `gorm:"not null" json:"responded_by_department_id"`
	RespondedBy             string    `json:"responded_by"`
}

// Remark is a read model of an answer that carries remarks
type Remark struct {
	SubmissionID          uint            `json:"submission_id"`
	QuestionID            uint            `json:"question_id"`
	QuestionText          string          `json:"question_text"`
	Category              string          `json:"category,omitempty"`
	Rating                *int            `json:"rating,omitempty"`
	Remarks               string          `json:"remarks"`
	SubmitterDepartmentID uint            `json:"submitter_department_id"`
	RatedDepartmentID     uint            `json:"rated_department_id"`
	SubmittedAt           time.Time       `json:"submitted_at"`
	Response              *RemarkResponse `json:"response,omitempty" gorm:"-"`
}

// RemarkStore gives access to remarks and their responses
type RemarkStore interface {
	// Incoming returns the not yet answered remarks left on submissions
	// rating the department
	Incoming(departmentID uint) ([]Remark, error)
	// Outgoing returns the remarks left by the department, including any
	// responses
	Outgoing(departmentID uint) ([]Remark, error)
	// Respond stores a response; if a response already exists, the
	// existing one is returned and created is false
	Respond(response RemarkResponse) (stored *RemarkResponse, created bool, err error)
}

// DepartmentMetrics are the per-department dashboard figures
type DepartmentMetrics struct {
	DepartmentID          uint    `json:"department_id"`
	DepartmentName        string  `json:"department_name"`
	AverageRatingReceived float64 `json:"average_rating_received"`
	TotalSurveysReceived  int64   `json:"total_surveys_received"`
	UnrespondedRemarks    int64   `json:"unresponded_remarks_count"`
}

// SubmissionListing is one row of the submission overviews
type SubmissionListing struct {
	ID                      uint      `json:"id"`
	SurveyID                uint      `json:"survey_id"`
	RatedDepartmentID       uint      `json:"rated_department_id"`
	RatedDepartmentName     string    `json:"rated_department_name"`
	SubmitterDepartmentID   uint      `json:"submitter_department_id"`
	SubmitterDepartmentName string    `json:"submitter_department_name"`
	SubmitterUserID         string    `json:"submitter_user_id"`
	OverallRating           float64   `json:"overall_rating"`
	SubmittedAt             time.Time `json:"submitted_at"`
}

// SubmissionSummary holds the global submission figures
type SubmissionSummary struct {
	TotalSubmissions     int64               `json:"total_submissions"`
	AverageOverallRating float64             `json:"average_overall_rating"`
	Latest               []SubmissionListing `json:"latest_submissions"`
}

// ReportStore computes aggregated reports
type ReportStore interface {
	// DepartmentMetrics returns the dashboard figures of all departments
	// ordered by department name
	DepartmentMetrics() ([]DepartmentMetrics, error)
	// Summary returns the number of submissions, their average overall
	// rating and the latest submissions
	Summary() (*SubmissionSummary, error)
	// Recent returns the most recent submissions, newest first
	Recent() ([]SubmissionListing, error)
}
