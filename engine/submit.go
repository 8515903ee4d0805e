package engine

import (
	"math"
	"strings"
	"time"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// TemplateReader loads survey templates
type TemplateReader interface {
	Get(id uint) (*model.Survey, error)
}

// SubmissionWriter stores submissions atomically
type SubmissionWriter interface {
	SubmissionLookup
	Insert(submission *model.SurveySubmission) error
}

// SubmitRequest is a survey response about to be submitted
type SubmitRequest struct {
	SurveyID              uint
	SubmitterDepartmentID uint
	SubmitterUserID       string
	Answers               []Answer
	OverallRating         float64
	Suggestion            string
}

// Recorder validates and records submissions
type Recorder struct {
	resolver    *Resolver
	surveys     TemplateReader
	submissions SubmissionWriter
	now         func() time.Time
}

// NewRecorder creates a Recorder evaluating eligibility at the current time
func NewRecorder(surveys TemplateReader, permissions PermissionReader, submissions SubmissionWriter) *Recorder {
	return &Recorder{
		resolver:    NewResolver(permissions, submissions),
		surveys:     surveys,
		submissions: submissions,
		now:         time.Now,
	}
}

// WithClock returns a copy of the Recorder that uses now as its clock
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	c := *r
	c.now = now
	return &c
}

// Resolver returns the eligibility resolver used by the Recorder
func (r *Recorder) Resolver() *Resolver {
	return r.resolver
}

// Submit records a survey response. The steps run in a fixed order:
//  1. the rated department is taken from the template (model.NotFoundError)
//  2. eligibility gate (model.NotEligibleError, or
//     model.DuplicateSubmissionError if the pair was already submitted)
//  3. answer validation (model.ValidationError)
//  4. atomic insert (model.DuplicateSubmissionError if a concurrent
//     submission won)
func (r *Recorder) Submit(req SubmitRequest) (*model.SurveySubmission, error) {
	template, err := r.surveys.Get(req.SurveyID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	rated := template.RatedDepartmentID

	state, window, err := r.resolver.PairState(req.SubmitterDepartmentID, rated, now)
	if err != nil {
		return nil, err
	}
	switch state {
	case StateNotEligible:
		return nil, model.NotEligibleErrorFmt(
			"department %d may not submit a survey for department %d", req.SubmitterDepartmentID, rated,
		)
	case StateSubmitted:
		return nil, model.DuplicateSubmissionErrorFmt(
			"department %d already submitted a survey for department %d in window %s",
			req.SubmitterDepartmentID, rated, window,
		)
	}

	if err = Validate(template, req.Answers); err != nil {
		return nil, err
	}
	if err = ValidateOverallRating(req.OverallRating); err != nil {
		return nil, err
	}

	submission := &model.SurveySubmission{
		SurveyID:              template.ID,
		SubmitterUserID:       req.SubmitterUserID,
		SubmitterDepartmentID: req.SubmitterDepartmentID,
		RatedDepartmentID:     rated,
		SubmittedAt:           now.UTC(),
		OverallRating:         req.OverallRating,
		Suggestions:           strings.TrimSpace(req.Suggestion),
		Answers:               make([]model.SurveyAnswer, len(req.Answers)),
	}
	submission.SetWindow(window)
	for i, a := range req.Answers {
		stored := model.SurveyAnswer{
			QuestionID:       a.QuestionID,
			Remarks:          strings.TrimSpace(a.Remarks),
			SelectedOptionID: a.SelectedOptionID,
		}
		if a.Rating != nil {
			rating := int(math.Round(*a.Rating))
			stored.Rating = &rating
		}
		submission.Answers[i] = stored
	}
	if err = r.submissions.Insert(submission); err != nil {
		return nil, err
	}
	return submission, nil
}
