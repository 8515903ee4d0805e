package engine

import (
	"sync"
	"time"

	"github.com/Durai69/LLS-Survey/storage/model"
)

const (
	deptIT uint = 1
	deptHR uint = 2
	deptQA uint = 3
)

var allDepartments = []uint{deptIT, deptHR, deptQA}

func date(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func january() model.Window {
	return model.Window{
		Start: date("2025-01-01"),
		End:   date("2025-01-31"),
	}
}

func edge(from, to uint, w model.Window) model.PermissionEdge {
	e := model.PermissionEdge{
		FromDepartmentID: from,
		ToDepartmentID:   to,
	}
	e.SetWindow(w)
	return e
}

type stubPermissions struct {
	edges []model.PermissionEdge
}

func (s *stubPermissions) Outgoing(fromID uint) ([]model.PermissionEdge, error) {
	var out []model.PermissionEdge
	for _, e := range s.edges {
		if e.FromDepartmentID == fromID {
			out = append(out, e)
		}
	}
	return out, nil
}

type submissionKey struct {
	from, to uint
	window   model.Window
}

// stubSubmissions enforces the pair/window uniqueness under a lock, the way
// the database does
type stubSubmissions struct {
	mu      sync.Mutex
	records map[submissionKey]*model.SurveySubmission
	nextID  uint
	// beforeInsert is called after the eligibility check passed and before
	// the insert happens
	beforeInsert func()
}

func newStubSubmissions() *stubSubmissions {
	return &stubSubmissions{records: make(map[submissionKey]*model.SurveySubmission)}
}

// submittedDuring reports whether a record of the pair was submitted during w;
// the caller holds the lock
func (s *stubSubmissions) submittedDuring(from, to uint, w model.Window) bool {
	for k, r := range s.records {
		if k.from == from && k.to == to && w.Contains(r.SubmittedAt) {
			return true
		}
	}
	return false
}

func (s *stubSubmissions) Insert(sub *model.SurveySubmission) error {
	if s.beforeInsert != nil {
		s.beforeInsert()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := submissionKey{sub.SubmitterDepartmentID, sub.RatedDepartmentID, sub.Window()}
	if _, ok := s.records[k]; ok || s.submittedDuring(k.from, k.to, k.window) {
		return model.DuplicateSubmissionError("duplicate")
	}
	s.nextID++
	sub.ID = s.nextID
	s.records[k] = sub
	return nil
}

func (s *stubSubmissions) Exists(from, to uint, w model.Window) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submittedDuring(from, to, w), nil
}

func (s *stubSubmissions) SubmittedTargets(from uint, w model.Window) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint
	for k, r := range s.records {
		if k.from == from && w.Contains(r.SubmittedAt) {
			out = append(out, k.to)
		}
	}
	return out, nil
}

func (s *stubSubmissions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type stubSurveys map[uint]*model.Survey

func (s stubSurveys) Get(id uint) (*model.Survey, error) {
	if t, ok := s[id]; ok {
		return t, nil
	}
	return nil, model.NotFoundErrorFmt("survey not found: %d", id)
}

func ptrFloat(f float64) *float64 {
	return &f
}

func ptrUint(u uint) *uint {
	return &u
}

// hrSurvey rates HR with one rating, one text and one multiple choice question
func hrSurvey() *model.Survey {
	return &model.Survey{
		ID:                10,
		Title:             "HR service quality",
		RatedDepartmentID: deptHR,
		Questions: []model.Question{
			{
				ID:    101,
				Text:  "How responsive is HR?",
				Type:  model.QuestionTypeRating,
				Order: 1,
			},
			{
				ID:    102,
				Text:  "What should HR improve?",
				Type:  model.QuestionTypeText,
				Order: 2,
			},
			{
				ID:    103,
				Text:  "Preferred contact channel",
				Type:  model.QuestionTypeMultipleChoice,
				Order: 3,
				Options: []model.QuestionOption{
					{ID: 1001, Text: "Mail"},
					{ID: 1002, Text: "Phone"},
				},
			},
		},
	}
}

func validAnswers() []Answer {
	return []Answer{
		{QuestionID: 101, Rating: ptrFloat(4)},
		{QuestionID: 102, Remarks: "faster onboarding"},
		{QuestionID: 103, SelectedOptionID: ptrUint(1001)},
	}
}
