package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Rating bounds; ratings at or below LowRatingThreshold need a remark
const (
	MinRating          = 1
	MaxRating          = 5
	LowRatingThreshold = 2
)

// Answer is a submitted answer to one question. Text questions carry their
// answer in Remarks.
type Answer struct {
	QuestionID       uint     `json:"id"`
	Rating           *float64 `json:"rating,omitempty"`
	Remarks          string   `json:"remarks,omitempty"`
	SelectedOptionID *uint    `json:"selected_option_id,omitempty"`
}

// Validate checks answers against the template. Questions are checked in
// their display order and the first failing one is reported as a
// model.ValidationError.
func Validate(template *model.Survey, answers []Answer) error {
	byQuestion := make(map[uint]Answer, len(answers))
	questions := make(map[uint]struct{}, len(template.Questions))
	for _, q := range template.Questions {
		questions[q.ID] = struct{}{}
	}
	for _, a := range answers {
		if _, ok := questions[a.QuestionID]; !ok {
			return model.NewQuestionValidationError(a.QuestionID, "id", "question is not part of survey %d", template.ID)
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			return model.NewQuestionValidationError(a.QuestionID, "id", "question answered more than once")
		}
		byQuestion[a.QuestionID] = a
	}

	ordered := make([]model.Question, len(template.Questions))
	copy(ordered, template.Questions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	for _, q := range ordered {
		a, ok := byQuestion[q.ID]
		if !ok {
			return model.NewQuestionValidationError(q.ID, "answers", "question is not answered")
		}
		if err := validateAnswer(q, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAnswer(q model.Question, a Answer) error {
	switch q.Type {
	case model.QuestionTypeRating:
		if a.Rating == nil {
			return model.NewQuestionValidationError(q.ID, "rating", "rating is required")
		}
		r := *a.Rating
		if r != math.Trunc(r) || r < MinRating || r > MaxRating {
			return model.NewQuestionValidationError(
				q.ID, "rating", "rating must be an integer between %d and %d", MinRating, MaxRating,
			)
		}
		if r <= LowRatingThreshold && strings.TrimSpace(a.Remarks) == "" {
			return model.NewQuestionValidationError(
				q.ID, "remarks", "remarks are required for ratings of %d or less", LowRatingThreshold,
			)
		}
	case model.QuestionTypeText:
		if strings.TrimSpace(a.Remarks) == "" {
			return model.NewQuestionValidationError(q.ID, "remarks", "text answer is required")
		}
	case model.QuestionTypeMultipleChoice:
		if a.SelectedOptionID == nil {
			return model.NewQuestionValidationError(q.ID, "selected_option_id", "an option must be selected")
		}
		if !q.HasOption(*a.SelectedOptionID) {
			return model.NewQuestionValidationError(
				q.ID, "selected_option_id", "option %d does not belong to the question", *a.SelectedOptionID,
			)
		}
	default:
		return model.NewQuestionValidationError(q.ID, "type", "unsupported question type '%s'", q.Type)
	}
	return nil
}

// ValidateOverallRating checks the overall rating of a submission
func ValidateOverallRating(rating float64) error {
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		return model.NewValidationError(
			"overall_rating", "overall rating must be between %d and %d", MinRating, MaxRating,
		)
	}
	return nil
}
