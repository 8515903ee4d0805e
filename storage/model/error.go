package model

import (
	"fmt"
)

// NotFoundError is an error signaling that something was not found in the
// database
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that a unique record already exists
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// NotEligibleError signals that a department holds no active permission for
// the requested target at the evaluation time.
type NotEligibleError string

// Error implements the error interface
func (e NotEligibleError) Error() string {
	return string(e)
}

// NotEligibleErrorFmt returns a NotEligibleError from the passed format string and parameters
func NotEligibleErrorFmt(format string, params ...any) NotEligibleError {
	return NotEligibleError(fmt.Sprintf(format, params...))
}

// ConflictError signals that the permission matrix was changed since the
// caller's snapshot was taken. The caller should reload and retry.
type ConflictError string

// Error implements the error interface
func (e ConflictError) Error() string {
	return string(e)
}

// DuplicateSubmissionError signals that a submission for the same
// (submitter department, rated department, window) already exists.
type DuplicateSubmissionError string

// Error implements the error interface
func (e DuplicateSubmissionError) Error() string {
	return string(e)
}

// DuplicateSubmissionErrorFmt returns a DuplicateSubmissionError from the passed format string and parameters
func DuplicateSubmissionErrorFmt(format string, params ...any) DuplicateSubmissionError {
	return DuplicateSubmissionError(fmt.Sprintf(format, params...))
}

// ValidationError names the first offending field (and question, if any) of
// a rejected input.
type ValidationError struct {
	Field      string `json:"field"`
	QuestionID uint   `json:"question_id,omitempty"`
	Reason     string `json:"reason"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.QuestionID != 0 {
		return fmt.Sprintf("invalid %s for question %d: %s", e.Field, e.QuestionID, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a plain field
func NewValidationError(field, format string, params ...any) ValidationError {
	return ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, params...),
	}
}

// NewQuestionValidationError creates a ValidationError for an answer of a question
func NewQuestionValidationError(questionID uint, field, format string, params ...any) ValidationError {
	return ValidationError{
		Field:      field,
		QuestionID: questionID,
		Reason:     fmt.Sprintf(format, params...),
	}
}
