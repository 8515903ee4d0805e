// Package api holds helpers shared by the admin and user APIs
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Error codes used in ErrorResponse
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidClient       = "invalid_client"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeNotEligible         = "not_eligible"
	ErrorCodeConflict            = "conflict"
	ErrorCodeDuplicateSubmission = "duplicate_submission"
	ErrorCodeAlreadyExists       = "already_exists"
	ErrorCodeServerError         = "server_error"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Field            string `json:"field,omitempty"`
	QuestionID       uint   `json:"question_id,omitempty"`
}

// ErrorInvalidRequest creates an invalid_request ErrorResponse
func ErrorInvalidRequest(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeInvalidRequest,
		ErrorDescription: description,
	}
}

// ErrorServerError creates a server_error ErrorResponse
func ErrorServerError(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeServerError,
		ErrorDescription: description,
	}
}

// ErrorNotFound creates a not_found ErrorResponse
func ErrorNotFound(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeNotFound,
		ErrorDescription: description,
	}
}

// ErrorInvalidClient creates an invalid_client ErrorResponse
func ErrorInvalidClient(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeInvalidClient,
		ErrorDescription: description,
	}
}

// Classify maps an error to the http status code and ErrorResponse it is
// reported with
func Classify(err error) (int, ErrorResponse) {
	var validationErr model.ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest, ErrorResponse{
			Error:            ErrorCodeInvalidRequest,
			ErrorDescription: validationErr.Error(),
			Field:            validationErr.Field,
			QuestionID:       validationErr.QuestionID,
		}
	}
	var notFound model.NotFoundError
	if errors.As(err, &notFound) {
		return fiber.StatusNotFound, ErrorNotFound(notFound.Error())
	}
	var notEligible model.NotEligibleError
	if errors.As(err, &notEligible) {
		return fiber.StatusForbidden, ErrorResponse{
			Error:            ErrorCodeNotEligible,
			ErrorDescription: notEligible.Error(),
		}
	}
	var conflict model.ConflictError
	if errors.As(err, &conflict) {
		return fiber.StatusConflict, ErrorResponse{
			Error:            ErrorCodeConflict,
			ErrorDescription: conflict.Error(),
		}
	}
	var duplicate model.DuplicateSubmissionError
	if errors.As(err, &duplicate) {
		return fiber.StatusConflict, ErrorResponse{
			Error:            ErrorCodeDuplicateSubmission,
			ErrorDescription: duplicate.Error(),
		}
	}
	var exists model.AlreadyExistsError
	if errors.As(err, &exists) {
		return fiber.StatusConflict, ErrorResponse{
			Error:            ErrorCodeAlreadyExists,
			ErrorDescription: exists.Error(),
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := ErrorCodeInvalidRequest
		if fiberErr.Code >= fiber.StatusInternalServerError {
			code = ErrorCodeServerError
		}
		return fiberErr.Code, ErrorResponse{
			Error:            code,
			ErrorDescription: fiberErr.Message,
		}
	}
	return fiber.StatusInternalServerError, ErrorServerError(err.Error())
}

// SendError writes the response for err
func SendError(c *fiber.Ctx, err error) error {
	status, body := Classify(err)
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(status).JSON(body)
}
