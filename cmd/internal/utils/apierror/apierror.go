package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Error kinds surfaced to callers.
const (
	KindSlotTaken       = "slot_taken"
	KindStorageFailure  = "storage_failure"
	KindIndexFailure    = "index_failure"
	KindSearchError     = "search_error"
	KindSuggestionError = "suggestion_error"
	KindValidation      = "validation_error"
	KindMalformedBody   = "malformed_body"
	KindMissingParam    = "missing_param"
	KindNotFound        = "not_found"
	KindRateLimited     = "rate_limited"
	KindInternal        = "internal_error"
)

// ErrorResponse is the structured failure returned by services and written
// as-is by the shells.
type ErrorResponse interface {
	error
	Code() int
	Kind() string
}

// APIError is the JSON body of every failed request.
type APIError struct {
	Success bool              `json:"success"`
	ErrKind string            `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`

	code int
}

func (e *APIError) Error() string { return e.Message }
func (e *APIError) Code() int     { return e.code }
func (e *APIError) Kind() string  { return e.ErrKind }

func New(code int, kind, message string) *APIError {
	return &APIError{ErrKind: kind, Message: message, code: code}
}

// NewSimple builds an error whose kind is derived from the status code.
func NewSimple(code int, message string) *APIError {
	kind := KindInternal
	switch code {
	case http.StatusBadRequest:
		kind = KindValidation
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	}
	return New(code, kind, message)
}

var (
	MalformedBodyError  = New(http.StatusBadRequest, KindMalformedBody, "Malformed request body")
	NotFoundError       = New(http.StatusNotFound, KindNotFound, "Resource not found")
	InternalServerError = New(http.StatusInternalServerError, KindInternal, "Internal server error")
	RateLimitedError    = New(http.StatusTooManyRequests, KindRateLimited, "Too many requests, try again later")
)

func NewMissingParamError(param string) *APIError {
	return New(http.StatusBadRequest, KindMissingParam, fmt.Sprintf("Missing required parameter '%s'", param))
}

func NewSlotTakenError(date, time string) *APIError {
	return New(http.StatusConflict, KindSlotTaken,
		fmt.Sprintf("The slot on %s at %s is already taken. Please choose another time.", date, time))
}

func NewStorageFailure(err error) *APIError {
	return New(http.StatusInternalServerError, KindStorageFailure,
		fmt.Sprintf("Error booking appointment: %v", err))
}

func NewSearchError(err error) *APIError {
	return New(http.StatusBadGateway, KindSearchError,
		fmt.Sprintf("Error searching appointments: %v", err))
}

func NewSuggestionError(err error) *APIError {
	return New(http.StatusBadGateway, KindSuggestionError,
		fmt.Sprintf("Error generating suggestions: %v", err))
}

// FromValidationError converts validator failures into a 400 with one entry
// per offending field.
func FromValidationError(err error) *APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return New(http.StatusBadRequest, KindValidation, err.Error())
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}

	apierr := New(http.StatusBadRequest, KindValidation, "Please fill in all fields correctly.")
	apierr.Details = details
	return apierr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "isodate":
		return "must be a date formatted as YYYY-MM-DD"
	case "clocktime":
		return "must be a time formatted as HH:MM or HH:MM:SS"
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
