package llm

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorType classifies LLM failures.
type ErrorType string

const (
	ErrorTypeAuth          ErrorType = "auth"
	ErrorTypeQuota         ErrorType = "quota"
	ErrorTypeModel         ErrorType = "model"
	ErrorTypeEndpoint      ErrorType = "endpoint"
	ErrorTypeBadRequest    ErrorType = "bad_request"
	ErrorTypeServer        ErrorType = "server"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeEmptyResponse ErrorType = "empty_response"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error is a classified LLM failure.
type Error struct {
	Type       ErrorType
	Message    string
	Cause      error
	StatusCode int
	Model      string
	Endpoint   string
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// ClassifyError turns a go-openai error into an *Error.
func ClassifyError(err error, model, endpoint string) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	classified := &Error{Cause: err, Model: model, Endpoint: endpoint}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		classified.StatusCode = apiErr.HTTPStatusCode
		classified.Type, classified.Message = classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	case errors.As(err, &reqErr):
		classified.StatusCode = reqErr.HTTPStatusCode
		classified.Type, classified.Message = classifyStatus(reqErr.HTTPStatusCode, "")
	case errors.As(err, &netErr):
		classified.Type, classified.Message = ErrorTypeNetwork, "endpoint unreachable"
	default:
		classified.Type, classified.Message = ErrorTypeUnknown, "request failed"
	}
	return classified
}

func classifyStatus(status int, apiMessage string) (ErrorType, string) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorTypeAuth, "authentication failed"
	case status == http.StatusTooManyRequests:
		return ErrorTypeQuota, "rate limit or quota exceeded"
	case status == http.StatusNotFound:
		if strings.Contains(strings.ToLower(apiMessage), "model") {
			return ErrorTypeModel, "model not found"
		}
		return ErrorTypeEndpoint, "endpoint not found"
	case status >= 500:
		return ErrorTypeServer, "server error"
	case status >= 400:
		return ErrorTypeBadRequest, "request rejected"
	default:
		return ErrorTypeUnknown, "request failed"
	}
}
