package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is returned for bad credentials and missing or invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned for unexpected store or signing failures.
	ErrInternal = errors.New("internal error")
)

// AppError carries a user-facing message along with its kind.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is makes errors.Is(err, ErrX) match on the error kind.
func (e *AppError) Is(target error) bool {
	return e.Kind == target
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates a 400 error.
func Validation(message string) *AppError {
	return &AppError{Kind: ErrValidation, Message: message}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Message: message}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message}
}

// Internal wraps an unexpected failure. The message is what callers see.
func Internal(err error, message string) *AppError {
	return &AppError{Kind: ErrInternal, Message: message, Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Internal details never
// reach the response body.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	message := "internal server error"
	kind := err
	if errors.As(err, &appErr) {
		message = appErr.Message
		// the outermost kind wins over whatever it wraps
		kind = appErr.Kind
	}

	switch {
	case errors.Is(kind, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, message, "VALIDATION_ERROR")
	case errors.Is(kind, ErrConflict):
		return NewHTTPError(http.StatusConflict, message, "CONFLICT")
	case errors.Is(kind, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, message, "UNAUTHORIZED")
	case errors.Is(kind, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, message, "NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, message, "INTERNAL_ERROR")
	}
}
