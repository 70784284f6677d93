package errors

import "fmt"

// ErrorCode represents a StoryForge error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"       // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"             // 404
	ErrDescriptionTooShort ErrorCode = "DESCRIPTION_TOO_SHORT" // 422
	ErrDescriptionTooLong  ErrorCode = "DESCRIPTION_TOO_LONG"  // 413
	ErrProviderFailure     ErrorCode = "PROVIDER_FAILURE"      // 502, caught at the AI boundary
	ErrInternal            ErrorCode = "INTERNAL"              // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an unknown story.
func NewNotFound(id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("story not found: %s", id),
		Details: map[string]any{"story_id": id},
	}
}

// NewDescriptionTooShort creates a 422 error when a description has fewer
// words than the configured minimum.
func NewDescriptionTooShort(minWords, actual int) *Error {
	return &Error{
		Code:    ErrDescriptionTooShort,
		Status:  422,
		Message: fmt.Sprintf("feature description should contain at least %d words (got %d)", minWords, actual),
		Details: map[string]any{"min_words": minWords, "actual_words": actual},
	}
}

// NewDescriptionTooLong creates a 413 error when a description exceeds the
// configured character limit.
func NewDescriptionTooLong(max, actual int) *Error {
	return &Error{
		Code:    ErrDescriptionTooLong,
		Status:  413,
		Message: fmt.Sprintf("feature description exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewProviderFailure creates a 502 error for a failed AI provider call.
// Generation never surfaces this to the caller; it triggers the template
// fallback and is logged.
func NewProviderFailure(provider string, err error) *Error {
	msg := "provider call failed"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrProviderFailure,
		Status:  502,
		Message: fmt.Sprintf("%s: %s", provider, msg),
		Details: map[string]any{"provider": provider},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a storyforge Error with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*Error); ok {
		return sErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for an error, defaulting to 500.
func StatusOf(err error) int {
	if sErr, ok := err.(*Error); ok {
		return sErr.Status
	}
	return 500
}
