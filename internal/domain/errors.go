package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeUpstreamSearch      = "UPSTREAM_SEARCH_FAILURE"
	ErrCodeMetadataUnavailable = "METADATA_UNAVAILABLE"
	ErrCodeNotConfigured       = "NOT_CONFIGURED"
)

// Validation errors
var (
	ErrEmptyQuery            = NewDomainError(ErrCodeValidation, "query is required")
	ErrInvalidAdoptionStatus = NewDomainError(ErrCodeValidation, "invalid adoption status")
	ErrInvalidMinScore       = NewDomainError(ErrCodeValidation, "min score must be between 0 and 1")
)

// Not found errors
var (
	ErrSearchHistoryNotFound = NewDomainError(ErrCodeNotFound, "search history record not found")
)

// Configuration errors
var (
	ErrSearchNotConfigured = NewDomainError(ErrCodeNotConfigured, "search is not configured: embedding provider missing")
)

// WrapUpstreamSearch marks an embedding or vector-index failure. These abort
// the whole search and are never retried inside the engine.
func WrapUpstreamSearch(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeUpstreamSearch, message, err)
}

// WrapMetadataUnavailable marks a repository-wide metadata failure. Per-record
// gaps degrade locally instead and never produce this error.
func WrapMetadataUnavailable(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeMetadataUnavailable, "metadata repository unavailable", err)
}
