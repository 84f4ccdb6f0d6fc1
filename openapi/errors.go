package openapi

import "fmt"

// Kind classifies a ValidationError the way spec §4.6/§7 names the
// OpenApiValidationError variants. The core never exposes the underlying
// JSON-Schema library's error type to callers.
type Kind string

const (
	InvalidPath            Kind = "invalid_path"
	InvalidRequest         Kind = "invalid_request"
	InvalidContentType     Kind = "invalid_content_type"
	InvalidSchema          Kind = "invalid_schema"
	InvalidHeaders         Kind = "invalid_headers"
	InvalidQueryParameters Kind = "invalid_query_parameters"
)

// ValidationError is the single error type every validator failure is
// mapped to.
type ValidationError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("openapi: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("openapi: %s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

func wrapError(kind Kind, message string, cause error) *ValidationError {
	return &ValidationError{Kind: kind, Message: message, Cause: cause}
}
