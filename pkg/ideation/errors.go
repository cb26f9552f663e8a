package ideation

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed input before a pipeline starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ExternalServiceError wraps a completion or embedding call that timed out
// or was unreachable. These are retryable.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// MalformedResponseError marks an external response that failed schema
// validation. Consumers with a safe fallback handle it locally.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed completion response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// PipelineInternalError is an invariant violation. Fatal, not retryable.
type PipelineInternalError struct {
	Message string
}

func (e *PipelineInternalError) Error() string {
	return "pipeline internal error: " + e.Message
}

// IsRetryable reports whether err stems from an external service outage,
// i.e. a retry of the whole run may succeed.
func IsRetryable(err error) bool {
	var ext *ExternalServiceError
	return errors.As(err, &ext)
}

// IsMalformed reports whether err is a schema-validation failure on an
// external response.
func IsMalformed(err error) bool {
	var mal *MalformedResponseError
	return errors.As(err, &mal)
}
