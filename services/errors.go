package services

import "errors"

// Workflow errors. Controllers map these onto HTTP statuses; anything else
// coming out of a service is treated as a datastore fault.
var (
	ErrClientNotFound       = errors.New("client not found")
	ErrNotPending           = errors.New("client is not awaiting approval")
	ErrNotRejected          = errors.New("only rejected clients can be resubmitted")
	ErrNotSubmitter         = errors.New("only the original submitter may resubmit")
	ErrForbidden            = errors.New("not authorized")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ValidationError carries a field-level error map for 422 responses.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return field + ": " + msg
	}
	return "validation failed"
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
