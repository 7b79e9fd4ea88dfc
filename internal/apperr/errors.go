package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrResourceNoLongerAvailable signals that the authoritative conflict check at
// approval time found an overlap the advisory listing had not seen. The caller
// should re-query availability and pick again.
var ErrResourceNoLongerAvailable = errors.New("resource no longer available")

// FieldError describes one failing field of a submission.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every missing or invalid field of a request, not
// just the first one. It is surfaced to the submitting actor and is never a
// system fault.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// StateError signals a transition attempted from a state that does not permit
// it, or by a role that may not perform it. It usually means a stale client
// view or a double submit; the caller recovers by re-fetching current state.
type StateError struct {
	Action  string
	Current string
	Reason  string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s requisition in state %q: %s", e.Action, e.Current, e.Reason)
}

// AsState unwraps err into a *StateError if it is one.
func AsState(err error) (*StateError, bool) {
	var serr *StateError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}

// CollaboratorError wraps a failure of an external collaborator (store,
// notification dispatcher). Store failures abort the operation and are
// retryable; notification failures are logged and never unwind a completed
// transition.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Store wraps err as a persistent-store collaborator failure.
func Store(err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Collaborator: "store", Err: err}
}

// IsCollaborator reports whether err is a collaborator failure.
func IsCollaborator(err error) bool {
	var cerr *CollaboratorError
	return errors.As(err, &cerr)
}
