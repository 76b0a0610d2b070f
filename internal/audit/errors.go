package audit

import (
	"fmt"
)

// NotFoundError means the course or its account does not exist upstream.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed wire value.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type WarningKind string

const (
	WarnMissingDueDate   WarningKind = "missing_due_date"
	WarnMalformedDueDate WarningKind = "malformed_due_date"
	WarnEmptyRoster      WarningKind = "empty_roster"
)

// Warning is a non-fatal finding recorded while processing a course.
type Warning struct {
	Kind         WarningKind `json:"kind"`
	Message      string      `json:"message"`
	AssignmentID int64       `json:"assignment_id,omitempty"`
}

func (w Warning) String() string {
	return w.Message
}
