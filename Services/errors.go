package Services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that the requested record does not exist or is hidden
// by soft delete.
var ErrNotFound = errors.New("record not found")

// InvalidStateTransitionError is raised when a workflow operation attempts a
// status change that is not in the transition table.
type InvalidStateTransitionError struct {
	Current   string
	Attempted string
	Allowed   []string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %q to %q (allowed: %s)",
		e.Current, e.Attempted, strings.Join(e.Allowed, ", "))
}

// IncompleteRequiredItemsError blocks completion while required checklist
// items are still unanswered.
type IncompleteRequiredItemsError struct {
	Required  int64
	Completed int64
}

func (e *IncompleteRequiredItemsError) Error() string {
	return fmt.Sprintf("completion blocked: %d of %d required items have a recorded result",
		e.Completed, e.Required)
}

// ForeignItemReferenceError is raised when an item or result payload
// references a row that does not belong to the target record.
type ForeignItemReferenceError struct {
	RecordID    uint
	ReferenceID uint
	Kind        string // "item", "result", "task", "part"
}

func (e *ForeignItemReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not belong to record %d", e.Kind, e.ReferenceID, e.RecordID)
}

// ImmutableCompletedRecordError rejects edits to locked identifying fields
// after completion.
type ImmutableCompletedRecordError struct {
	Fields []string
}

func (e *ImmutableCompletedRecordError) Error() string {
	return fmt.Sprintf("record is completed; fields locked: %s", strings.Join(e.Fields, ", "))
}

// TerminalStateViolationError rejects operations on a terminal status.
type TerminalStateViolationError struct {
	Operation string
	Status    string
}

func (e *TerminalStateViolationError) Error() string {
	return fmt.Sprintf("cannot %s a record in terminal status %q", e.Operation, e.Status)
}

// FieldError is one field-level input problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError bundles field-level input errors.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
