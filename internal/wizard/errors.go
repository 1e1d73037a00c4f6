package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField is returned for field keys outside the registry.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownDocument is returned for document keys outside the catalog.
	ErrUnknownDocument = errors.New("unknown document")

	// ErrUnknownPhone is returned for an additional phone index that does not exist.
	ErrUnknownPhone = errors.New("unknown additional phone")

	// ErrForwardJump is returned when a jump does not target an earlier step.
	ErrForwardJump = errors.New("can only jump to an earlier step")

	// ErrNotFinalStep is returned when submitting before the last step.
	ErrNotFinalStep = errors.New("submission is only possible from the last step")

	// ErrSubmissionInFlight is returned while a previous submit is pending.
	ErrSubmissionInFlight = errors.New("submission already in progress")

	// ErrSubmissionFailed matches every *SubmissionError.
	ErrSubmissionFailed = errors.New("submission failed")

	// ErrFinished is returned by operations on a wizard that already submitted.
	ErrFinished = errors.New("application already submitted")
)

// FieldError is one localized validation message.
type FieldError struct {
	Field   FieldKey `json:"field"`
	Message string   `json:"message"`
}

// ValidationError lists every failing field of a step, in rule order.
type ValidationError struct {
	Step   int
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, string(fe.Field))
	}
	return fmt.Sprintf("step %d has %d invalid field(s): %s", e.Step, len(e.Errors), strings.Join(fields, ", "))
}

// Map indexes the messages by field.
func (e *ValidationError) Map() map[FieldKey]string {
	m := make(map[FieldKey]string, len(e.Errors))
	for _, fe := range e.Errors {
		m[fe.Field] = fe.Message
	}
	return m
}

// Has reports whether field failed.
func (e *ValidationError) Has(field FieldKey) bool {
	_, ok := e.Map()[field]
	return ok
}

// SubmissionError carries the message shown to the visitor after a failed submit.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission failed: %s: %v", e.Message, e.Err)
	}
	return "submission failed: " + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is matches ErrSubmissionFailed.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}
