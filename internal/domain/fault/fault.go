// Package fault classifies domain errors so the HTTP boundary can translate
// them uniformly. Domain packages define their own typed errors and report a
// Kind; anything that does not is treated as an internal failure.
package fault

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Kind is the category of a domain failure.
type Kind int

const (
	// KindInternal is an unexpected failure. Its detail is never shown to
	// API callers.
	KindInternal Kind = iota
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindRule means the request is well-formed but violates a business rule.
	KindRule
	// KindConflict means the request clashes with the current state, such as
	// a duplicate unique key or a concurrent modification.
	KindConflict
	// KindValidation means the request is malformed or misses required fields.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRule:
		return "business_rule"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Kinded is implemented by errors that know their category.
type Kinded interface {
	error
	Kind() Kind
}

// KindOf returns the category of err, looking through wrapped errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// Kind implements Kinded.
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// NotFound returns a NotFoundError for the given entity and identifier.
func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// RuleError reports a business rule violation.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

// Kind implements Kinded.
func (e *RuleError) Kind() Kind { return KindRule }

// Rule returns a RuleError with a formatted message.
func Rule(format string, args ...any) error {
	return &RuleError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a clash with existing state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Kind implements Kinded.
func (e *ConflictError) Kind() Kind { return KindConflict }

// Conflict returns a ConflictError with a formatted message.
func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field    string
	Message  string
	Rejected any
}

// ValidationError collects invalid fields of one request.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.message()
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return e.message() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) message() string {
	if e.Message == "" {
		return "invalid request"
	}
	return e.Message
}

// Kind implements Kinded.
func (e *ValidationError) Kind() Kind { return KindValidation }

// Add records an invalid field.
func (e *ValidationError) Add(field, message string, rejected any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message, Rejected: rejected})
}

// Err returns e when at least one field was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, message string, rejected any) error {
	v := &ValidationError{}
	v.Add(field, message, rejected)
	return v
}
