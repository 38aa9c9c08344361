package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("visualization not found")
	ErrInvalidID          = errors.New("invalid encoded id")
	ErrLoginRequired      = errors.New("requires user to log in")
	ErrConflictingFilters = errors.New("show_shared and deleted cannot both be true")
	ErrForbidden          = errors.New("visualization is not accessible")
)

// FieldError describes one offending field. Field is the wire name, with an
// index suffix for sequence members ("tags[1]") and a position prefix for
// list members ("[3].id").
type FieldError struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Message string `json:"msg"`
	Input   any    `json:"input,omitempty"`
}

// ValidationError is returned by every schema constructor. It carries all
// offending fields of a single construction attempt, never just the first.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	noun := "errors"
	if len(e.Errors) == 1 {
		noun = "error"
	}
	fmt.Fprintf(&b, "%s: %d validation %s", e.Schema, len(e.Errors), noun)
	for _, fe := range e.Errors {
		fmt.Fprintf(&b, "; %s: %s", fe.Field, fe.Message)
	}
	return b.String()
}

// Fields lists offending field names in report order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Field)
	}
	return out
}

// Has reports whether field (or a member of it, like "tags[0]") failed.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field || baseField(fe.Field) == field {
			return true
		}
	}
	return false
}

func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i > 0 {
		return field[:i]
	}
	return field
}
