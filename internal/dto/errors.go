// Package dto holds the request and response shapes of the HTTP API and
// the field-level validation applied to them.  Nothing here touches
// storage directly: foreign-key existence is checked through the
// References interface, which handlers back with the repositories.
package dto

import (
	"fmt"
	"sort"
	"strings"
)

// Messages shared by the request validators.  The wording matches what API
// clients of the previous service already parse.
const (
	MsgRequired       = "This field is required."
	MsgInvalidDate    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgInvalidNumber  = "A valid number is required."
	MsgInvalidInteger = "A valid integer is required."
	MsgEndBeforeStart = "End date must be after start date"
	MsgRatingRange    = "Rating must be between 1 and 5"
)

// ValidationError maps a field name to the list of problems found with it.
// A request either validates completely or is rejected with every problem
// reported at once.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field already carries an error.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Merge copies every message of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for f, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(f, m)
		}
	}
}

// OrNil returns e as an error when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// invalidPK is the message for a reference to a row that does not exist.
func invalidPK(v any) string {
	return fmt.Sprintf("Invalid pk \"%v\" - object does not exist.", v)
}
