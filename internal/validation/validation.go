// Package validation holds the field-level errors drafts report before any
// request is sent.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldError rejects a draft locally.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Required fails when value is blank after trimming.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Message: "is required"}
	}
	return nil
}

// OptionalInt parses an optional integer form field. Blank yields nil.
func OptionalInt(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, &FieldError{Field: field, Message: "must be a whole number"}
	}
	return &n, nil
}

// OptionalString trims value and returns nil when it is blank, so the field
// is omitted from the JSON payload.
func OptionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// IsFieldError reports whether err rejected a draft locally.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
