package validation

import (
	"sort"
	"strings"
)

// ValidationError aggregates every field problem found in one request.
// Details maps a field path ("title", "tags.2", ...) to a message.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Details[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors collects problems while a request is being checked.
// The first message recorded for a field wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = message
}

func (f fieldErrors) merge(other map[string]string) {
	for field, message := range other {
		f.add(field, message)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Details: map[string]string(f)}
}
