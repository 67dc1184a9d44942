package service

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"backoffice/internal/store"
)

// ValidationError reports bad input. Fields is set when several fields were
// checked at once.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// fieldErrors collects per-field messages; the first message for a field wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field string, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Message: "validation failed", Fields: f}
}

type lookupError struct {
	message string
	kind    error
}

func (e *lookupError) Error() string { return e.message }

func (e *lookupError) Unwrap() error { return e.kind }

func notFound(what string) error {
	return &lookupError{message: what + " not found", kind: store.ErrNotFound}
}

func conflict(message string) error {
	return &lookupError{message: message, kind: store.ErrConflict}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, ".")
}
