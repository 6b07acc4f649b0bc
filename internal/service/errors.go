package service

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrUnauthorized is returned when the backend rejects the session credential.
// The stored credential has already been cleared when this is returned.
var ErrUnauthorized = errors.New("session expired")

// APIError is a non-2xx response from the backend.
// Errors maps field names to validation messages and may be nil.
type APIError struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "request failed"
	}
	return e.Message
}

// Detail returns the text shown to the user: every field message joined by
// newlines when field errors are present, otherwise the message.
func (e *APIError) Detail() string {
	if len(e.Errors) == 0 {
		return e.Error()
	}
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		msgs = append(msgs, e.Errors[field]...)
	}
	if len(msgs) == 0 {
		return e.Error()
	}
	return strings.Join(msgs, "\n")
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return e.Op + ": request timed out"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
