package graphql

import (
	"fmt"
	"strings"
)

// Error is one entry of a GraphQL response's "errors" array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ResponseError is returned when the service answered with errors.
type ResponseError struct {
	Operation string
	Errors    []Error
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(msgs, "; "))
}

// StatusError is returned for a non-2xx HTTP response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graphql %s: http %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("graphql %s: http %d: %s", e.Operation, e.StatusCode, e.Body)
}
