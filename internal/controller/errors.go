package controller

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mutation matched no row.
var ErrNotFound = errors.New("no matching todo")

// Op names a mutation as the GraphQL service knows it.
type Op string

const (
	OpInsert Op = "insert_todos"
	OpUpdate Op = "update_todos"
	OpDelete Op = "delete_todos"
)

// FetchError means the list query failed. The view is in StateError until
// the next Load.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch todos: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// MutationError means a mutation failed. The cached list is left as it was.
type MutationError struct {
	Op  Op
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
