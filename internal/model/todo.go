package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Todo is a checklist entry as the GraphQL service returns it.
// The service assigns ID at insert time and never changes it.
type Todo struct {
	ID   string `json:"id" validate:"required,uuid"`
	Text string `json:"text" validate:"required"`
	Done bool   `json:"done"`
}

// Validate reports whether t is a well-formed record.
func (t Todo) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid todo %q: %w", t.ID, err)
	}
	return nil
}

// Stats counts done and pending entries.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Index returns the position of the todo with id, or -1.
func Index(todos []Todo, id string) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
