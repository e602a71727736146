package graphql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Makepad-fr/checklist/internal/model"
)

type returning struct {
	Returning []model.Todo `json:"returning"`
}

// ListTodos runs the list query.
func (c *Client) ListTodos(ctx context.Context) ([]model.Todo, error) {
	var data struct {
		Todos []model.Todo `json:"todos"`
	}
	req := Request{Query: listTodosQuery, OperationName: "MyQuery"}
	if err := c.Do(ctx, req, &data); err != nil {
		return nil, err
	}
	if err := validateAll(data.Todos); err != nil {
		return nil, err
	}
	if data.Todos == nil {
		data.Todos = []model.Todo{}
	}
	return data.Todos, nil
}

func (c *Client) InsertTodo(ctx context.Context, text string) ([]model.Todo, error) {
	var data struct {
		InsertTodos returning `json:"insert_todos"`
	}
	req := Request{
		Query:         addTodoMutation,
		OperationName: "addTodo",
		Variables:     map[string]any{"text": text},
	}
	if err := c.Do(ctx, req, &data); err != nil {
		return nil, err
	}
	return checked(data.InsertTodos.Returning)
}

func (c *Client) DeleteTodo(ctx context.Context, id string) ([]model.Todo, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var data struct {
		DeleteTodos returning `json:"delete_todos"`
	}
	req := Request{
		Query:         deleteTodoMutation,
		OperationName: "deleteTodo",
		Variables:     map[string]any{"id": id},
	}
	if err := c.Do(ctx, req, &data); err != nil {
		return nil, err
	}
	return checked(data.DeleteTodos.Returning)
}

func (c *Client) UpdateTodoDone(ctx context.Context, id string, done bool) ([]model.Todo, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var data struct {
		UpdateTodos returning `json:"update_todos"`
	}
	req := Request{
		Query:         toggleTodoMutation,
		OperationName: "toggleTodo",
		Variables:     map[string]any{"id": id, "done": done},
	}
	if err := c.Do(ctx, req, &data); err != nil {
		return nil, err
	}
	return checked(data.UpdateTodos.Returning)
}

// checkID rejects ids the service's uuid! scalar would refuse anyway.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("todo id %q: %w", id, err)
	}
	return nil
}

func checked(todos []model.Todo) ([]model.Todo, error) {
	if err := validateAll(todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func validateAll(todos []model.Todo) error {
	for _, t := range todos {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
