package controller

import (
	"context"

	"github.com/Makepad-fr/checklist/internal/model"
)

// DataService is the remote owner of todo state. Mutations return the rows
// they affected.
type DataService interface {
	ListTodos(ctx context.Context) ([]model.Todo, error)
	InsertTodo(ctx context.Context, text string) ([]model.Todo, error)
	DeleteTodo(ctx context.Context, id string) ([]model.Todo, error)
	UpdateTodoDone(ctx context.Context, id string, done bool) ([]model.Todo, error)
}

// Confirmer gates destructive operations on an explicit user answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

var (
	AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	NeverConfirm  Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
)
