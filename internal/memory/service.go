// Package memory is an in-process stand-in for the GraphQL todo service. It
// records every call and can be scripted to fail or to hold a request open.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Makepad-fr/checklist/internal/model"
)

const (
	MethodList   = "ListTodos"
	MethodInsert = "InsertTodo"
	MethodDelete = "DeleteTodo"
	MethodUpdate = "UpdateTodoDone"
)

// Call is one recorded request.
type Call struct {
	Method string
	ID     string
	Text   string
	Done   bool
}

type Service struct {
	mu    sync.Mutex
	todos []model.Todo
	calls []Call
	fail  map[string]error
	hold  map[string]chan struct{}
}

// New returns a service seeded with todos, in order.
func New(seed ...model.Todo) *Service {
	s := &Service{
		fail: make(map[string]error),
		hold: make(map[string]chan struct{}),
	}
	s.todos = append(s.todos, seed...)
	return s
}

// Fail makes the next call to method return err.
func (s *Service) Fail(method string, err error) {
	s.mu.Lock()
	s.fail[method] = err
	s.mu.Unlock()
}

// Hold blocks calls to method until release is called or their context ends.
func (s *Service) Hold(method string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[method] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.hold[method] == ch {
				delete(s.hold, method)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns the requests received so far.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many requests hit method.
func (s *Service) CallCount(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Todos returns the stored rows.
func (s *Service) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *Service) ListTodos(ctx context.Context) ([]model.Todo, error) {
	if err := s.enter(ctx, Call{Method: MethodList}); err != nil {
		return nil, err
	}
	return s.Todos(), nil
}

func (s *Service) InsertTodo(ctx context.Context, text string) ([]model.Todo, error) {
	if err := s.enter(ctx, Call{Method: MethodInsert, Text: text}); err != nil {
		return nil, err
	}
	t := model.Todo{ID: uuid.NewString(), Text: text}

	s.mu.Lock()
	s.todos = append(s.todos, t)
	s.mu.Unlock()
	return []model.Todo{t}, nil
}

func (s *Service) DeleteTodo(ctx context.Context, id string) ([]model.Todo, error) {
	if err := s.enter(ctx, Call{Method: MethodDelete, ID: id}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []model.Todo
	kept := s.todos[:0]
	for _, t := range s.todos {
		if t.ID == id {
			deleted = append(deleted, t)
			continue
		}
		kept = append(kept, t)
	}
	s.todos = kept
	return deleted, nil
}

func (s *Service) UpdateTodoDone(ctx context.Context, id string, done bool) ([]model.Todo, error) {
	if err := s.enter(ctx, Call{Method: MethodUpdate, ID: id, Done: done}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var updated []model.Todo
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i].Done = done
			updated = append(updated, s.todos[i])
		}
	}
	return updated, nil
}

// enter records c, waits on any hold and consumes a scripted failure.
func (s *Service) enter(ctx context.Context, c Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	ch := s.hold[c.Method]
	s.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[c.Method]; ok {
		delete(s.fail, c.Method)
		return err
	}
	return nil
}
