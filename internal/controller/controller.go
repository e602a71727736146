// Package controller keeps a client-side view of the todo collection in step
// with the GraphQL service that owns it.
//
// Reads go through Load, which replaces the cached list wholesale. After a
// successful mutation the controller reconciles in one of two ways: Create
// refetches the list, ToggleDone and Remove patch the cached entry for the
// affected id. Nothing is changed locally before the service answers.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/checklist/internal/cache"
	"github.com/Makepad-fr/checklist/internal/model"
)

// ListQueryKey is the cache key of the list-todos query result.
const ListQueryKey = "todos"

// DeletePrompt is the question asked before a todo is deleted.
const DeletePrompt = "Do you really want to delete this?"

var errNoRows = errors.New("mutation returned no rows")

type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// View is a snapshot of what can be rendered. Todos is only set in
// StateReady; Err only in StateError.
type View struct {
	State    State
	Todos    []model.Todo
	Err      error
	InFlight int // mutations awaiting the service
}

type Controller struct {
	svc     DataService
	confirm Confirmer
	log     *zap.Logger
	cache   *cache.Cache
	timeout time.Duration

	mu       sync.Mutex
	state    State
	err      error
	draft    string
	inFlight int
	seq      uint64 // last issued fetch; older results are dropped
	pending  map[uint64][]patch
}

// patch reconciles a list with one mutation the service has confirmed.
type patch func([]model.Todo) []model.Todo

type Option func(*Controller)

// WithConfirmer sets the gate used by Remove. Without one every delete is
// declined.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirm = cf }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithCache(cc *cache.Cache) Option {
	return func(c *Controller) { c.cache = cc }
}

// WithRequestTimeout bounds every service call. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func New(svc DataService, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		confirm: NeverConfirm,
		log:     zap.NewNop(),
		cache:   cache.New(),
		state:   StateLoading,
		pending: make(map[uint64][]patch),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{State: c.state, InFlight: c.inFlight}
	switch c.state {
	case StateReady:
		v.Todos, _ = c.cache.ReadQuery(ListQueryKey)
	case StateError:
		v.Err = c.err
	}
	return v
}

func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Load fetches the full list. The view reports StateLoading, with no data,
// until the service answers.
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx, true)
}

// fetch runs the list query. With reset unset the current data stays
// visible while the request is pending, which is how a refetch behaves, and
// a failed refetch leaves a rendered list in place.
//
// Mutations reconciled while the request is out are replayed on its result,
// since the service may have answered from a snapshot taken before them.
func (c *Controller) fetch(ctx context.Context, reset bool) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.pending[seq] = nil
	if reset {
		c.state = StateLoading
		c.err = nil
	}
	c.mu.Unlock()

	rctx, cancel := c.requestContext(ctx)
	todos, err := c.svc.ListTodos(rctx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	patches := c.pending[seq]
	delete(c.pending, seq)
	if err != nil {
		ferr := &FetchError{Err: err}
		if seq == c.seq && (reset || c.state != StateReady) {
			c.state = StateError
			c.err = ferr
			c.cache.Evict(ListQueryKey)
		}
		c.log.Error("fetch todos failed", zap.Bool("refetch", !reset), zap.Error(err))
		return ferr
	}
	if seq != c.seq {
		c.log.Debug("dropping stale todo list", zap.Uint64("seq", seq))
		return nil
	}
	for _, p := range patches {
		todos = p(todos)
	}
	c.cache.WriteQuery(ListQueryKey, todos)
	c.state = StateReady
	c.err = nil
	return nil
}

// Create inserts a todo and refetches the list. Blank text is ignored: no
// request is sent and (nil, nil) is returned. The draft is cleared only once
// the insert succeeds. If the insert succeeds but the refetch fails, the
// created todo is returned together with the *FetchError and the list shown
// so far stays in place.
func (c *Controller) Create(ctx context.Context, text string) (*model.Todo, error) {
	if strings.TrimSpace(text) == "" {
		c.log.Debug("skipping blank todo")
		return nil, nil
	}

	c.begin()
	rctx, cancel := c.requestContext(ctx)
	rows, err := c.svc.InsertTodo(rctx, text)
	cancel()
	c.end()
	if err == nil && len(rows) == 0 {
		err = errNoRows
	}
	if err != nil {
		c.log.Error("add todo failed", zap.Error(err))
		return nil, &MutationError{Op: OpInsert, Err: err}
	}
	c.log.Info("added todo", zap.Any("returning", rows))

	c.SetDraft("")
	created := rows[0]
	if err := c.fetch(ctx, false); err != nil {
		return &created, err
	}
	return &created, nil
}

// Submit creates a todo from the current draft.
func (c *Controller) Submit(ctx context.Context) (*model.Todo, error) {
	return c.Create(ctx, c.Draft())
}

// ToggleDone sets done to !currentDone on the todo with id. currentDone is
// taken as given; if it is stale the flip goes the caller's way, not the
// server's. The cached entry is replaced by the service's returned row.
func (c *Controller) ToggleDone(ctx context.Context, id string, currentDone bool) (*model.Todo, error) {
	c.begin()
	rctx, cancel := c.requestContext(ctx)
	rows, err := c.svc.UpdateTodoDone(rctx, id, !currentDone)
	cancel()
	c.end()
	if err == nil && len(rows) == 0 {
		err = ErrNotFound
	}
	if err != nil {
		c.log.Error("toggle todo failed", zap.String("id", id), zap.Error(err))
		return nil, &MutationError{Op: OpUpdate, ID: id, Err: err}
	}
	c.log.Info("toggled todo", zap.Any("returning", rows))

	c.reconcile(func(todos []model.Todo) []model.Todo {
		for _, row := range rows {
			if i := model.Index(todos, row.ID); i >= 0 {
				todos[i] = row
			}
		}
		return todos
	})

	updated := rows[0]
	return &updated, nil
}

// Remove deletes the todo with id once the Confirmer agrees. A declined
// prompt returns (false, nil) without contacting the service. On success the
// entry is filtered out of the cached list; no refetch is issued.
func (c *Controller) Remove(ctx context.Context, id string) (bool, error) {
	if !c.confirm.Confirm(ctx, DeletePrompt) {
		c.log.Debug("delete declined", zap.String("id", id))
		return false, nil
	}

	c.begin()
	rctx, cancel := c.requestContext(ctx)
	rows, err := c.svc.DeleteTodo(rctx, id)
	cancel()
	c.end()
	if err == nil && len(rows) == 0 {
		err = ErrNotFound
	}
	if err != nil {
		c.log.Error("delete todo failed", zap.String("id", id), zap.Error(err))
		return false, &MutationError{Op: OpDelete, ID: id, Err: err}
	}
	c.log.Info("deleted todo", zap.Any("returning", rows))

	c.reconcile(func(todos []model.Todo) []model.Todo {
		out := todos[:0]
		for _, t := range todos {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
	return true, nil
}

// reconcile applies p to the cached list and queues it for every fetch
// still in flight.
func (c *Controller) reconcile(p patch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.UpdateQuery(ListQueryKey, p)
	for seq := range c.pending {
		c.pending[seq] = append(c.pending[seq], p)
	}
}

func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}
