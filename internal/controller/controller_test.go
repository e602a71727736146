package controller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Makepad-fr/checklist/internal/cache"
	"github.com/Makepad-fr/checklist/internal/controller"
	"github.com/Makepad-fr/checklist/internal/memory"
	"github.com/Makepad-fr/checklist/internal/model"
)

var errBoom = errors.New("boom")

type ControllerTestSuite struct {
	suite.Suite
	ctx  context.Context
	svc  *memory.Service
	ctrl *controller.Controller
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func (s *ControllerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = memory.New(model.Todo{ID: "a", Text: "buy milk"})
	s.ctrl = controller.New(s.svc, controller.WithConfirmer(controller.AlwaysConfirm))
}

func (s *ControllerTestSuite) load() {
	s.Require().NoError(s.ctrl.Load(s.ctx))
}

func (s *ControllerTestSuite) TestInitialViewIsLoading() {
	v := s.ctrl.View()
	s.Equal(controller.StateLoading, v.State)
	s.Nil(v.Todos)
}

func (s *ControllerTestSuite) TestLoad() {
	s.load()

	v := s.ctrl.View()
	s.Equal(controller.StateReady, v.State)
	s.Equal([]model.Todo{{ID: "a", Text: "buy milk"}}, v.Todos)
	s.NoError(v.Err)
}

func (s *ControllerTestSuite) TestLoadExposesNoDataWhilePending() {
	s.load()
	release := s.svc.Hold(memory.MethodList)

	done := make(chan error, 1)
	go func() { done <- s.ctrl.Load(s.ctx) }()

	s.Require().Eventually(func() bool {
		return s.svc.CallCount(memory.MethodList) == 2
	}, time.Second, time.Millisecond)

	v := s.ctrl.View()
	s.Equal(controller.StateLoading, v.State)
	s.Nil(v.Todos)

	release()
	s.Require().NoError(<-done)
	s.Equal(controller.StateReady, s.ctrl.View().State)
}

func (s *ControllerTestSuite) TestLoadFailureIsTerminalUntilNextLoad() {
	s.svc.Fail(memory.MethodList, errBoom)

	err := s.ctrl.Load(s.ctx)
	var ferr *controller.FetchError
	s.Require().ErrorAs(err, &ferr)
	s.ErrorIs(err, errBoom)

	v := s.ctrl.View()
	s.Equal(controller.StateError, v.State)
	s.Nil(v.Todos)
	s.ErrorIs(v.Err, errBoom)

	s.load()
	s.Equal(controller.StateReady, s.ctrl.View().State)
}

func (s *ControllerTestSuite) TestCreateBlankIsSkipped() {
	s.load()
	for _, text := range []string{"", "   ", "\t\n"} {
		s.ctrl.SetDraft(text)
		created, err := s.ctrl.Create(s.ctx, text)
		s.NoError(err)
		s.Nil(created)
		s.Equal(text, s.ctrl.Draft())
	}
	s.Equal(1, len(s.svc.Calls()))
	s.Len(s.ctrl.View().Todos, 1)
}

func (s *ControllerTestSuite) TestCreateRefetches() {
	s.load()
	s.ctrl.SetDraft("walk dog")

	created, err := s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(created)
	s.Equal("walk dog", created.Text)
	s.False(created.Done)
	s.Empty(s.ctrl.Draft())

	calls := s.svc.Calls()
	s.Require().Len(calls, 3)
	s.Equal(memory.Call{Method: memory.MethodInsert, Text: "walk dog"}, calls[1])
	s.Equal(memory.MethodList, calls[2].Method)

	todos := s.ctrl.View().Todos
	s.Require().Len(todos, 2)
	matches := 0
	for _, t := range todos {
		if t.Text == "walk dog" {
			matches++
			s.False(t.Done)
			s.Equal(created.ID, t.ID)
		}
	}
	s.Equal(1, matches)
}

func (s *ControllerTestSuite) TestCreateFailureKeepsDraft() {
	s.load()
	s.ctrl.SetDraft("walk dog")
	s.svc.Fail(memory.MethodInsert, errBoom)

	created, err := s.ctrl.Submit(s.ctx)
	s.Nil(created)

	var merr *controller.MutationError
	s.Require().ErrorAs(err, &merr)
	s.Equal(controller.OpInsert, merr.Op)
	s.ErrorIs(err, errBoom)

	s.Equal("walk dog", s.ctrl.Draft())
	s.Equal(1, s.svc.CallCount(memory.MethodList))

	v := s.ctrl.View()
	s.Equal(controller.StateReady, v.State)
	s.Len(v.Todos, 1)
}

func (s *ControllerTestSuite) TestCreateRefetchFailure() {
	s.load()
	s.svc.Fail(memory.MethodList, errBoom)

	created, err := s.ctrl.Create(s.ctx, "walk dog")
	s.Require().NotNil(created)

	var ferr *controller.FetchError
	s.Require().ErrorAs(err, &ferr)

	v := s.ctrl.View()
	s.Equal(controller.StateReady, v.State)
	s.Equal([]model.Todo{{ID: "a", Text: "buy milk"}}, v.Todos)
	s.Empty(s.ctrl.Draft())

	s.load()
	s.Len(s.ctrl.View().Todos, 2)
}

func (s *ControllerTestSuite) TestCreateRefetchFailureBeforeLoad() {
	s.svc.Fail(memory.MethodList, errBoom)

	_, err := s.ctrl.Create(s.ctx, "walk dog")
	var ferr *controller.FetchError
	s.Require().ErrorAs(err, &ferr)
	s.Equal(controller.StateError, s.ctrl.View().State)
}

func (s *ControllerTestSuite) TestFailedLoadEvictsCachedList() {
	c := cache.New()
	ctrl := controller.New(s.svc, controller.WithCache(c))
	s.Require().NoError(ctrl.Load(s.ctx))
	_, ok := c.ReadQuery(controller.ListQueryKey)
	s.Require().True(ok)

	s.svc.Fail(memory.MethodList, errBoom)
	s.Error(ctrl.Load(s.ctx))
	_, ok = c.ReadQuery(controller.ListQueryKey)
	s.False(ok)
}

func (s *ControllerTestSuite) TestToggleDone() {
	s.load()

	updated, err := s.ctrl.ToggleDone(s.ctx, "a", false)
	s.Require().NoError(err)
	s.True(updated.Done)

	s.Equal(memory.Call{Method: memory.MethodUpdate, ID: "a", Done: true}, s.svc.Calls()[1])
	s.Equal(1, s.svc.CallCount(memory.MethodList))
	s.True(s.ctrl.View().Todos[0].Done)

	s.load()
	s.True(s.ctrl.View().Todos[0].Done)
}

func (s *ControllerTestSuite) TestToggleDoneUsesCallerValue() {
	s.load()

	// The row is not done, but the caller believes it is.
	updated, err := s.ctrl.ToggleDone(s.ctx, "a", true)
	s.Require().NoError(err)
	s.False(updated.Done)
	s.Equal(memory.Call{Method: memory.MethodUpdate, ID: "a", Done: false}, s.svc.Calls()[1])
}

func (s *ControllerTestSuite) TestToggleDoneFailureLeavesCache() {
	s.load()
	s.svc.Fail(memory.MethodUpdate, errBoom)

	_, err := s.ctrl.ToggleDone(s.ctx, "a", false)
	var merr *controller.MutationError
	s.Require().ErrorAs(err, &merr)
	s.Equal(controller.OpUpdate, merr.Op)
	s.Equal("a", merr.ID)
	s.False(s.ctrl.View().Todos[0].Done)
}

func (s *ControllerTestSuite) TestToggleDoneMissingRow() {
	s.load()
	_, err := s.ctrl.ToggleDone(s.ctx, "zzz", false)
	s.ErrorIs(err, controller.ErrNotFound)
}

func (s *ControllerTestSuite) TestRemovePatchesWithoutRefetch() {
	s.load()
	_, err := s.ctrl.Create(s.ctx, "walk dog")
	s.Require().NoError(err)
	lists := s.svc.CallCount(memory.MethodList)

	removed, err := s.ctrl.Remove(s.ctx, "a")
	s.Require().NoError(err)
	s.True(removed)

	s.Equal(lists, s.svc.CallCount(memory.MethodList))
	todos := s.ctrl.View().Todos
	s.Require().Len(todos, 1)
	s.Equal("walk dog", todos[0].Text)
}

func (s *ControllerTestSuite) TestRemoveDeclined() {
	s.load()
	var prompt string
	ctrl := controller.New(s.svc, controller.WithConfirmer(controller.ConfirmFunc(
		func(_ context.Context, p string) bool {
			prompt = p
			return false
		})))
	s.Require().NoError(ctrl.Load(s.ctx))
	before := len(s.svc.Calls())

	removed, err := ctrl.Remove(s.ctx, "a")
	s.NoError(err)
	s.False(removed)
	s.Equal(controller.DeletePrompt, prompt)
	s.Equal(before, len(s.svc.Calls()))
	s.Len(ctrl.View().Todos, 1)
}

func (s *ControllerTestSuite) TestRemoveFailureLeavesCache() {
	s.load()
	s.svc.Fail(memory.MethodDelete, errBoom)

	removed, err := s.ctrl.Remove(s.ctx, "a")
	s.False(removed)
	var merr *controller.MutationError
	s.Require().ErrorAs(err, &merr)
	s.Equal(controller.OpDelete, merr.Op)
	s.Len(s.ctrl.View().Todos, 1)
}

func (s *ControllerTestSuite) TestRemoveMissingRow() {
	s.load()
	removed, err := s.ctrl.Remove(s.ctx, "zzz")
	s.False(removed)
	s.ErrorIs(err, controller.ErrNotFound)
	s.Len(s.ctrl.View().Todos, 1)
}

func (s *ControllerTestSuite) TestInFlightCountsPendingMutations() {
	s.load()
	release := s.svc.Hold(memory.MethodUpdate)

	done := make(chan error, 1)
	go func() {
		_, err := s.ctrl.ToggleDone(s.ctx, "a", false)
		done <- err
	}()

	s.Require().Eventually(func() bool {
		return s.ctrl.View().InFlight == 1
	}, time.Second, time.Millisecond)

	v := s.ctrl.View()
	s.Equal(controller.StateReady, v.State)
	s.False(v.Todos[0].Done)

	release()
	s.Require().NoError(<-done)
	v = s.ctrl.View()
	s.Equal(0, v.InFlight)
	s.True(v.Todos[0].Done)
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	svc := memory.New(model.Todo{ID: "a", Text: "buy milk"})
	ctrl := controller.New(svc, controller.WithConfirmer(controller.AlwaysConfirm))
	require.NoError(t, ctrl.Load(ctx))

	_, err := ctrl.Create(ctx, "walk dog")
	require.NoError(t, err)
	todos := ctrl.View().Todos
	require.Len(t, todos, 2)
	assert.Equal(t, model.Todo{ID: "a", Text: "buy milk"}, todos[0])
	assert.Equal(t, "walk dog", todos[1].Text)
	assert.False(t, todos[1].Done)

	_, err = ctrl.ToggleDone(ctx, "a", false)
	require.NoError(t, err)
	assert.True(t, ctrl.View().Todos[0].Done)

	removed, err := ctrl.Remove(ctx, "a")
	require.NoError(t, err)
	require.True(t, removed)
	todos = ctrl.View().Todos
	require.Len(t, todos, 1)
	assert.Equal(t, "walk dog", todos[0].Text)
}

func TestRequestTimeout(t *testing.T) {
	svc := memory.New()
	release := svc.Hold(memory.MethodList)
	defer release()

	ctrl := controller.New(svc, controller.WithRequestTimeout(20*time.Millisecond))
	err := ctrl.Load(context.Background())

	var ferr *controller.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, controller.StateError, ctrl.View().State)
}

func TestDefaultConfirmerDeclines(t *testing.T) {
	svc := memory.New(model.Todo{ID: "a", Text: "buy milk"})
	ctrl := controller.New(svc)
	require.NoError(t, ctrl.Load(context.Background()))

	removed, err := ctrl.Remove(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, svc.CallCount(memory.MethodDelete))
}

// laggingList answers ListTodos with the rows the service held when the
// request arrived, but only once gate is closed.
type laggingList struct {
	*memory.Service
	taken chan struct{}
	gate  chan struct{}
}

func (l *laggingList) lag() {
	l.taken = make(chan struct{}, 1)
	l.gate = make(chan struct{})
}

func (l *laggingList) ListTodos(ctx context.Context) ([]model.Todo, error) {
	todos, err := l.Service.ListTodos(ctx)
	if l.gate != nil {
		l.taken <- struct{}{}
		<-l.gate
	}
	return todos, err
}

func TestRefetchKeepsRemovalMadeMeanwhile(t *testing.T) {
	ctx := context.Background()
	svc := &laggingList{Service: memory.New(model.Todo{ID: "a", Text: "buy milk"})}
	ctrl := controller.New(svc, controller.WithConfirmer(controller.AlwaysConfirm))
	require.NoError(t, ctrl.Load(ctx))

	svc.lag()
	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Create(ctx, "walk dog")
		done <- err
	}()
	<-svc.taken

	removed, err := ctrl.Remove(ctx, "a")
	require.NoError(t, err)
	require.True(t, removed)
	assert.Empty(t, ctrl.View().Todos)

	close(svc.gate)
	require.NoError(t, <-done)

	todos := ctrl.View().Todos
	assert.Equal(t, -1, model.Index(todos, "a"))
	require.Len(t, todos, 1)
	assert.Equal(t, "walk dog", todos[0].Text)
	assert.Equal(t, svc.Todos(), todos)
}

func TestRefetchKeepsToggleMadeMeanwhile(t *testing.T) {
	ctx := context.Background()
	svc := &laggingList{Service: memory.New(model.Todo{ID: "a", Text: "buy milk"})}
	ctrl := controller.New(svc)
	require.NoError(t, ctrl.Load(ctx))

	svc.lag()
	done := make(chan error, 1)
	go func() { done <- ctrl.Load(ctx) }()
	<-svc.taken

	_, err := ctrl.ToggleDone(ctx, "a", false)
	require.NoError(t, err)

	close(svc.gate)
	require.NoError(t, <-done)

	todos := ctrl.View().Todos
	require.Len(t, todos, 1)
	assert.True(t, todos[0].Done)
}
