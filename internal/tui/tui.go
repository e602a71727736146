// Package tui is the interactive todo list. Every change goes through the
// controller; the list is redrawn from the controller's view after each
// reply from the service.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/checklist/internal/controller"
	"github.com/Makepad-fr/checklist/internal/model"
)

type Options struct {
	Log     *zap.Logger
	Timeout time.Duration
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, svc controller.DataService, opt Options) error {
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	confirm := &promptConfirmer{}
	ctrl := controller.New(svc,
		controller.WithConfirmer(confirm),
		controller.WithLogger(log),
		controller.WithRequestTimeout(opt.Timeout),
	)

	p := tea.NewProgram(newModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	confirm.send = p.Send
	_, err := p.Run()
	return err
}

type (
	loadedMsg  struct{ err error }
	createdMsg struct {
		todo *model.Todo
		err  error
	}
	toggledMsg struct {
		todo *model.Todo
		err  error
	}
	removedMsg struct {
		text    string
		removed bool
		err     error
	}
)

// listItem adapts a todo to bubbles/list.Item.
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string       { return i.todo.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Text }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box, text := mutedStyle.Render(boxUnchecked), it.todo.Text
	if it.todo.Done {
		box, text = successStyle.Render(boxChecked), doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

type modelTUI struct {
	ctx  context.Context
	ctrl *controller.Controller

	list    list.Model
	ti      textinput.Model
	adding   bool
	deleting bool // a Remove is waiting on its prompt or the service
	confirm  *confirmMsg
	status   string

	width, height int
}

func newModel(ctx context.Context, ctrl *controller.Controller) modelTUI {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind := key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle"))
	deleteBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	extra := func() []key.Binding { return []key.Binding{addBind, toggleBind, deleteBind, reloadBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Write your todo"
	ti.CharLimit = 200

	return modelTUI{
		ctx:    ctx,
		ctrl:   ctrl,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
	}
}

func (m modelTUI) Init() tea.Cmd { return m.load() }

func (m modelTUI) load() tea.Cmd {
	return func() tea.Msg { return loadedMsg{err: m.ctrl.Load(m.ctx)} }
}

func (m modelTUI) submit() tea.Cmd {
	return func() tea.Msg {
		t, err := m.ctrl.Submit(m.ctx)
		return createdMsg{todo: t, err: err}
	}
}

func (m modelTUI) toggle(t model.Todo) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.ctrl.ToggleDone(m.ctx, t.ID, t.Done)
		return toggledMsg{todo: updated, err: err}
	}
}

func (m modelTUI) remove(t model.Todo) tea.Cmd {
	return func() tea.Msg {
		removed, err := m.ctrl.Remove(m.ctx, t.ID)
		return removedMsg{text: t.Text, removed: removed, err: err}
	}
}

func (m modelTUI) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.todo, ok
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case confirmMsg:
		m.confirm = &msg
		m.resize()
		return m, nil

	case loadedMsg:
		m.status = ""
		return m, m.sync()

	case createdMsg:
		switch {
		case msg.todo == nil && msg.err == nil:
			// blank draft, nothing was sent
		case msg.todo != nil:
			m.adding = false
			m.ti.SetValue(m.ctrl.Draft())
			m.ti.Blur()
			m.status = ""
			m.resize()
		}
		m.setErr(msg.err)
		return m, m.sync()

	case toggledMsg:
		m.setErr(msg.err)
		return m, m.sync()

	case removedMsg:
		m.deleting = false
		m.setErr(msg.err)
		if msg.err == nil && !msg.removed {
			m.status = mutedStyle.Render("kept " + msg.text)
		}
		return m, m.sync()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirm != nil {
			return m.updateConfirm(msg), nil
		}
		if m.adding {
			return m.updateAdding(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch m.ctrl.View().State {
		case controller.StateLoading:
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		case controller.StateError:
			switch msg.String() {
			case "q", "esc":
				return m, tea.Quit
			case "r":
				return m, m.load()
			}
			return m, nil
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			return m, m.load()
		case "a":
			m.adding = true
			m.ti.SetValue(m.ctrl.Draft())
			m.ti.CursorEnd()
			m.resize()
			return m, m.ti.Focus()
		case " ", "x":
			if t, ok := m.selected(); ok {
				return m, m.toggle(t)
			}
			return m, nil
		case "d":
			if m.deleting {
				return m, nil
			}
			if t, ok := m.selected(); ok {
				m.deleting = true
				return m, m.remove(t)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateConfirm(msg tea.KeyMsg) modelTUI {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.confirm.reply <- true
	case "n", "esc", "q":
		m.confirm.reply <- false
	default:
		return m
	}
	m.confirm = nil
	m.resize()
	return m
}

func (m modelTUI) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.ctrl.SetDraft(m.ti.Value())
		return m, m.submit()
	case "esc":
		m.adding = false
		m.ti.Blur()
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.ctrl.SetDraft(m.ti.Value())
	return m, cmd
}

// setErr shows a mutation error below the list. Fetch errors replace the
// whole view instead.
func (m *modelTUI) setErr(err error) {
	var ferr *controller.FetchError
	switch {
	case err == nil:
	case errors.As(err, &ferr):
		m.status = ""
	default:
		m.status = errorStyle.Render(err.Error())
	}
}

func (m *modelTUI) sync() tea.Cmd {
	v := m.ctrl.View()
	if v.State != controller.StateReady {
		return nil
	}
	items := make([]list.Item, 0, len(v.Todos))
	for _, t := range v.Todos {
		items = append(items, listItem{todo: t})
	}
	d, p := model.Stats(v.Todos)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("GraphQL Checklist"),
		successStyle.Render("✔"), d,
		pendingStyle.Render("•"), p,
		accentStyle.Render("Total"), len(v.Todos),
	)
	return m.list.SetItems(items)
}

func (m *modelTUI) resize() {
	h := m.height - 4
	if m.adding || m.confirm != nil {
		h -= 2
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-2, h)
}

func (m modelTUI) View() string {
	v := m.ctrl.View()
	switch v.State {
	case controller.StateLoading:
		return panelString("loading...")
	case controller.StateError:
		return panelString(errorStyle.Render("error fetching todos") + "\n" +
			mutedStyle.Render(v.Err.Error()) + "\n\n" +
			helpStyle.Render("r retry • q quit"))
	}

	content := m.list.View()
	if v.InFlight > 0 {
		content += "\n" + mutedStyle.Render("saving...")
	}
	switch {
	case m.confirm != nil:
		content += "\n" + frameStyle.Render(m.confirm.prompt+" "+helpStyle.Render("[y/N]"))
	case m.adding:
		content += "\n" + frameStyle.Render("Add new todo\n"+m.ti.View())
	}
	if m.status != "" {
		content += "\n" + m.status
	}
	return panelString(content)
}
