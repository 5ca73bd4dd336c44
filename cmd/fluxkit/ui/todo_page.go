package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fluxkit/internal/logging"
	"fluxkit/internal/todo"
	"fluxkit/pkg/flux"
)

// stateMsg wakes the program after the store published a new state.
type stateMsg flux.Update[todo.State, todo.Action]

// streamClosedMsg means the subscription was cancelled.
type streamClosedMsg struct{}

// Model is the todo page. All reads go through listeners; the only writes are
// dispatched actions.
type Model struct {
	dispatcher flux.Dispatcher[todo.State, todo.Action]
	sub        *flux.Subscription[todo.State, todo.Action]

	visible   *flux.Listener[todo.State, todo.Action, []todo.Item]
	remaining *flux.Listener[todo.State, todo.Action, int]
	filter    *flux.Listener[todo.State, todo.Action, todo.Filter]

	input  textinput.Model
	cursor int
	errMsg string
	styles Styles
}

func itemsChanged(old, new []todo.Item) bool {
	return !slices.Equal(old, new)
}

// New builds the todo page over store and starts its listeners.
func New(store *flux.Store[todo.State, todo.Action]) Model {
	visible := flux.NewListener[todo.State, todo.Action, []todo.Item]()
	visible.Update(flux.Params[todo.State, todo.Action, []todo.Item]{
		Label: "todo-visible",
		Dependencies: []flux.DependencySelector[todo.State]{
			flux.Dep(func(s todo.State) []todo.Item { return s.Items }, itemsChanged),
			flux.Dep(func(s todo.State) todo.Filter { return s.Filter }, flux.NotEqual[todo.Filter]),
		},
		Output: flux.Out(todo.Visible, itemsChanged),
	})
	visible.Listen(store)

	remaining := flux.NewListener[todo.State, todo.Action, int]()
	remaining.Update(flux.Params[todo.State, todo.Action, int]{
		Label: "todo-remaining",
		// Filter changes cannot move the remaining count, skip them outright.
		Filter: func(prior todo.State, a todo.Action) bool {
			_, isFilter := a.(todo.SetFilter)
			return !isFilter
		},
		Dependencies: []flux.DependencySelector[todo.State]{
			flux.Dep(func(s todo.State) []todo.Item { return s.Items }, itemsChanged),
		},
		Output: flux.Out(todo.Remaining, flux.NotEqual[int]),
	})
	remaining.Listen(store)

	filter := flux.NewListener[todo.State, todo.Action, todo.Filter]()
	filter.Update(flux.Params[todo.State, todo.Action, todo.Filter]{
		Label: "todo-filter",
		Output: flux.Out(func(s todo.State) todo.Filter { return s.Filter },
			flux.NotEqual[todo.Filter]),
	})
	filter.Listen(store)

	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 120
	input.Focus()

	return Model{
		dispatcher: flux.NewDispatcher(store),
		sub:        store.Subscribe(),
		visible:    visible,
		remaining:  remaining,
		filter:     filter,
		input:      input,
		styles:     DefaultStyles(),
	}
}

// Init starts the input cursor blink and the state wait loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForUpdate(m.sub))
}

func waitForUpdate(sub *flux.Subscription[todo.State, todo.Action]) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-sub.Updates()
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(u)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if n := len(m.visible.Output()); m.cursor >= n && n > 0 {
			m.cursor = n - 1
		} else if n == 0 {
			m.cursor = 0
		}
		return m, waitForUpdate(m.sub)

	case streamClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.shutdown()
			return m, tea.Quit

		case "enter":
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				return m, nil
			}
			m.dispatch(todo.Add{ID: uuid.NewString(), Title: title})
			m.input.Reset()
			return m, nil

		case "tab":
			m.dispatch(todo.SetFilter{Filter: nextFilter(m.filter.Output())})
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.visible.Output())-1 {
				m.cursor++
			}
			return m, nil

		case "ctrl+t":
			if items := m.visible.Output(); m.cursor < len(items) {
				m.dispatch(todo.Toggle{ID: items[m.cursor].ID})
			}
			return m, nil

		case "ctrl+d":
			if items := m.visible.Output(); m.cursor < len(items) {
				m.dispatch(todo.Remove{ID: items[m.cursor].ID})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// dispatch forwards an action and surfaces a rejection on the status line.
func (m *Model) dispatch(a todo.Action) {
	if err := m.dispatcher.Dispatch(a); err != nil {
		m.errMsg = err.Error()
		logging.Get(logging.CategoryUI).Warn("dispatch rejected", zap.Error(err))
		return
	}
	m.errMsg = ""
}

func (m *Model) shutdown() {
	m.sub.Cancel()
	m.visible.Cancel()
	m.remaining.Cancel()
	m.filter.Cancel()
}

func nextFilter(f todo.Filter) todo.Filter {
	switch f {
	case todo.FilterAll:
		return todo.FilterActive
	case todo.FilterActive:
		return todo.FilterDone
	default:
		return todo.FilterAll
	}
}

// View renders from listener outputs only.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("fluxkit todo"))
	b.WriteString("\n")

	current := m.filter.Output()
	if current == "" {
		current = todo.FilterAll
	}
	for _, f := range []todo.Filter{todo.FilterAll, todo.FilterActive, todo.FilterDone} {
		style := m.styles.Tab
		if f == current {
			style = m.styles.ActiveTab
		}
		b.WriteString(style.Render(string(f)))
	}
	b.WriteString("\n\n")

	items := m.visible.Output()
	if len(items) == 0 {
		b.WriteString(m.styles.Count.Render("nothing here"))
		b.WriteString("\n")
	}
	for i, it := range items {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		check := "[ ]"
		style := m.styles.Item
		if it.Done {
			check = "[x]"
			style = m.styles.DoneItem
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, style.Render(it.Title)))
	}

	b.WriteString(m.styles.Count.Render(fmt.Sprintf("%d remaining", m.remaining.Output())))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(
		"enter add · tab filter · ctrl+t toggle · ctrl+d delete · esc quit"))
	b.WriteString("\n")
	return b.String()
}
