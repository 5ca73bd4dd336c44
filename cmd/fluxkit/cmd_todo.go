package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fluxkit/cmd/fluxkit/ui"
	"fluxkit/internal/todo"
	"fluxkit/pkg/flux"
)

// todoCmd runs the interactive todo demo
var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Interactive todo list whose view is bound to listener outputs",
	Long: `Starts a terminal UI over a todo store. Key events dispatch actions;
the view never touches the raw state, it reads the memoized outputs of three
listeners (visible items, remaining count, active filter).`,
	Args: cobra.NoArgs,
	RunE: runTodo,
}

func runTodo(cmd *cobra.Command, args []string) error {
	initial := todo.State{Filter: todo.Filter(cfg.Todo.Filter)}
	store := flux.NewStore(initial, todo.Reduce)

	dispatcher := flux.NewDispatcher(store)
	for _, title := range cfg.Todo.Seed {
		if err := dispatcher.Dispatch(todo.Add{ID: uuid.NewString(), Title: title}); err != nil {
			return err
		}
	}

	p := tea.NewProgram(ui.New(store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
