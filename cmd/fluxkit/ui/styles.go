// Package ui renders the fluxkit todo demo. It is the view-binding layer the
// library treats as an external collaborator: key events dispatch actions and
// the view reads memoized listener outputs, never the raw store state.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#8BC34A")
	mutedColor  = lipgloss.Color("244")
	errorColor  = lipgloss.Color("#e53935")
)

// Styles holds the lipgloss styles for the todo page.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Item      lipgloss.Style
	DoneItem  lipgloss.Style
	Cursor    lipgloss.Style
	Count     lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the standard theme.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1),
		Tab:       lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1).Underline(true),
		Item:      lipgloss.NewStyle(),
		DoneItem:  lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true),
		Cursor:    lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		Count:     lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1),
		Error:     lipgloss.NewStyle().Foreground(errorColor),
		Help:      lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1),
	}
}
