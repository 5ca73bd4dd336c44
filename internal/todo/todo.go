// Package todo is the richer fluxkit demo domain: a todo list with a
// visibility filter, used by the TUI to demonstrate listener memoization over
// multiple dependencies.
package todo

import (
	"fmt"
	"strings"
)

// Filter selects which items are visible.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

// Item is one todo entry. ID is assigned by the caller (the reducer stays
// pure), typically a uuid.
type Item struct {
	ID    string
	Title string
	Done  bool
}

// State is the immutable todo snapshot. Reduce never mutates it in place.
type State struct {
	Items  []Item
	Filter Filter
}

// Action is a todo state transition.
type Action interface{ isAction() }

// Add appends a new item.
type Add struct {
	ID    string
	Title string
}

// Toggle flips an item's done flag.
type Toggle struct{ ID string }

// Remove deletes an item.
type Remove struct{ ID string }

// SetFilter changes the visibility filter.
type SetFilter struct{ Filter Filter }

func (Add) isAction()       {}
func (Toggle) isAction()    {}
func (Remove) isAction()    {}
func (SetFilter) isAction() {}

// Reduce computes the next todo state. Rejected actions leave the state
// untouched.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Add:
		title := strings.TrimSpace(a.Title)
		if title == "" {
			return s, fmt.Errorf("todo: empty title")
		}
		if a.ID == "" {
			return s, fmt.Errorf("todo: add without id")
		}
		items := make([]Item, len(s.Items), len(s.Items)+1)
		copy(items, s.Items)
		return State{Items: append(items, Item{ID: a.ID, Title: title}), Filter: s.Filter}, nil

	case Toggle:
		i, err := find(s.Items, a.ID)
		if err != nil {
			return s, err
		}
		items := append([]Item(nil), s.Items...)
		items[i].Done = !items[i].Done
		return State{Items: items, Filter: s.Filter}, nil

	case Remove:
		i, err := find(s.Items, a.ID)
		if err != nil {
			return s, err
		}
		items := append([]Item(nil), s.Items[:i]...)
		items = append(items, s.Items[i+1:]...)
		return State{Items: items, Filter: s.Filter}, nil

	case SetFilter:
		switch a.Filter {
		case FilterAll, FilterActive, FilterDone:
			return State{Items: s.Items, Filter: a.Filter}, nil
		default:
			return s, fmt.Errorf("todo: unknown filter %q", a.Filter)
		}

	default:
		return s, fmt.Errorf("todo: unknown action %T", a)
	}
}

func find(items []Item, id string) (int, error) {
	for i, it := range items {
		if it.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("todo: no item %q", id)
}

// Visible projects the items selected by the current filter.
func Visible(s State) []Item {
	if s.Filter == "" || s.Filter == FilterAll {
		return s.Items
	}
	var out []Item
	for _, it := range s.Items {
		if (s.Filter == FilterDone) == it.Done {
			out = append(out, it)
		}
	}
	return out
}

// Remaining counts items not yet done.
func Remaining(s State) int {
	n := 0
	for _, it := range s.Items {
		if !it.Done {
			n++
		}
	}
	return n
}
