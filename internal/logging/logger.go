// Package logging provides category-keyed structured logging for fluxkit.
// Each subsystem logs through a named zap logger obtained with Get; the root
// logger is a no-op until the embedding binary installs one with SetRoot, so
// library code can log unconditionally without configuring anything.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category identifies a logging subsystem.
type Category string

const (
	CategoryStore    Category = "store"    // Store mutation and fan-out
	CategoryListener Category = "listener" // Listener recompute/skip decisions
	CategoryDispatch Category = "dispatch" // Dispatcher forwarding
	CategoryConfig   Category = "config"   // Configuration loading
	CategoryUI       Category = "ui"       // Demo view layer
)

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.Logger)
)

// SetRoot installs the process-wide root logger. Category loggers handed out
// before SetRoot keep pointing at the old root, so binaries should call this
// before constructing stores and listeners.
func SetRoot(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*zap.Logger)
}

// Get returns the named logger for a category, creating it on first use.
func Get(c Category) *zap.Logger {
	mu.RLock()
	l, ok := loggers[c]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	l = root.Named(string(c))
	loggers[c] = l
	return l
}

// Sync flushes the root logger. Safe to call on a no-op root.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}
