// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jllopis/agentdeck/pkg/watch"
)

// Watcher reloads configuration when the --config file changes and
// notifies listeners with the new value. A reload that fails keeps the
// previous configuration.
type Watcher struct {
	mu        sync.RWMutex
	args      []string
	config    *Config
	listeners []func(*Config)
	logger    *slog.Logger
	file      *watch.Watcher
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher loads the configuration described by args (see LoadWithCLI)
// and prepares to watch its --config file.
func NewWatcher(args []string, opts ...WatcherOption) (*Watcher, error) {
	path := ConfigPath(args)
	if path == "" {
		return nil, fmt.Errorf("config watcher: no --config file to watch")
	}
	cfg, err := LoadWithCLI(args)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		args:   append([]string(nil), args...),
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.file, err = watch.New(path, func(context.Context, string) { w.reload() }, watch.WithLogger(w.logger))
	if err != nil {
		return nil, err
	}
	return w, nil
}

// OnChange registers a callback to be called when config changes.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	return w.file.Run(ctx)
}

func (w *Watcher) reload() {
	w.logger.Info("config file changed, reloading")

	cfg, err := LoadWithCLI(w.args)
	if err != nil {
		w.logger.Error("failed to reload config", "error", err)
		return
	}

	w.mu.Lock()
	w.config = cfg
	listeners := make([]func(*Config), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully")
	for _, fn := range listeners {
		fn(cfg)
	}
}
