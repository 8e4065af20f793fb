package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"agenda-sync/domain/feed"
)

const debounceDelay = 500 * time.Millisecond

// RulesWatcher reloads the rules file when it changes on disk and notifies
// subscribers. Invalid edits are logged and the previous rules stay active.
type RulesWatcher struct {
	path     string
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once

	mu        sync.RWMutex
	rules     feed.Rules
	callbacks []func(feed.Rules)
}

// NewRulesWatcher loads path and starts watching its directory. Editors
// usually replace files rather than write in place, so the directory is
// watched and events are filtered by name.
func NewRulesWatcher(path string, logger *zap.Logger) (*RulesWatcher, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch rules file: %w", err)
	}

	w := &RulesWatcher{
		path:    filepath.Clean(path),
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
		rules:   rules,
	}
	go w.watchLoop()

	logger.Info("Rules hot reloading enabled", zap.String("file", path))
	return w, nil
}

// Current returns the active rules.
func (w *RulesWatcher) Current() feed.Rules {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rules
}

// OnChange registers a callback invoked with every successfully reloaded rule set.
func (w *RulesWatcher) OnChange(callback func(feed.Rules)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Stop ends the watch loop.
func (w *RulesWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *RulesWatcher) watchLoop() {
	defer w.watcher.Close()

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Rules watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *RulesWatcher) reload() {
	rules, err := LoadRules(w.path)
	if err != nil {
		w.logger.Error("Invalid rules after reload, keeping previous rules", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.rules = rules
	callbacks := append([]func(feed.Rules){}, w.callbacks...)
	w.mu.Unlock()

	for _, callback := range callbacks {
		callback(rules)
	}
	w.logger.Info("Rules reloaded", zap.String("file", w.path), zap.Int("callbacksNotified", len(callbacks)))
}
