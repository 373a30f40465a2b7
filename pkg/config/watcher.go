package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// LoadSettings reads a settings file over the defaults. Keys absent from
// the file keep their default value.
func LoadSettings(path string) (visualization.Settings, error) {
	s := visualization.DefaultSettings()
	if err := decodeFile(path, &s); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// SettingsWatcher reloads a settings file when it changes and hands valid
// settings to a callback. Invalid files are logged and ignored.
type SettingsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   logging.Logger
	onChange func(visualization.Settings)
	debounce time.Duration

	mu      sync.RWMutex
	current visualization.Settings

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSettingsWatcher loads path and prepares a watcher on it. Call Start to
// begin delivering changes.
func NewSettingsWatcher(path string, logger logging.Logger, onChange func(visualization.Settings)) (*SettingsWatcher, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	initial, err := LoadSettings(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial settings: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory as well so atomic saves (rename over) are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch settings directory: %w", err)
	}

	return &SettingsWatcher{
		path:     path,
		watcher:  watcher,
		logger:   logger.With(logging.Component("settings-watcher"), logging.Path(path)),
		onChange: onChange,
		debounce: DefaultDebounce,
		current:  initial,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Current returns the last valid settings.
func (w *SettingsWatcher) Current() visualization.Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching in a background goroutine.
func (w *SettingsWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("settings watcher started")
}

// Stop ends the watch loop and releases the watcher. Safe to call twice.
func (w *SettingsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		<-w.done
		w.logger.Info("settings watcher stopped")
	})
}

func (w *SettingsWatcher) watchLoop() {
	defer close(w.done)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	target := filepath.Base(w.path)
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", logging.Error(err))
		}
	}
}

func (w *SettingsWatcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	next, err := LoadSettings(w.path)
	if err != nil {
		w.logger.Warn("invalid settings, keeping current", logging.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	w.mu.Unlock()

	if prev == next {
		return
	}
	w.logger.Info("settings reloaded",
		logging.Float64("link_width", next.LinkWidth),
		logging.Float64("link_opacity", next.LinkOpacity),
		logging.Int("node_spread", next.NodeSpread))
	if w.onChange != nil {
		w.onChange(next)
	}
}
