package backend

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harborview/app/backend/internal/config"
)

// settingsWatcher reloads the settings file when it changes on disk.
// Editors replace files with rename+create, so the parent directory is
// watched and events are filtered down to the one filename.
type settingsWatcher struct {
	path      string
	logger    *Logger
	watcher   *fsnotify.Watcher
	onChange  func(*Settings)
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func newSettingsWatcher(path string, logger *Logger, onChange func(*Settings)) (*settingsWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &settingsWatcher{
		path:      filepath.Clean(path),
		logger:    logger,
		watcher:   fsWatcher,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}

	go w.eventLoop()
	return w, nil
}

func (w *settingsWatcher) eventLoop() {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	pending := false

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isRelevantSettingsEvent(event) {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			pending = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(config.SettingsWatchDebounce)
			debounceCh = debounceTimer.C

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", "SettingsWatcher")

		case <-debounceCh:
			debounceCh = nil
			if !pending {
				continue
			}
			pending = false
			w.reload()
		}
	}
}

func (w *settingsWatcher) reload() {
	settings, err := LoadSettings(w.path)
	if err != nil {
		w.logger.Warn("settings reload failed: "+err.Error(), "SettingsWatcher")
		return
	}
	if w.onChange != nil {
		w.onChange(settings)
	}
}

func (w *settingsWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	<-w.stoppedCh
}

func isRelevantSettingsEvent(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename)
}
