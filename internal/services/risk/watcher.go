package risk

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
)

// ModelWatcher reloads the model into a Service whenever its file changes.
type ModelWatcher struct {
	mu            sync.Mutex
	svc           *Service
	path          string
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	stopChan      chan struct{}
	onReload      func(ModelStatus, error)
}

// WatchModel starts watching path. onReload, if not nil, is called after every
// reload attempt.
func WatchModel(svc *Service, path string, onReload func(ModelStatus, error)) (*ModelWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory so creation of a missing model is noticed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, err
	}

	w := &ModelWatcher{
		svc:      svc,
		path:     path,
		watcher:  watcher,
		stopChan: make(chan struct{}),
		onReload: onReload,
	}
	go w.watchLoop()
	return w, nil
}

func (w *ModelWatcher) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				w.mu.Lock()
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, w.reload)
				w.mu.Unlock()
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.svc.SetModel(nil, "")
				logger.Info("risk model removed, using rule-based scoring", "path", w.path)
				w.notify(nil)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("model watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *ModelWatcher) reload() {
	err := w.svc.LoadModel(w.path)
	if err != nil {
		// Keep the previous model.
		logger.Warn("failed to reload risk model", "path", w.path, "error", err)
	} else {
		logger.Info("risk model reloaded", "path", w.path)
	}
	w.notify(err)
}

func (w *ModelWatcher) notify(err error) {
	if w.onReload != nil {
		w.onReload(w.svc.Status(), err)
	}
}

// Close stops the watcher.
func (w *ModelWatcher) Close() error {
	close(w.stopChan)

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}
