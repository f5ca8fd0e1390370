package core

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a directory tree and calls OnChange for each changed
// file once writes have settled.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	logger   *zap.SugaredLogger
	onChange func(path string)

	// Filter, when set, limits which files trigger OnChange.
	Filter func(path string) bool

	pending map[string]time.Time
	mu      sync.Mutex
	delay   time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func NewWatcher(root string, logger *zap.SugaredLogger, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Watcher{
		root:     root,
		watcher:  fsw,
		logger:   logger,
		onChange: onChange,
		pending:  make(map[string]time.Time),
		delay:    100 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() error {
	if err := w.addTree(w.root); err != nil {
		return err
	}

	go w.eventLoop()
	go w.debounceLoop()

	w.logger.Infow("watching for template changes", "dir", w.root)
	return nil
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warnw("cannot watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	if w.Filter != nil && !w.Filter(event.Name) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.mu.Lock()
		w.pending[event.Name] = time.Now()
		w.mu.Unlock()
	}
}

func (w *Watcher) debounceLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, queuedAt := range w.pending {
		if now.Sub(queuedAt) >= w.delay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.logger.Debugw("template changed", "path", path)
		if w.onChange != nil {
			w.onChange(path)
		}
	}
}
