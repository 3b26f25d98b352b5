package pool

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/logicielsjpb/photomosaic/internal/matching"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher grows a live candidate pool as image files appear in a directory.
// New files are analyzed and appended to the index; the index's lazy rebuild
// means a burst of arrivals costs a single rebuild on the next query.
//
// The watcher serializes its own appends and exposes Query for lookups, so
// it doubles as the mutual-exclusion wrapper the index itself does not
// provide.
type Watcher struct {
	dir        string
	extensions []string
	builder    *Builder
	index      *matching.Index
	logger     *zap.Logger
	debounce   time.Duration

	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	fsw         *fsnotify.Watcher
	started     bool
	stopOnce    sync.Once
	done        chan struct{}
}

// NewWatcher creates a watcher over dir. extensions filters which files are
// picked up (e.g. ".png", ".jpg"); empty means all files.
func NewWatcher(dir string, extensions []string, builder *Builder, index *matching.Index, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:         dir,
		extensions:  extensions,
		builder:     builder,
		index:       index,
		logger:      logger,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching pool directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
		w.mu.Unlock()
	})
}

// Query answers a nearest-neighbor lookup against the live index, serialized
// with concurrent appends.
func (w *Watcher) Query(vector []float64, k int) ([]matching.Match, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index.Query(vector, k)
}

// Len returns the live candidate count, serialized with concurrent appends.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index.Len()
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.wantsFile(event.Name) {
				continue
			}
			w.scheduleAnalyze(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// scheduleAnalyze debounces rapid event sequences for one path, so a file
// still being written is analyzed once, after it settles.
func (w *Watcher) scheduleAnalyze(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounceMap[path]; ok {
		timer.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.analyze(path)
	})
}

func (w *Watcher) analyze(path string) {
	w.mu.Lock()
	delete(w.debounceMap, path)
	position := w.index.Len()
	w.mu.Unlock()

	vec, err := w.builder.Analyze(path, w.builder.rngFor(position))
	if err != nil {
		w.logger.Warn("skipping new candidate", zap.String("path", path), zap.Error(err))
		return
	}

	w.mu.Lock()
	err = w.index.Add(path, vec)
	w.mu.Unlock()
	if err != nil {
		w.logger.Warn("failed to add candidate", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("added candidate", zap.String("path", path))
}

// wantsFile reports whether path matches the configured extension filter.
func (w *Watcher) wantsFile(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range w.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
