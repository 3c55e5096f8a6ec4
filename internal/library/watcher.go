package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavesearch/internal/tags"
)

// settleDelay gives writers time to finish before a new file is read.
const settleDelay = 500 * time.Millisecond

// Change is a music file that appeared, changed or disappeared.
type Change struct {
	Path    string
	Removed bool
}

// Watcher reports music file changes under the library sources. Changes are
// delivered on a channel so that a single consumer applies them in order.
type Watcher struct {
	watcher *fsnotify.Watcher
	sources []string
	logger  logrus.FieldLogger
	changes chan Change
}

// NewWatcher starts watching sources recursively.
func NewWatcher(sources []string, logger logrus.FieldLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		sources: sources,
		logger:  logger,
		changes: make(chan Change, 64),
	}
	for _, src := range sources {
		if err := w.addDirectory(src); err != nil {
			fw.Close()
			return nil, err
		}
	}

	logger.WithField("sources", sources).Info("File watcher started")
	return w, nil
}

// Changes returns the channel of detected changes. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run dispatches file events until ctx is canceled or the watcher closes.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("File watcher error")
		}
	}
}

// addDirectory recursively adds dir and its subdirectories to the watcher.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// Ignore temporary files and hidden files
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return
	}

	isMusic := tags.IsMusicFile(event.Name)

	switch {
	case isMusic && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)):
		w.emit(ctx, Change{Path: event.Name, Removed: true})

	case isMusic && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)):
		select {
		case <-ctx.Done():
			return
		case <-time.After(settleDelay):
		}
		w.emit(ctx, Change{Path: event.Name})

	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectory(event.Name); err != nil {
				w.logger.WithError(err).WithField("directory", event.Name).Warn("Failed to watch new directory")
				return
			}
			w.logger.WithField("directory", event.Name).Info("Watching new directory")
		}
	}
}

func (w *Watcher) emit(ctx context.Context, c Change) {
	w.logger.WithFields(logrus.Fields{
		"file":    w.displayPath(c.Path),
		"removed": c.Removed,
	}).Debug("Library change detected")

	select {
	case w.changes <- c:
	case <-ctx.Done():
	}
}

// displayPath shortens p relative to the source containing it.
func (w *Watcher) displayPath(p string) string {
	for _, src := range w.sources {
		if strings.HasPrefix(p, src) {
			return relativePath(src, p)
		}
	}
	return p
}
