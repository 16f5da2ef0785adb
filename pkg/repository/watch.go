package repository

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes to the same path, such as a
// deploy writing a POM and then its checksums.
const DefaultDebounce = 200 * time.Millisecond

const eventChannelBuffer = 100

// FSWatcher reports changes below a [Local] repository.
type FSWatcher struct {
	repo     *Local
	fs       *fsnotify.Watcher
	events   chan Event
	debounce time.Duration
	logger   *log.Logger
}

// NewFSWatcher creates a watcher for repo. A nil logger uses log.Default().
func NewFSWatcher(repo *Local, logger *log.Logger) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FSWatcher{
		repo:     repo,
		fs:       w,
		events:   make(chan Event, eventChannelBuffer),
		debounce: DefaultDebounce,
		logger:   logger.WithPrefix("watch"),
	}, nil
}

// Events returns the event channel. It is closed when Run returns.
func (w *FSWatcher) Events() <-chan Event { return w.events }

// Run watches the repository tree until ctx is done. Directories created
// while running are added as they appear.
func (w *FSWatcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fs.Close()

	if err := w.addTree(w.repo.Root()); err != nil {
		return err
	}
	w.logger.Debug("watching repository", "name", w.repo.Name(), "root", w.repo.Root())

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 && isDir(ev.Name) {
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Warn("watch directory", "path", ev.Name, "err", err)
				}
			}
			rel, ok := w.repo.Rel(ev.Name)
			if !ok || hidden(rel) {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[rel] = struct{}{}

		case <-timer.C:
			for rel := range pending {
				select {
				case w.events <- Event{Repository: w.repo.Name(), Path: rel}:
				case <-ctx.Done():
					return nil
				}
			}
			clear(pending)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file system error", "err", err)
		}
	}
}

func (w *FSWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable directories are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return w.fs.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
