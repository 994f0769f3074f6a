package extract

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SourceWatcher watches a single source file and re-runs extraction after
// changes settle. The parent directory is watched rather than the file
// itself: editors that save via rename would otherwise detach the watch.
type SourceWatcher struct {
	sourcePath   string
	onChange     func()
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewSourceWatcher creates a watcher that invokes onChange after the watched
// file changes and the debounce window elapses.
func NewSourceWatcher(sourcePath string, onChange func()) (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(sourcePath)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &SourceWatcher{
		sourcePath:   sourcePath,
		onChange:     onChange,
		watcher:      watcher,
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins watching for file changes.
func (sw *SourceWatcher) Start(ctx context.Context) {
	go sw.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to finish.
func (sw *SourceWatcher) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stopCh)
		<-sw.doneCh
		sw.watcher.Close()
	})
}

// watch is the event loop with debouncing.
func (sw *SourceWatcher) watch(ctx context.Context) {
	defer close(sw.doneCh)

	var debounceTimer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-sw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(sw.sourcePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(sw.debounceTime, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: watcher error: %v", err)

		case <-fire:
			log.Printf("Source changed, re-extracting %s", filepath.Base(sw.sourcePath))
			sw.onChange()
		}
	}
}
