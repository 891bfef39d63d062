package io

import (
	"context"
	"github.com/fsnotify/fsnotify"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"path/filepath"
	"snapindex/feature"
	"sync"
	"time"
)

// GeoJsonWatcher keeps a memory source in sync with a GeoJSON file. Each change of the file is turned into add,
// delete and geometry change notifications of the source, so indices on the source are updated incrementally.
type GeoJsonWatcher struct {
	path     string
	source   *feature.MemorySource
	lock     sync.Locker
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// OnReload is called after each reload attempt with its error, if set.
	OnReload func(err error)
}

// NewGeoJsonWatcher creates a watcher for the file. All edits of the source happen while holding the lock, which
// must be the same lock guarding queries on indices of the source.
func NewGeoJsonWatcher(path string, source *feature.MemorySource, lock sync.Locker) (*GeoJsonWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create file watcher")
	}

	// Editors often replace files instead of writing them, so the directory is watched
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "Unable to watch directory of %s", path)
	}

	return &GeoJsonWatcher{
		path:     filepath.Clean(path),
		source:   source,
		lock:     lock,
		watcher:  watcher,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Run processes file events until the context is done or Close is called.
func (w *GeoJsonWatcher) Run(ctx context.Context) {
	sigolo.Infof("Watch %s for changes", w.path)

	var timer *time.Timer
	var timerChannel <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			sigolo.Tracef("File event %s", event.String())

			// Wait until the file doesn't change anymore
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerChannel = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			sigolo.Errorf("Error while watching %s: %+v", w.path, err)
		case <-timerChannel:
			timerChannel = nil
			err := w.Reload()
			if err != nil {
				sigolo.Errorf("Unable to reload %s: %+v", w.path, err)
			}
			if w.OnReload != nil {
				w.OnReload(err)
			}
		}
	}
}

// Reload reads the file and syncs the source with it. A file that can't be read leaves the source unchanged.
func (w *GeoJsonWatcher) Reload() error {
	features, err := ReadGeoJsonFile(w.path)
	if err != nil {
		return err
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	w.source.Sync(features)

	sigolo.Debugf("Reloaded %d features from %s", len(features), w.path)
	return nil
}

func (w *GeoJsonWatcher) Close() error {
	return w.watcher.Close()
}
