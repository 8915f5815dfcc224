package source

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// ChangeEvent reports a write to a device history file
type ChangeEvent struct {
	Path      string
	FileName  string
	Operation string
}

// Watcher emits ChangeEvents for .jsonl files in a directory
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	events  chan ChangeEvent
	done    chan struct{}
}

// NewWatcher starts watching dir
func NewWatcher(dir string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: watcher,
		dir:     dir,
		events:  make(chan ChangeEvent, 100),
		done:    make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.events)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".jsonl" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			change := ChangeEvent{
				Path:      event.Name,
				FileName:  strings.ToLower(filepath.Base(event.Name)),
				Operation: event.Op.String(),
			}
			select {
			case w.events <- change:
			case <-w.done:
				return
			default:
				// consumer is behind
				util.LogDebugf("Dropped change event for %s", change.Path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error", util.F("error", err.Error()))

		case <-w.done:
			return
		}
	}
}

// Events returns the change channel; it is closed after Close
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Close stops watching
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.watcher.Close()
}
