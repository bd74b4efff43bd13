package ingest

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the uploads directory and enqueues files dropped in
// outside the HTTP surface. Files uploaded through the API fire a Create
// event too; the dispatcher collapses that duplicate enqueue into the job
// the handler already started.
type Watcher struct {
	watcher    *fsnotify.Watcher
	dispatcher *Dispatcher
}

func NewWatcher(d *Dispatcher) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, dispatcher: d}, nil
}

// Watch starts monitoring dir until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go func() {
		defer w.watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == 0 {
					continue
				}
				id := w.dispatcher.Enqueue(event.Name)
				log.Printf("Watcher: enqueued %s (task %s)", filepath.Base(event.Name), id)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Watcher: %v", err)
			}
		}
	}()
	return nil
}
