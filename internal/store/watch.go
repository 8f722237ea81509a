package store

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watch emits the date of every record file that is created or replaced in
// the store directory. The channel is closed when ctx is done.
func (s *FileStore) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, errors.Wrap(err, "failed to watch data directory")
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
					continue
				}
				date, ok := dateFromName(filepath.Base(ev.Name))
				if !ok {
					continue
				}
				select {
				case out <- date:
				default:
					// Subscriber is behind, it will catch up on the next change
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("record watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}
