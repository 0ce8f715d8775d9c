package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDelay = 100 * time.Millisecond

// Subscribe streams the mapping at path. Filesystem changes to the mapping's
// bucket are coalesced and answered with a fresh full read.
func (p *Disk) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	if err := ValidateParent(path); err != nil {
		return nil, err
	}
	if p.isClosed() {
		return nil, ErrClosed
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn().Err(err).Msg("watcher close")
			}
		})
	}

	if err := watcher.Add(p.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}
	bucket := filepath.Clean(p.bucketDir(path))
	if err := watcher.Add(bucket); err != nil && !errors.Is(err, os.ErrNotExist) {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", bucket, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		// Closing the backend ends every subscription.
		select {
		case <-p.ctx.Done():
		case <-ctx.Done():
		}
		cancel()
	}()

	sub := newSubscriber()
	refresh := make(chan struct{}, 1)
	poke := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	go func() {
		defer sub.close()
		defer closeWatcher()

		throttle := newEventThrottle(watchDelay)
		defer throttle.Stop()

		poke()
		for {
			select {
			case <-ctx.Done():
				return
			case <-refresh:
				value, err := p.read(ctx, path)
				if err != nil {
					if ctx.Err() == nil {
						p.log.Warn().Err(err).Str("path", path).Msg("read snapshot")
					}
					continue
				}
				sub.deliver(Snapshot{Path: path, Value: value})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Overflow and similar errors lose events; re-read to resync.
				p.log.Debug().Err(err).Msg("watcher error")
				throttle.Enqueue(poke)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Clean(evt.Name)
				switch {
				case name == bucket:
					// diskv prunes empty bucket directories, so the bucket
					// comes and goes with its first and last child.
					if evt.Has(fsnotify.Create) {
						if err := watcher.Add(bucket); err != nil {
							p.log.Warn().Err(err).Str("dir", bucket).Msg("watch bucket")
						}
					}
					throttle.Enqueue(poke)
				case filepath.Dir(name) == bucket:
					throttle.Enqueue(poke)
				}
			}
		}
	}()

	return sub.ch, nil
}

// eventThrottle coalesces rapid change notifications so subscribers get one
// snapshot per burst of filesystem activity instead of one per write.
type eventThrottle struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{delay: delay}
}

func (t *eventThrottle) Enqueue(fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.mu.Lock()
			t.timer = nil
			t.mu.Unlock()
			fire()
		})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
