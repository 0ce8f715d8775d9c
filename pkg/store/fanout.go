package store

import "sync"

// subscriber holds at most one pending snapshot. A newer snapshot replaces
// an undelivered one; each snapshot is the full state so nothing is lost.
type subscriber struct {
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

func newSubscriber() *subscriber {
	return &subscriber{ch: make(chan Snapshot, 1)}
}

func (s *subscriber) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// fanout tracks subscribers per mapping path.
type fanout struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func newFanout() *fanout {
	return &fanout{subs: make(map[string]map[*subscriber]struct{})}
}

// add registers a subscriber and reports whether it is the first for path.
func (f *fanout) add(path string) (*subscriber, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[path]
	if !ok {
		set = make(map[*subscriber]struct{})
		f.subs[path] = set
	}
	s := newSubscriber()
	set[s] = struct{}{}
	return s, !ok
}

// remove closes s and reports whether path has no subscribers left.
func (f *fanout) remove(path string, s *subscriber) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.close()
	set := f.subs[path]
	delete(set, s)
	if len(set) == 0 {
		delete(f.subs, path)
		return true
	}
	return false
}

func (f *fanout) publish(snap Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs[snap.Path] {
		s.deliver(snap)
	}
}

func (f *fanout) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.subs))
	for p := range f.subs {
		out = append(out, p)
	}
	return out
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for path, set := range f.subs {
		for s := range set {
			s.close()
		}
		delete(f.subs, path)
	}
}
