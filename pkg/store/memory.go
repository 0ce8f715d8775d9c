package store

import (
	"context"
	"sync"
)

// Memory is an in-process Remote. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	data    map[string]map[string]any
	subs    *fanout
	closed  bool
	nextID  func() string
	idCount int
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		data:   make(map[string]map[string]any),
		subs:   newFanout(),
		nextID: newID,
	}
}

// Seed stores value under parent/id without validation, for fixtures.
func (m *Memory) Seed(parent, id string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[parent] == nil {
		m.data[parent] = make(map[string]any)
	}
	m.data[parent][id] = value
	m.subs.publish(m.snapshotLocked(parent))
}

// GeneratedIDs reports how many ids GenerateID has handed out.
func (m *Memory) GeneratedIDs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idCount
}

// Value returns the stored value at parent/id.
func (m *Memory) Value(parent, id string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[parent][id]
	return v, ok
}

// Len returns the number of children at parent.
func (m *Memory) Len(parent string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[parent])
}

func (m *Memory) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	if err := ValidateParent(path); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	s, _ := m.subs.add(path)
	s.deliver(m.snapshotLocked(path))

	go func() {
		<-ctx.Done()
		m.subs.remove(path, s)
	}()
	return s.ch, nil
}

func (m *Memory) Write(_ context.Context, path string, value any) error {
	parent, id, err := SplitChild(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.data[parent] == nil {
		m.data[parent] = make(map[string]any)
	}
	m.data[parent][id] = value
	m.subs.publish(m.snapshotLocked(parent))
	return nil
}

func (m *Memory) Remove(_ context.Context, path string) error {
	parent, id, err := SplitChild(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.data[parent][id]; !ok {
		return nil
	}
	delete(m.data[parent], id)
	m.subs.publish(m.snapshotLocked(parent))
	return nil
}

func (m *Memory) GenerateID(string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idCount++
	return m.nextID()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs.closeAll()
	return nil
}

func (m *Memory) snapshotLocked(path string) Snapshot {
	return Snapshot{Path: path, Value: copyMapping(m.data[path])}
}
