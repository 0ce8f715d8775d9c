// Package store provides the remote key-value service the notes screens sync
// against. Every backend delivers full snapshots of a mapping on each change.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidPath is returned for malformed mapping or child paths.
	ErrInvalidPath = errors.New("store: invalid path")
	// ErrClosed is returned once the backend has been closed.
	ErrClosed = errors.New("store: closed")
	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("store: unknown backend")
)

// Snapshot is one complete delivery of the mapping stored at Path.
type Snapshot struct {
	Path  string
	Value any
}

// Remote is the capability surface of the key-value service.
type Remote interface {
	// Subscribe streams the full mapping at path, once immediately and again
	// after every change. The channel is closed when ctx is done.
	Subscribe(ctx context.Context, path string) (<-chan Snapshot, error)
	// Write upserts value at the child path parent/id.
	Write(ctx context.Context, path string, value any) error
	// Remove deletes the child at parent/id. Removing a missing child is not
	// an error.
	Remove(ctx context.Context, path string) error
	// GenerateID returns a new unique child identifier without writing.
	GenerateID(path string) string
	Close() error
}

const pathSep = "/"

// Child joins a mapping path and a child id.
func Child(parent, id string) string {
	return parent + pathSep + id
}

// SplitChild breaks parent/id apart, validating both segments.
func SplitChild(path string) (parent, id string, err error) {
	i := strings.LastIndex(path, pathSep)
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q has no child segment", ErrInvalidPath, path)
	}
	parent, id = path[:i], path[i+1:]
	if err := ValidateParent(parent); err != nil {
		return "", "", err
	}
	if err := validSegment(id); err != nil {
		return "", "", fmt.Errorf("%w: child of %q: %v", ErrInvalidPath, parent, err)
	}
	return parent, id, nil
}

// ValidateParent checks a mapping path. Nested mappings are not supported.
func ValidateParent(path string) error {
	if strings.Contains(path, pathSep) {
		return fmt.Errorf("%w: %q is not a mapping path", ErrInvalidPath, path)
	}
	if err := validSegment(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return nil
}

func validSegment(s string) error {
	if s == "" {
		return errors.New("empty segment")
	}
	if i := strings.IndexAny(s, ".$#[]/"); i >= 0 {
		return fmt.Errorf("segment %q contains %q", s, s[i])
	}
	return nil
}

// newID returns a time-ordered id, so ascending keys follow creation order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Get returns the first snapshot of path and drops the subscription.
func Get(ctx context.Context, r Remote, path string) (Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := r.Subscribe(ctx, path)
	if err != nil {
		return Snapshot{}, err
	}
	select {
	case snap, ok := <-ch:
		if !ok {
			if err := ctx.Err(); err != nil {
				return Snapshot{}, err
			}
			return Snapshot{}, fmt.Errorf("store: subscription to %q ended before first snapshot", path)
		}
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func copyMapping(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
