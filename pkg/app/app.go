package app

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

// DefaultPath is the remote mapping notes live under.
const DefaultPath = "items"

var ErrRowOutOfRange = errors.New("app: row out of range")

// Op is a deferred remote mutation. UIs run it off the event loop.
type Op func(ctx context.Context) error

// List is the controller behind the notes list. It owns the local cache of
// the subscribed mapping and turns row actions into remote operations. The
// cache only changes through Apply; mutations wait for the subscription to
// echo the new state.
type List struct {
	Remote store.Remote
	Path   string

	cache   note.Cache
	editing string
}

// NewList returns a list bound to path on r. An empty path uses DefaultPath.
func NewList(r store.Remote, path string) *List {
	if path == "" {
		path = DefaultPath
	}
	return &List{Remote: r, Path: path}
}

// Subscribe opens the live subscription for the list. The channel closes
// when ctx ends or the remote drops the stream.
func (l *List) Subscribe(ctx context.Context) (<-chan store.Snapshot, error) {
	if l.Remote == nil {
		return nil, errors.New("app: no remote configured")
	}
	return l.Remote.Subscribe(ctx, l.Path)
}

// Apply replaces the cache with a delivered snapshot. It reports whether the
// snapshot was accepted; snapshots for other paths or with a malformed value
// leave the cache as it was.
func (l *List) Apply(snap store.Snapshot) bool {
	if snap.Path != l.Path {
		return false
	}
	return l.cache.Replace(snap.Value)
}

// OnAppear runs when the list becomes visible again.
func (l *List) OnAppear() {
	l.editing = ""
}

// Editing returns the id of the row last handed to an editor.
func (l *List) Editing() string {
	return l.editing
}

func (l *List) Len() int {
	return l.cache.Len()
}

// Row returns the display text of row i.
func (l *List) Row(i int) (string, error) {
	text, ok := l.cache.Text(i)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	return text, nil
}

// Notes returns the cached rows in display order.
func (l *List) Notes() []note.Note {
	return l.cache.Notes()
}

// DeleteRow removes the note at row i from the remote.
func (l *List) DeleteRow(i int) (Op, error) {
	id, ok := l.cache.ID(i)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	path := store.Child(l.Path, id)
	return func(ctx context.Context) error {
		return l.Remote.Remove(ctx, path)
	}, nil
}

// SelectRow opens an editor on row i.
func (l *List) SelectRow(i int) (*Edit, error) {
	id, ok := l.cache.ID(i)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	text, _ := l.cache.Text(i)
	l.editing = id
	return NewEdit(text, id, l.Save), nil
}

// Add opens an empty editor. The new note never reuses the editing id.
func (l *List) Add() *Edit {
	return NewEdit("", "", l.Save)
}

// Save is the editor's save handler. It returns nil when there is nothing
// to do.
func (l *List) Save(text, id string) Op {
	if id == "" && note.Normalize(text) == "" {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := l.Put(ctx, text, id)
		return err
	}
}

// Put applies the save rule synchronously:
//
//	id set, text blank   remove the note
//	id set, text         write the trimmed text
//	no id, text          write under a generated id
//	no id, text blank    nothing
//
// It returns the id written, or "" when nothing was written.
func (l *List) Put(ctx context.Context, text, id string) (string, error) {
	if l.Remote == nil {
		return "", errors.New("app: no remote configured")
	}
	text = note.Normalize(text)
	switch {
	case id != "" && text == "":
		return "", l.Remote.Remove(ctx, store.Child(l.Path, id))
	case text == "":
		return "", nil
	case id == "":
		id = l.Remote.GenerateID(l.Path)
	}
	if err := l.Remote.Write(ctx, store.Child(l.Path, id), text); err != nil {
		return "", err
	}
	return id, nil
}
