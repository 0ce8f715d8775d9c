// Package mcp provides the Model Context Protocol server integration for notes.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

// Service coordinates remote-backed operations that are shared by the MCP server.
type Service struct {
	List *app.List
}

// ErrNoteNotFound is returned when a note id is not in the mapping.
var ErrNoteNotFound = errors.New("note not found")

// Save actions reported by SaveNote.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
	ActionNone    = "none"
)

// NoteDTO is a transport-friendly projection of a note.
type NoteDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SaveResult reports what a save did.
type SaveResult struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
}

// NewService builds a service over the notes list.
func NewService(l *app.List) *Service {
	return &Service{List: l}
}

// Path returns the mapping path the service reads and writes.
func (s *Service) Path() string {
	return s.List.Path
}

// ListNotes returns every note in key order.
func (s *Service) ListNotes(ctx context.Context) ([]NoteDTO, error) {
	if s.List == nil || s.List.Remote == nil {
		return nil, errors.New("remote is not configured")
	}
	snap, err := store.Get(ctx, s.List.Remote, s.List.Path)
	if err != nil {
		return nil, err
	}
	var cache note.Cache
	if !cache.Replace(snap.Value) {
		return nil, fmt.Errorf("mapping at %q is not a set of notes", s.List.Path)
	}
	notes := cache.Notes()
	out := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, toDTO(n))
	}
	return out, nil
}

// NoteByID returns the note stored under id.
func (s *Service) NoteByID(ctx context.Context, id string) (NoteDTO, error) {
	notes, err := s.ListNotes(ctx)
	if err != nil {
		return NoteDTO{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return NoteDTO{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
}

// SaveNote applies the editor save rule to text and id.
func (s *Service) SaveNote(ctx context.Context, text, id string) (SaveResult, error) {
	if s.List == nil {
		return SaveResult{}, errors.New("remote is not configured")
	}
	written, err := s.List.Put(ctx, text, id)
	if err != nil {
		return SaveResult{}, err
	}
	switch {
	case written == "" && id != "":
		return SaveResult{ID: id, Action: ActionRemoved}, nil
	case written == "":
		return SaveResult{Action: ActionNone}, nil
	case id == "":
		return SaveResult{ID: written, Action: ActionCreated}, nil
	default:
		return SaveResult{ID: written, Action: ActionUpdated}, nil
	}
}

// DeleteNote removes the note stored under id. Missing notes are not an error.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if s.List == nil || s.List.Remote == nil {
		return errors.New("remote is not configured")
	}
	if id == "" {
		return errors.New("id is required")
	}
	return s.List.Remote.Remove(ctx, store.Child(s.List.Path, id))
}

func toDTO(n note.Note) NoteDTO {
	return NoteDTO{ID: n.ID, Title: note.Title(n.Text), Text: n.Text}
}
