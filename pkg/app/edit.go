package app

import "tableflip.dev/notes/pkg/note"

// SaveFunc receives the raw editor text and the note id ("" for a new note).
type SaveFunc func(text, id string) Op

// Edit holds the state of a single note editor.
type Edit struct {
	text  string
	id    string
	title string
	save  SaveFunc
	done  bool
}

// NewEdit returns an editor pre-filled with text. An empty id means a new
// note.
func NewEdit(text, id string, save SaveFunc) *Edit {
	return &Edit{
		text:  text,
		id:    id,
		title: note.Title(text),
		save:  save,
	}
}

// Title is fixed when the editor loads.
func (e *Edit) Title() string { return e.title }

func (e *Edit) ID() string { return e.id }

func (e *Edit) Text() string { return e.text }

func (e *Edit) SetText(text string) { e.text = text }

// Done hands the current text to the save handler. Only the first call
// reaches the handler; later calls return nil.
func (e *Edit) Done() Op {
	if e.done {
		return nil
	}
	e.done = true
	if e.save == nil {
		return nil
	}
	return e.save(e.text, e.id)
}
