// Package note holds the note model and the local snapshot cache used by the
// list screen.
package note

import "strings"

// NewNoteTitle is shown by the editor when it opens without any text.
const NewNoteTitle = "New note"

// Note is a single entry of the remote notes mapping.
type Note struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Normalize trims the whitespace and newlines around text.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Title returns the first line of text, or NewNoteTitle when text is empty.
func Title(text string) string {
	if text == "" {
		return NewNoteTitle
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
