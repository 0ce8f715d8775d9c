package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"tableflip.dev/notes/pkg/note"
)

// Formats accepted by Structured.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type listing struct {
	Path  string      `json:"path" yaml:"path"`
	Count int         `json:"count" yaml:"count"`
	Notes []note.Note `json:"notes" yaml:"notes"`
}

// Structured writes the notes at path in a machine readable format.
func Structured(w io.Writer, format, path string, notes []note.Note) error {
	if notes == nil {
		notes = []note.Note{}
	}
	doc := listing{Path: path, Count: len(notes), Notes: notes}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}
}
