package printers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tableflip.dev/notes/pkg/note"
)

func init() {
	color.NoColor = true
}

var sample = []note.Note{
	{ID: "0001", Text: "Buy milk"},
	{ID: "0002", Text: "Call mom\nafter work"},
}

func TestPrettyNotes(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.TitleWithCount("items", len(sample))
	pp.Notes(sample...)

	out := buf.String()
	for _, want := range []string{"items - 2 notes", "• Buy milk", "• Call mom", indent + "after work"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0001") {
		t.Fatalf("ids should be hidden without ShowID:\n%s", out)
	}
}

func TestPrettyNotesWithIDs(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, ShowID: true}
	pp.Notes(sample...)

	out := buf.String()
	for _, want := range []string{"ID", "NOTE", "0001", "Buy milk", "0002"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrettyEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.TitleWithCount("items", 1)
	pp.Notes()
	if out := buf.String(); !strings.Contains(out, "1 note\n") || !strings.Contains(out, "none") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Structured(&buf, FormatJSON, "items", sample); err != nil {
		t.Fatalf("json: %v", err)
	}
	var doc listing
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Path != "items" || doc.Count != 2 || doc.Notes[1].Text != "Call mom\nafter work" {
		t.Fatalf("unexpected doc %+v", doc)
	}
}

func TestStructuredYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Structured(&buf, FormatYAML, "items", nil); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var doc listing
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Count != 0 || len(doc.Notes) != 0 {
		t.Fatalf("expected empty notes list, got %+v", doc)
	}
	if !strings.Contains(buf.String(), "notes: []") {
		t.Fatalf("expected explicit empty list:\n%s", buf.String())
	}
}

func TestStructuredUnknownFormat(t *testing.T) {
	if err := Structured(&bytes.Buffer{}, "xml", "items", sample); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
