package editscreen

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
)

type saveCall struct {
	text string
	id   string
}

func newTestEditor(t *testing.T, text, id string) (*Model, *[]saveCall) {
	t.Helper()
	var calls []saveCall
	ed := app.NewEdit(text, id, func(text, id string) app.Op {
		calls = append(calls, saveCall{text: text, id: id})
		return func(context.Context) error { return nil }
	})
	m := New(context.Background(), ed, zerolog.Nop())
	m.SetSize(60, 20)
	m.Init()
	return m, &calls
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Text: string(r), Code: r})
	}
}

func hasDone(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(DoneMsg); ok {
			return true
		}
	}
	return false
}

func TestNewNoteTitle(t *testing.T) {
	m, _ := newTestEditor(t, "", "")
	if !strings.Contains(m.View(), note.NewNoteTitle) {
		t.Fatalf("expected %q title in view", note.NewNoteTitle)
	}
}

func TestExistingNoteTitleIsFirstLine(t *testing.T) {
	m, _ := newTestEditor(t, "Groceries\nmilk\neggs", "a")
	view := m.View()
	if !strings.Contains(view, "Groceries") {
		t.Fatalf("expected first line title in view:\n%s", view)
	}
	if m.Value() != "Groceries\nmilk\neggs" {
		t.Fatalf("expected editor pre-filled, got %q", m.Value())
	}
}

func TestTypingAfterInit(t *testing.T) {
	m, _ := newTestEditor(t, "", "")
	typeText(m, "Hi")
	if m.Value() != "Hi" {
		t.Fatalf("expected focused input to accept text, got %q", m.Value())
	}
}

func TestDoneKeysSaveAndPop(t *testing.T) {
	for _, tc := range []struct {
		name string
		key  tea.KeyPressMsg
	}{
		{name: "ctrl+s", key: tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}},
		{name: "esc", key: tea.KeyPressMsg{Code: tea.KeyEscape}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, calls := newTestEditor(t, "Hello", "id-1")
			typeText(m, " there")

			_, cmd := m.Update(tc.key)
			if len(*calls) != 1 {
				t.Fatalf("expected one save, got %d", len(*calls))
			}
			if got := (*calls)[0]; got.text != "Hello there" || got.id != "id-1" {
				t.Fatalf("unexpected save %+v", got)
			}
			if !hasDone(collect(cmd)) {
				t.Fatalf("expected editor to pop")
			}
		})
	}
}

func TestDoneFiresOnce(t *testing.T) {
	m, calls := newTestEditor(t, "", "")
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if len(*calls) != 1 {
		t.Fatalf("expected a single save, got %d", len(*calls))
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 20); got != "short" {
		t.Fatalf("clip short = %q", got)
	}
	if got := clip("a rather long title", 8); got != "a rathe…" {
		t.Fatalf("clip long = %q", got)
	}
	if got := clip("anything", 0); got != "anything" {
		t.Fatalf("clip unbounded = %q", got)
	}
}
