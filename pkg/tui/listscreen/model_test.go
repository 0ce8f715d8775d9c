package listscreen

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/store"
)

func newTestModel(t *testing.T, seed map[string]string) (*Model, *store.Memory, context.CancelFunc) {
	t.Helper()
	mem := store.NewMemory()
	for id, text := range seed {
		mem.Seed(app.DefaultPath, id, text)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := New(ctx, app.NewList(mem, ""), zerolog.Nop())
	m.SetSize(60, 20)

	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("expected watch command from Init")
	}
	m, cmd = update(t, m, runCmd(t, cmd))
	m, _ = update(t, m, runCmd(t, cmd))
	return m, mem, cancel
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("command did not complete")
		return nil
	}
}

func update(t *testing.T, m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(*Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return model, cmd
}

func key(s string) tea.KeyPressMsg {
	r := []rune(s)[0]
	return tea.KeyPressMsg{Text: s, Code: r}
}

func stripANSI(s string) string {
	var b strings.Builder
	ansiSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			ansiSeq = true
			continue
		}
		if ansiSeq {
			if ansi.IsTerminator(r) {
				ansiSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestInitialSnapshotRendersRows(t *testing.T) {
	m, _, _ := newTestModel(t, map[string]string{"a": "Buy milk", "b": "Call mom\nafter work"})

	if m.ctrl.Len() != 2 {
		t.Fatalf("expected two rows, got %d", m.ctrl.Len())
	}
	view := stripANSI(m.View())
	for _, want := range []string{"Notes", "(2)", "Buy milk", "Call mom"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, "after work") {
		t.Fatalf("expected only the first line of a note in the row:\n%s", view)
	}
}

func TestEmptyListShowsHint(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	view := stripANSI(m.View())
	if !strings.Contains(view, "No notes yet") {
		t.Fatalf("expected empty hint:\n%s", view)
	}
}

func TestAddKeyOpensEmptyEditor(t *testing.T) {
	m, _, _ := newTestModel(t, map[string]string{"a": "existing"})

	for _, k := range []string{"a", "n"} {
		_, cmd := update(t, m, key(k))
		msg, ok := runCmd(t, cmd).(OpenEditMsg)
		if !ok {
			t.Fatalf("%s: expected OpenEditMsg", k)
		}
		if msg.Edit.ID() != "" || msg.Edit.Text() != "" {
			t.Fatalf("%s: expected empty editor, got id=%q text=%q", k, msg.Edit.ID(), msg.Edit.Text())
		}
	}
}

func TestEnterOpensSelectedRow(t *testing.T) {
	m, _, _ := newTestModel(t, map[string]string{"a": "first", "b": "second"})

	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected() != 1 {
		t.Fatalf("expected selection to move to row 1, got %d", m.Selected())
	}
	_, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	msg, ok := runCmd(t, cmd).(OpenEditMsg)
	if !ok {
		t.Fatalf("expected OpenEditMsg")
	}
	if msg.Edit.ID() != "b" || msg.Edit.Text() != "second" {
		t.Fatalf("unexpected editor id=%q text=%q", msg.Edit.ID(), msg.Edit.Text())
	}
	if m.ctrl.Editing() != "b" {
		t.Fatalf("expected editing id b, got %q", m.ctrl.Editing())
	}

	m.Appear()
	if m.ctrl.Editing() != "" {
		t.Fatalf("expected Appear to clear editing id")
	}
}

func TestEnterOnEmptyListDoesNothing(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	if _, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		if msg := runCmd(t, cmd); msg != nil {
			if _, ok := msg.(OpenEditMsg); ok {
				t.Fatalf("expected no editor for empty list")
			}
		}
	}
}

func TestDeleteKeyRemovesViaSubscription(t *testing.T) {
	m, mem, _ := newTestModel(t, map[string]string{"a": "first", "b": "second"})
	wait := m.waitForWatch()

	_, cmd := update(t, m, key("d"))
	if msg := runCmd(t, cmd); msg != nil {
		t.Fatalf("expected delete to produce no message, got %#v", msg)
	}
	if mem.Len(app.DefaultPath) != 1 {
		t.Fatalf("expected one stored note, got %d", mem.Len(app.DefaultPath))
	}
	if m.ctrl.Len() != 2 {
		t.Fatalf("cache must wait for the subscription echo")
	}

	m, _ = update(t, m, runCmd(t, wait))
	if m.ctrl.Len() != 1 {
		t.Fatalf("expected one row after echo, got %d", m.ctrl.Len())
	}
	if row, _ := m.ctrl.Row(0); row != "second" {
		t.Fatalf("expected second to remain, got %q", row)
	}
}

func TestSelectionClampsWhenRowsShrink(t *testing.T) {
	m, mem, _ := newTestModel(t, map[string]string{"a": "first", "b": "second"})
	wait := m.waitForWatch()

	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	_ = mem.Remove(context.Background(), store.Child(app.DefaultPath, "b"))
	m, _ = update(t, m, runCmd(t, wait))

	if m.Selected() != 0 {
		t.Fatalf("expected selection clamped to 0, got %d", m.Selected())
	}
}

func TestMalformedSnapshotKeepsRows(t *testing.T) {
	m, _, _ := newTestModel(t, map[string]string{"a": "first"})

	m, cmd := update(t, m, snapshotMsg{ch: m.watchCh, snap: store.Snapshot{Path: app.DefaultPath, Value: "oops"}})
	if cmd == nil {
		t.Fatalf("expected to keep waiting on the subscription")
	}
	if m.ctrl.Len() != 1 {
		t.Fatalf("expected cache untouched, got %d rows", m.ctrl.Len())
	}
}

func TestStoppedSubscriptionResubscribes(t *testing.T) {
	m, _, cancel := newTestModel(t, nil)

	if _, cmd := update(t, m, watchStoppedMsg{ch: make(chan store.Snapshot)}); cmd != nil {
		t.Fatalf("expected stale stop to be ignored")
	}

	m, cmd := update(t, m, watchStoppedMsg{ch: m.watchCh})
	started, ok := runCmd(t, cmd).(watchStartedMsg)
	if !ok || started.err != nil {
		t.Fatalf("expected a fresh subscription, got %#v", started)
	}
	m, _ = update(t, m, started)
	if m.watchCh == nil {
		t.Fatalf("expected the new subscription to be tracked")
	}

	cancel()
	if _, cmd := update(t, m, watchStoppedMsg{ch: m.watchCh}); cmd != nil {
		t.Fatalf("expected no resubscribe after teardown")
	}
}

func TestQuitClosesSubscription(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	ch := m.watchCh

	_, cmd := update(t, m, key("q"))
	if _, ok := runCmd(t, cmd).(tea.QuitMsg); !ok {
		t.Fatalf("expected quit")
	}
	select {
	case _, ok := <-ch:
		if ok {
			// a pending snapshot may still be queued
			if _, ok = <-ch; ok {
				t.Fatalf("expected subscription channel closed")
			}
		}
	case <-time.After(time.Second):
		t.Fatalf("subscription not closed after quit")
	}
}
