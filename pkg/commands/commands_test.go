package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/notes/pkg/store"
)

func init() {
	color.NoColor = true
}

// withWorkspace runs commands against a disk store in a scratch directory.
func withWorkspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	t.Setenv("HOME", dir)
	t.Setenv("NOTES_CONFIG_PATH", dir)
	t.Setenv("NOTES_DISK_DIR", filepath.Join(dir, "db"))
	t.Setenv("NOTES_LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("notes %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

type listing struct {
	Count int `json:"count"`
	Notes []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"notes"`
}

func listJSON(t *testing.T) listing {
	t.Helper()
	var l listing
	out := mustExecute(t, "list", "--json")
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	return l
}

func TestAddEditRemove(t *testing.T) {
	withWorkspace(t)

	id := strings.TrimSpace(mustExecute(t, "add", "buy", "milk"))
	if id == "" {
		t.Fatalf("expected add to print the new id")
	}

	l := listJSON(t)
	if l.Count != 1 || l.Notes[0].ID != id || l.Notes[0].Text != "buy milk" {
		t.Fatalf("unexpected listing %+v", l)
	}

	mustExecute(t, "edit", id, "buy", "oat", "milk")
	if l = listJSON(t); l.Notes[0].Text != "buy oat milk" {
		t.Fatalf("expected edited text, got %+v", l)
	}

	pretty := mustExecute(t, "list", "--show-id")
	if !strings.Contains(pretty, id) || !strings.Contains(pretty, "buy oat milk") {
		t.Fatalf("expected id table:\n%s", pretty)
	}

	if out := mustExecute(t, "rm", id); !strings.Contains(out, "removed "+id) {
		t.Fatalf("unexpected rm output %q", out)
	}
	if l = listJSON(t); l.Count != 0 {
		t.Fatalf("expected empty listing, got %+v", l)
	}
}

func TestEditBlankRemoves(t *testing.T) {
	withWorkspace(t)

	id := strings.TrimSpace(mustExecute(t, "add", "temporary"))
	if out := mustExecute(t, "edit", id, "   "); !strings.Contains(out, "removed") {
		t.Fatalf("expected blank edit to remove, got %q", out)
	}
	if l := listJSON(t); l.Count != 0 {
		t.Fatalf("expected empty listing, got %+v", l)
	}
}

func TestListYAML(t *testing.T) {
	withWorkspace(t)
	mustExecute(t, "add", "first")

	out := mustExecute(t, "list", "-o", "yaml")
	if !strings.Contains(out, "path: items") || !strings.Contains(out, "text: first") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestPathFlag(t *testing.T) {
	withWorkspace(t)
	mustExecute(t, "--path", "work", "add", "standup")

	if l := listJSON(t); l.Count != 0 {
		t.Fatalf("expected default path untouched, got %+v", l)
	}
	out := mustExecute(t, "--path", "work", "list")
	if !strings.Contains(out, "standup") {
		t.Fatalf("expected note under work:\n%s", out)
	}
}

func TestUnknownBackend(t *testing.T) {
	withWorkspace(t)
	_, err := execute(t, "--backend", "carrier-pigeon", "list")
	if !errors.Is(err, store.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
