package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := OpenDisk(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("open disk: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// waitForMapping drains snapshots until one satisfies ok.
func waitForMapping(t *testing.T, ch <-chan Snapshot, ok func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap, open := <-ch:
			if !open {
				t.Fatalf("subscription closed")
			}
			m, isMap := snap.Value.(map[string]any)
			if isMap && ok(m) {
				return m
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestDiskSubscribeFollowsWritesAndRemoves(t *testing.T) {
	d := openTestDisk(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := d.Subscribe(ctx, "items")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitForMapping(t, ch, func(m map[string]any) bool { return len(m) == 0 })

	id := d.GenerateID("items")
	if err := d.Write(ctx, Child("items", id), "Hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := waitForMapping(t, ch, func(m map[string]any) bool { return len(m) == 1 })
	if got[id] != "Hello" {
		t.Fatalf("expected Hello at %s, got %#v", id, got)
	}

	if err := d.Remove(ctx, Child("items", id)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	waitForMapping(t, ch, func(m map[string]any) bool { return len(m) == 0 })

	// The bucket directory was pruned with its last child; new writes must
	// still be observed.
	if err := d.Write(ctx, "items/again", "Back"); err != nil {
		t.Fatalf("write after prune: %v", err)
	}
	got = waitForMapping(t, ch, func(m map[string]any) bool { return len(m) == 1 })
	if got["again"] != "Back" {
		t.Fatalf("unexpected mapping after prune: %#v", got)
	}
}

func TestDiskSeesOtherProcessWrites(t *testing.T) {
	base := t.TempDir()
	reader, err := OpenDisk(base, zerolog.Nop())
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer reader.Close()
	writer, err := OpenDisk(base, zerolog.Nop())
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := reader.Subscribe(ctx, "items")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitForMapping(t, ch, func(m map[string]any) bool { return len(m) == 0 })

	if err := writer.Write(ctx, "items/n1", "from elsewhere"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := waitForMapping(t, ch, func(m map[string]any) bool { return len(m) == 1 })
	if got["n1"] != "from elsewhere" {
		t.Fatalf("unexpected mapping: %#v", got)
	}
}

func TestDiskKeepsUndecodableChildrenRaw(t *testing.T) {
	d := openTestDisk(t)
	ctx := context.Background()
	if err := d.Write(ctx, "items/good", "ok"); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad := filepath.Join(d.bucketDir("items"), "bad")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write raw: %v", err)
	}

	snap, err := Get(ctx, d, "items")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	m := snap.Value.(map[string]any)
	if _, ok := m["bad"].([]byte); !ok {
		t.Fatalf("expected raw bytes for undecodable child, got %#v", m["bad"])
	}
	if m["good"] != "ok" {
		t.Fatalf("expected decoded sibling, got %#v", m["good"])
	}
}

func TestDiskRemoveMissingIsNotAnError(t *testing.T) {
	d := openTestDisk(t)
	if err := d.Remove(context.Background(), "items/nope"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestDiskCloseEndsSubscriptions(t *testing.T) {
	d, err := OpenDisk(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ch, err := d.Subscribe(context.Background(), "items")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription still open after close")
		}
	}
}
