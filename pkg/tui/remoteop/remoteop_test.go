package remoteop

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunNilOp(t *testing.T) {
	if cmd := Run(context.Background(), nil, zerolog.Nop(), "noop"); cmd != nil {
		t.Fatalf("expected nil command for nil op")
	}
}

func TestRunLogsAndDropsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	cmd := Run(context.Background(), func(context.Context) error {
		return errors.New("boom")
	}, log, "delete")
	if msg := cmd(); msg != nil {
		t.Fatalf("expected no message, got %#v", msg)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "boom") || !strings.Contains(out, `"action":"delete"`) {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestRunSuccessIsSilent(t *testing.T) {
	var buf bytes.Buffer
	ran := false
	cmd := Run(context.Background(), func(ctx context.Context) error {
		ran = true
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("expected deadline on op context")
		}
		return nil
	}, zerolog.New(&buf), "save")
	cmd()
	if !ran || buf.Len() != 0 {
		t.Fatalf("ran=%v log=%q", ran, buf.String())
	}
}
