package listscreen

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/store"
)

type watchStartedMsg struct {
	ch     <-chan store.Snapshot
	cancel context.CancelFunc
	err    error
}

type snapshotMsg struct {
	ch   <-chan store.Snapshot
	snap store.Snapshot
}

type watchStoppedMsg struct {
	ch <-chan store.Snapshot
}

func startWatchCmd(parent context.Context, ctrl *app.List) tea.Cmd {
	if ctrl == nil || ctrl.Remote == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := ctrl.Subscribe(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if snap, ok := <-ch; ok {
			return snapshotMsg{ch: ch, snap: snap}
		}
		return watchStoppedMsg{ch: ch}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}
