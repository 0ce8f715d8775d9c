// Package listscreen renders the live list of notes.
package listscreen

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/store"
	"tableflip.dev/notes/pkg/tui/remoteop"
	"tableflip.dev/notes/pkg/tui/theme"
)

const helpText = "enter edit • a add • d delete • q quit"

// OpenEditMsg asks the root model to push an editor.
type OpenEditMsg struct {
	Edit *app.Edit
}

// Model shows the subscribed notes mapping and turns key presses into row
// actions on the app.List controller.
type Model struct {
	ctx   context.Context
	ctrl  *app.List
	log   zerolog.Logger
	theme theme.Theme

	list   list.Model
	status string

	watchCh     <-chan store.Snapshot
	watchCancel context.CancelFunc
}

// New constructs the list screen. The subscription starts in Init and ends
// when ctx is cancelled or Close is called.
func New(ctx context.Context, ctrl *app.List, log zerolog.Logger) *Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return &Model{
		ctx:   ctx,
		ctrl:  ctrl,
		log:   log,
		theme: theme.Default(),
		list:  l,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return startWatchCmd(m.ctx, m.ctrl)
}

// Appear runs when the screen becomes the top of the stack again.
func (m *Model) Appear() {
	m.ctrl.OnAppear()
}

// Close ends the subscription.
func (m *Model) Close() {
	m.stopWatch()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	// header and footer take a line each
	m.list.SetSize(width, max(height-2, 0))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchStartedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("path", m.ctrl.Path).Msg("subscribe failed")
			m.status = "ERR: subscribe " + msg.err.Error()
			return m, nil
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		m.status = ""
		return m, m.waitForWatch()
	case snapshotMsg:
		if msg.ch != m.watchCh {
			return m, nil
		}
		if m.ctrl.Apply(msg.snap) {
			m.refreshItems()
		} else {
			m.log.Debug().Str("path", msg.snap.Path).Msg("ignored malformed snapshot")
		}
		return m, m.waitForWatch()
	case watchStoppedMsg:
		if msg.ch != m.watchCh {
			return m, nil
		}
		m.stopWatch()
		if m.ctx.Err() != nil {
			return m, nil
		}
		m.log.Debug().Str("path", m.ctrl.Path).Msg("subscription ended, resubscribing")
		return m, startWatchCmd(m.ctx, m.ctrl)
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Close()
			return m, tea.Quit
		case "enter":
			ed, err := m.ctrl.SelectRow(m.list.Index())
			if err != nil {
				return m, nil
			}
			return m, openEdit(ed)
		case "a", "n":
			return m, openEdit(m.ctrl.Add())
		case "d", "x", "delete":
			op, err := m.ctrl.DeleteRow(m.list.Index())
			if err != nil {
				return m, nil
			}
			return m, remoteop.Run(m.ctx, op, m.log, "delete")
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the header, rows and help line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Title.Render("Notes"))
	b.WriteString(m.theme.Header.Count.Render(fmt.Sprintf("(%d)", m.ctrl.Len())))
	b.WriteString("\n")
	if m.ctrl.Len() == 0 {
		b.WriteString(m.theme.Footer.Empty.Render("No notes yet. Press a to add one."))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.theme.Footer.Status.Render(m.status))
	} else {
		b.WriteString(m.theme.Footer.Help.Render(helpText))
	}
	return b.String()
}

// Selected returns the highlighted row index.
func (m *Model) Selected() int {
	return m.list.Index()
}

func (m *Model) refreshItems() {
	notes := m.ctrl.Notes()
	items := make([]list.Item, 0, len(notes))
	for _, n := range notes {
		items = append(items, noteItem{text: n.Text})
	}
	m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

func openEdit(ed *app.Edit) tea.Cmd {
	return func() tea.Msg {
		return OpenEditMsg{Edit: ed}
	}
}

type noteItem struct {
	text string
}

func (n noteItem) Title() string {
	first, _, _ := strings.Cut(n.text, "\n")
	return first
}
func (noteItem) Description() string   { return "" }
func (n noteItem) FilterValue() string { return n.text }
