package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/tui/editscreen"
	"tableflip.dev/notes/pkg/tui/listscreen"
)

// Model is the root of the notes UI. The list screen is always mounted;
// an editor, when open, sits on top of it and receives key input.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	list *listscreen.Model
	edit *editscreen.Model

	width  int
	height int
}

// New constructs the root model over ctrl. Cancelling ctx tears down the
// list subscription.
func New(ctx context.Context, ctrl *app.List, log zerolog.Logger) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:    ctx,
		cancel: cancel,
		log:    log,
		list:   listscreen.New(ctx, ctrl, log),
	}
}

// Run launches the interactive TUI program.
func Run(ctx context.Context, ctrl *app.List, log zerolog.Logger) error {
	m := New(ctx, ctrl, log)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Close tears down every screen.
func (m *Model) Close() {
	m.list.Close()
	m.cancel()
}

// Editing reports whether an editor is on top.
func (m *Model) Editing() bool {
	return m.edit != nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.list.Init()
}

// Update routes key input to the top screen and everything else to all
// mounted screens.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listscreen.OpenEditMsg:
		if m.edit != nil {
			return m, nil
		}
		m.edit = editscreen.New(m.ctx, msg.Edit, m.log)
		if m.width > 0 {
			m.edit.SetSize(m.width, m.height)
		}
		return m, m.edit.Init()
	case editscreen.DoneMsg:
		m.edit = nil
		m.list.Appear()
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height)
		if m.edit != nil {
			m.edit.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyPressMsg:
		if m.edit != nil {
			_, cmd := m.edit.Update(msg)
			return m, cmd
		}
		_, cmd := m.list.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	_, cmd := m.list.Update(msg)
	cmds = append(cmds, cmd)
	if m.edit != nil {
		_, cmd = m.edit.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the top screen.
func (m *Model) View() string {
	if m.edit != nil {
		return m.edit.View()
	}
	return m.list.View()
}
