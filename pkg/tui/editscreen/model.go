// Package editscreen renders the single-note editor.
package editscreen

import (
	"context"

	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/tui/remoteop"
	"tableflip.dev/notes/pkg/tui/theme"
)

const helpText = "ctrl+s/esc done"

// DoneMsg asks the root model to pop the editor.
type DoneMsg struct{}

// Model wraps a textarea bound to an app.Edit.
type Model struct {
	ctx   context.Context
	edit  *app.Edit
	log   zerolog.Logger
	theme theme.Theme

	input textarea.Model
	width int
}

// New constructs an editor pre-filled from edit.
func New(ctx context.Context, edit *app.Edit, log zerolog.Logger) *Model {
	ta := textarea.New()
	ta.Placeholder = "Write a note"
	ta.ShowLineNumbers = false
	ta.SetValue(edit.Text())

	return &Model{
		ctx:   ctx,
		edit:  edit,
		log:   log,
		theme: theme.Default(),
		input: ta,
	}
}

// Init focuses the text input.
func (m *Model) Init() tea.Cmd {
	return m.input.Focus()
}

// SetSize fits the textarea inside the frame.
func (m *Model) SetSize(width, height int) {
	m.width = width
	// frame border and padding, title and help lines
	m.input.SetWidth(max(width-4, 1))
	m.input.SetHeight(max(height-5, 1))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+s", "esc":
			return m, tea.Batch(m.done(), pop)
		case "ctrl+c":
			return m, tea.Sequence(m.done(), tea.Quit)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the title, editor and help line.
func (m *Model) View() string {
	title := m.theme.Editor.Title.Render(clip(m.edit.Title(), m.width-4))
	body := m.theme.Editor.Frame.Render(title + "\n" + m.input.View())
	return body + "\n" + m.theme.Footer.Help.Render(helpText)
}

// Value returns the current editor text.
func (m *Model) Value() string {
	return m.input.Value()
}

func (m *Model) done() tea.Cmd {
	m.edit.SetText(m.input.Value())
	return remoteop.Run(m.ctx, m.edit.Done(), m.log, "save")
}

func pop() tea.Msg {
	return DoneMsg{}
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
