package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Footer FooterTheme
	Editor EditorTheme
}

// HeaderTheme styles the screen titles.
type HeaderTheme struct {
	Title lipgloss.Style
	Count lipgloss.Style
}

// FooterTheme groups styles used by the bottom status/help bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Empty  lipgloss.Style
}

// EditorTheme styles the note editor frame.
type EditorTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	return Theme{
		Header: HeaderTheme{
			Title: title.Padding(0, 1),
			Count: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Empty:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(1, 2),
		},
		Editor: EditorTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title: title,
		},
	}
}
