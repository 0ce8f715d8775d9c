package commands

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

// pickNote lets the user choose a note when no id was given.
func pickNote(cmd *cobra.Command, ro *rootOptions) (string, error) {
	s, err := ro.open(cmd.Context(), true)
	if err != nil {
		return "", err
	}
	defer s.Close()

	l := s.list()
	snap, err := store.Get(cmd.Context(), s.remote, l.Path)
	if err != nil {
		return "", err
	}
	l.Apply(snap)
	notes := l.Notes()
	if len(notes) == 0 {
		return "", errors.New("no notes to choose from")
	}

	items := make([]pickItem, 0, len(notes))
	for _, n := range notes {
		items = append(items, pickItem{ID: n.ID, Title: note.Title(n.Text), Text: n.Text})
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Title | bold }}",
		Inactive: "   {{ .Title }}",
		Selected: "{{ .Title | bold }}",
		Details: `
--------- Note ----------
{{ .Text }}
{{ .ID | faint }}
`,
	}

	searcher := func(input string, index int) bool {
		text := strings.ReplaceAll(strings.ToLower(items[index].Text), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(text, input)
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Note",
		Items:     items,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return items[i].ID, nil
}

type pickItem struct {
	ID    string
	Title string
	Text  string
}
