package commands

import (
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/notes/pkg/store"
)

func addEdit(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "edit [id] [text...]",
		Short: "replace the text of a note",
		Long: base.Wrap80(`Replace the text of the note with the given id. Without an id a note is
picked from the list. Without text the current text is offered for editing.
Saving blank text removes the note.`),
		Example: `
notes edit 0199a3c2-7f10-7c1e-9d4e-5b0f9a1c2d3e buy oat milk
notes edit 0199a3c2-7f10-7c1e-9d4e-5b0f9a1c2d3e
`,
		ValidArgsFunction: noteIDCompletions(ro),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				id, err := pickNote(cmd, ro)
				if err != nil {
					return oo.HandleError(err)
				}
				args = []string{id}
			}
			id := args[0]
			text := strings.Join(args[1:], " ")
			if len(args) == 1 {
				current, err := currentText(cmd, ro, id)
				if err != nil {
					return oo.HandleError(err)
				}
				if text, err = promptText("Note", current); err != nil {
					return oo.HandleError(err)
				}
			}
			return oo.HandleError(save(cmd, ro, text, id))
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func currentText(cmd *cobra.Command, ro *rootOptions, id string) (string, error) {
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
	for _, n := range l.Notes() {
		if n.ID == id {
			return n.Text, nil
		}
	}
	return "", nil
}
