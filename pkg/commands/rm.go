package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/notes/pkg/store"
)

func addRemove(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:     "rm [id...]",
		Aliases: []string{"delete"},
		Short:   "remove notes",
		Example: `
notes rm 0199a3c2-7f10-7c1e-9d4e-5b0f9a1c2d3e
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
			s, err := ro.open(cmd.Context(), true)
			if err != nil {
				return oo.HandleError(err)
			}
			defer s.Close()

			faint := color.New(color.Faint)
			for _, id := range args {
				if err := s.remote.Remove(cmd.Context(), store.Child(s.cfg.Path, id)); err != nil {
					return oo.HandleError(err)
				}
				_, _ = faint.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			return nil
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
