package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/printers"
	"tableflip.dev/notes/pkg/store"
)

func addList(topLevel *cobra.Command, ro *rootOptions) {
	io := &options.IDOptions{}
	fo := &options.FormatOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list notes",
		Example: `
notes list
notes list --show-id
notes list -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return oo.HandleError(runList(cmd, ro, io, fo))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddFormatArgs(cmd, fo)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func runList(cmd *cobra.Command, ro *rootOptions, io *options.IDOptions, fo *options.FormatOptions) error {
	s, err := ro.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	l := s.list()
	snap, err := store.Get(cmd.Context(), s.remote, l.Path)
	if err != nil {
		return err
	}
	if !l.Apply(snap) {
		return fmt.Errorf("mapping at %q is not a set of notes", l.Path)
	}

	if format := fo.Format(oo.JSON); format != "" {
		return printers.Structured(cmd.OutOrStdout(), format, l.Path, l.Notes())
	}

	pp := &printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()}
	pp.TitleWithCount(l.Path, l.Len())
	pp.Notes(l.Notes()...)
	return nil
}
