package commands

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(notes completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(notes completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// noteIDCompletions completes note ids with their titles as descriptions.
func noteIDCompletions(ro *rootOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 && cmd.Name() != "rm" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		c, err := ro.load()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		opts := c.StoreOptions()
		opts.Logger = zerolog.Nop()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		remote, err := store.Open(ctx, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer remote.Close()

		l := app.NewList(remote, c.Path)
		snap, err := store.Get(ctx, remote, l.Path)
		if err != nil || !l.Apply(snap) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var out []string
		for _, n := range l.Notes() {
			if strings.HasPrefix(n.ID, toComplete) {
				out = append(out, n.ID+"\t"+note.Title(n.Text))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
