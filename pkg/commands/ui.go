package commands

import (
	"github.com/spf13/cobra"

	teaui "tableflip.dev/notes/pkg/tui/app"
)

func addUI(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
notes ui
notes ui --backend remote
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()
			return teaui.Run(cmd.Context(), s.list(), s.log)
		},
	}

	topLevel.AddCommand(cmd)
}
