package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

func addAdd(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "add a note",
		Example: `
notes add buy milk
notes add
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				var err error
				if text, err = promptText("Note", ""); err != nil {
					return oo.HandleError(err)
				}
			}
			return oo.HandleError(save(cmd, ro, text, ""))
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

// save applies the editor save rule and reports the outcome.
func save(cmd *cobra.Command, ro *rootOptions, text, id string) error {
	s, err := ro.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	written, err := s.list().Put(cmd.Context(), text, id)
	if err != nil {
		return err
	}

	faint := color.New(color.Faint)
	switch {
	case written == "" && id != "":
		_, _ = faint.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	case written == "":
		_, _ = faint.Fprintln(cmd.OutOrStdout(), "nothing to save")
	default:
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), written)
	}
	return nil
}

func promptText(label, current string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   current,
		AllowEdit: true,
	}
	text, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", errors.New("cancelled")
	}
	return text, err
}
