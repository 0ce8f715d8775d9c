// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/printers"
)

// FormatOptions selects a structured output format.
type FormatOptions struct {
	Output string
}

func AddFormatArgs(cmd *cobra.Command, o *FormatOptions) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", "",
		`Structured output format. One of "json" or "yaml".`)
}

// Format returns the structured format to use, or "" for pretty output.
// The --json flag selects json when no format is given.
func (o *FormatOptions) Format(json bool) string {
	if o.Output != "" {
		return o.Output
	}
	if json {
		return printers.FormatJSON
	}
	return ""
}
