package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/notes/pkg/note"
)

type PrettyPrint struct {
	ShowID bool
	Out    io.Writer
}

const indent = "  "

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " note")
	default:
		_, _ = c.Fprintln(pp.out(), " notes")
	}
}

// Notes prints one block per note. With ShowID the notes are laid out as
// an id/text table.
func (pp *PrettyPrint) Notes(notes ...note.Note) {
	if len(notes) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	if pp.ShowID {
		pp.table(notes)
		return
	}

	t := color.New()
	b := color.New(color.Faint)
	for _, n := range notes {
		lines := strings.Split(n.Text, "\n")
		_, _ = b.Fprint(pp.out(), "• ")
		_, _ = t.Fprintln(pp.out(), lines[0])
		for _, line := range lines[1:] {
			_, _ = t.Fprintln(pp.out(), indent+line)
		}
	}
	_, _ = t.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) table(notes []note.Note) {
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	table.AddRow("ID", "NOTE")
	for _, n := range notes {
		table.AddRow(y.Sprint(n.ID), n.Text)
	}
	_, _ = fmt.Fprintln(pp.out(), table)
	_, _ = fmt.Fprintln(pp.out(), "")
}
