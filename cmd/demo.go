package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/config"
	"tableflip.dev/notes/pkg/store"
)

var demoNotes = []string{
	"Buy milk",
	"Call mom\nask about the weekend",
	"Read the pgx LISTEN docs",
	"Hello",
}

// Seeds the configured store with a handful of notes and prints the result.
func main() {
	ctx := context.Background()

	c, err := config.Load(config.New())
	if err != nil {
		panic(err)
	}
	opts := c.StoreOptions()
	opts.Logger = zerolog.Nop()
	remote, err := store.Open(ctx, opts)
	if err != nil {
		panic(err)
	}
	defer remote.Close()

	l := app.NewList(remote, c.Path)
	for _, text := range demoNotes {
		if _, err := l.Put(ctx, text, ""); err != nil {
			panic(err)
		}
	}

	snap, err := store.Get(ctx, remote, c.Path)
	if err != nil {
		panic(err)
	}
	l.Apply(snap)
	for _, n := range l.Notes() {
		fmt.Printf("%s  %q\n", n.ID, n.Text)
	}
}
