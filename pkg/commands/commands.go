package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/config"
	"tableflip.dev/notes/pkg/logging"
	"tableflip.dev/notes/pkg/store"
)

var (
	oo = &base.OutputOptions{}
)

// rootOptions carries the global flags and the config they feed.
type rootOptions struct {
	v          *viper.Viper
	configFile string
	debug      bool
}

func New() *cobra.Command {
	ro := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:   "notes",
		Short: base.Wrap80("Plain-text notes kept live against a local or remote store."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("backend", store.BackendDisk, "Store backend. One of disk, memory, postgres or remote.")
	flags.String("path", app.DefaultPath, "Mapping path that holds the notes.")
	flags.StringVar(&ro.configFile, "config", "", "Config file to use instead of searching for .notes.yaml.")
	flags.BoolVar(&ro.debug, "debug", false, "Log at debug level.")
	_ = ro.v.BindPFlag(config.KeyBackend, flags.Lookup("backend"))
	_ = ro.v.BindPFlag(config.KeyPath, flags.Lookup("path"))

	AddCommands(cmd, ro)
	return cmd
}

func AddCommands(topLevel *cobra.Command, ro *rootOptions) {
	addUI(topLevel, ro)
	addList(topLevel, ro)
	addAdd(topLevel, ro)
	addEdit(topLevel, ro)
	addRemove(topLevel, ro)
	addServe(topLevel, ro)
	addMCP(topLevel, ro)
	addVersion(topLevel)
	addCompletions(topLevel)
}

func (ro *rootOptions) load() (*config.Config, error) {
	if ro.configFile != "" {
		ro.v.SetConfigFile(ro.configFile)
	}
	c, err := config.Load(ro.v)
	if err != nil {
		return nil, err
	}
	if ro.debug {
		c.Log.Level = "debug"
	}
	return c, nil
}

// session is a loaded config with an open store. Close releases both the
// store and the log file.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	remote store.Remote

	closeLog func() error
}

func (ro *rootOptions) open(ctx context.Context, console bool) (*session, error) {
	c, err := ro.load()
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.New(c.Logging(console))
	if err != nil {
		return nil, err
	}

	opts := c.StoreOptions()
	opts.Logger = log
	remote, err := store.Open(ctx, opts)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open %s store: %w", c.Backend, err)
	}
	log.Debug().Str("backend", c.Backend).Str("path", c.Path).Msg("store opened")

	return &session{cfg: c, log: log, remote: remote, closeLog: closeLog}, nil
}

func (s *session) list() *app.List {
	return app.NewList(s.remote, s.cfg.Path)
}

func (s *session) Close() {
	if err := s.remote.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close store")
	}
	_ = s.closeLog()
}
