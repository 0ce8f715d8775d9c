package commands

import (
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/config"
	"tableflip.dev/notes/pkg/server"
	"tableflip.dev/notes/pkg/store"
)

func addServe(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the store to remote clients",
		Long: `Expose the configured store over HTTP and websocket so other notes
clients can use it with --backend remote.`,
		Example: `
notes serve --addr 0.0.0.0:7070 --token secret
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.cfg.Backend == store.BackendRemote {
				s.log.Warn().Msg("serving a remote backend proxies every request to the upstream hub")
			}

			srv := &server.Server{
				Store: s.remote,
				Token: s.cfg.Server.Token,
				Log:   s.log,
				OnListening: func(addr net.Addr) {
					s.log.Info().Str("addr", addr.String()).Str("path", s.cfg.Path).Msg("notes hub listening")
				},
			}
			return srv.ListenAndServe(cmd.Context(), s.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "127.0.0.1:7070", "Address to listen on.")
	cmd.Flags().String("token", "", "Bearer token clients must present.")
	_ = ro.v.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	_ = ro.v.BindPFlag(config.KeyServerToken, cmd.Flags().Lookup("token"))

	topLevel.AddCommand(cmd)
}
