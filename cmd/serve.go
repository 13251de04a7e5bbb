package cmd

import (
	"errors"
	"net/http"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"playout/server"
)

func Serve(flags *rootFlags) *cobra.Command {
	var (
		addr  string
		table string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front end",
		Long: heredoc.Doc(`
			Serve the HTTP front end: POST /move plays one engine move
			against the submitted board, GET /stats reports training
			counters and GET /live streams them over a websocket.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(flags)

			if table != "" {
				file, err := os.Open(table)
				if err != nil {
					return err
				}
				err = e.Table().Load(file)
				file.Close()
				if err != nil {
					return err
				}
				log.Info().Str("path", table).Int("states", e.Table().Len()).
					Msg("restored statistics table")
			}

			srv := &http.Server{Addr: addr, Handler: server.New(e).Handler()}
			go func() {
				<-cmd.Context().Done()
				srv.Close()
			}()

			log.Info().Str("addr", addr).Msg("serving")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&table, "table", "", "statistics table snapshot to restore")

	return cmd
}
