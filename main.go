package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"playout/cmd"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("playout exited")
	}
}
