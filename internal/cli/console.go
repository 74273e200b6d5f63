package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watchpost/consolectl/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive console session",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid TLS configuration")
		}

		fmt.Printf("Connected to %s:%s. Type 'exit' or press CTRL+D to leave.\n", host, port)

		c := console.New(client, sandboxed)
		if err := c.Run(cmd.Context()); err != nil {
			log.Fatal().Err(err).Msg("Console terminated")
		}
	},
}

func init() {
	RootCmd.AddCommand(consoleCmd)
}
