package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watchpost/consolectl/internal/api"
	"github.com/watchpost/consolectl/internal/console"
)

var completeSession string

var completeCmd = &cobra.Command{
	Use:   "complete [fragment]",
	Short: "Request autocompletion suggestions for a partial fragment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid TLS configuration")
		}

		session := completeSession
		if session == "" {
			session = console.NewSessionID()
		}

		suggestions, err := client.AutocompleteScript(cmd.Context(), session, args[0], sandboxed)

		var scriptErr *api.ScriptError
		if errors.As(err, &scriptErr) {
			fmt.Fprintln(os.Stderr, scriptErr.Message)
			os.Exit(1)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Autocompletion failed")
		}

		for _, s := range suggestions {
			fmt.Println(s)
		}
	},
}

func init() {
	completeCmd.Flags().StringVarP(&completeSession, "session", "s", "", "Session id (default: random per invocation)")
	RootCmd.AddCommand(completeCmd)
}
