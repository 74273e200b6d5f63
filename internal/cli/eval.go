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

var evalSession string

var evalCmd = &cobra.Command{
	Use:   "eval [script]",
	Short: "Evaluate a script fragment on the node",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid TLS configuration")
		}

		session := evalSession
		if session == "" {
			session = console.NewSessionID()
		}

		result, err := client.ExecuteScript(cmd.Context(), session, args[0], sandboxed)

		var scriptErr *api.ScriptError
		if errors.As(err, &scriptErr) {
			if scriptErr.Debug.IsZero() {
				fmt.Fprintln(os.Stderr, scriptErr.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s\n  at %s\n", scriptErr.Message, scriptErr.Debug)
			}
			os.Exit(1)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Execution failed")
		}

		if len(result) == 0 {
			// Soft failure or null result; details are in the log output.
			fmt.Println("<no answer>")
			return
		}
		fmt.Println(string(result))
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalSession, "session", "s", "", "Session id (default: random per invocation)")
	RootCmd.AddCommand(evalCmd)
}
