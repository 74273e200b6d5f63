package cli

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watchpost/consolectl/internal/api"
)

var (
	// Global flags
	verbose bool
	jsonLog bool

	host      string
	port      string
	user      string
	password  string
	insecure  bool
	caCert    string
	sandboxed bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "consolectl",
	Short: "Remote console for a monitoring node",
	Long: `Consolectl talks to the scripting console of a monitoring node over
its HTTPS API.

It can evaluate script fragments in a server-side session, request
autocompletion for partial fragments, and run a fully interactive console
with continuation prompts for incomplete expressions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

		if !jsonLog {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}

		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")
	RootCmd.PersistentFlags().StringVarP(&host, "host", "H", envOr("CONSOLECTL_HOST", "localhost"), "Node hostname")
	RootCmd.PersistentFlags().StringVarP(&port, "port", "p", envOr("CONSOLECTL_PORT", "5665"), "Node API port")
	RootCmd.PersistentFlags().StringVarP(&user, "user", "u", envOr("CONSOLECTL_USER", "root"), "API username")
	RootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("CONSOLECTL_PASSWORD"), "API password")
	RootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "Skip server certificate verification")
	RootCmd.PersistentFlags().StringVar(&caCert, "cacert", os.Getenv("CONSOLECTL_CACERT"), "CA certificate for verifying the node")
	RootCmd.PersistentFlags().BoolVar(&sandboxed, "sandboxed", false, "Evaluate without side effects")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newAPIClient builds the client from the global connection flags.
func newAPIClient() (*api.ApiClient, error) {
	tlsConfig, err := buildTLSConfig()
	if err != nil {
		return nil, err
	}
	return api.NewApiClientTLS(host, port, user, password, tlsConfig), nil
}

func buildTLSConfig() (*tls.Config, error) {
	if !insecure && caCert == "" {
		return nil, nil
	}

	cfg := &tls.Config{InsecureSkipVerify: insecure}
	if caCert != "" {
		pemBytes, err := os.ReadFile(caCert)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pemBytes) {
			return nil, fmt.Errorf("no certificates found in %s", caCert)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}
