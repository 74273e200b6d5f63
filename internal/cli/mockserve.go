package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watchpost/consolectl/internal/mock"
)

var (
	mockPort     string
	mockCert     string
	mockKey      string
	mockUser     string
	mockPassword string
)

var mockServeCmd = &cobra.Command{
	Use:   "mock-serve",
	Short: "Start a mock console node for local development",
	Long: `Starts an HTTPS server implementing the /v1/console endpoints with a
toy evaluator, so the client and console can be exercised without a real
monitoring node. Without --cert/--key an ephemeral self-signed certificate
is generated; connect with --insecure in that case.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMockServer()
	},
}

func init() {
	mockServeCmd.Flags().StringVar(&mockPort, "listen", "5665", "Port to listen on")
	mockServeCmd.Flags().StringVar(&mockCert, "cert", "", "TLS certificate file")
	mockServeCmd.Flags().StringVar(&mockKey, "key", "", "TLS key file")
	mockServeCmd.Flags().StringVar(&mockUser, "mock-user", "root", "Accepted username")
	mockServeCmd.Flags().StringVar(&mockPassword, "mock-password", "secret", "Accepted password")
	RootCmd.AddCommand(mockServeCmd)
}

func runMockServer() {
	log.Info().Str("port", mockPort).Msg("Starting mock console node")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := mock.NewServer(mockUser, mockPassword)
	s.RegisterRoutes(e)

	var certArg, keyArg interface{}
	if mockCert != "" && mockKey != "" {
		certArg, keyArg = mockCert, mockKey
	} else {
		certPEM, keyPEM, err := mock.SelfSignedCert()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate self-signed certificate")
		}
		log.Info().Msg("Using ephemeral self-signed certificate")
		certArg, keyArg = certPEM, keyPEM
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", mockPort).Msg("Server listening")
		serverErr <- e.StartTLS(":"+mockPort, certArg, keyArg)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("Server startup failed")
	}
}
