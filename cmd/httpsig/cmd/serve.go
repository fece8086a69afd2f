package cmd

import (
	"crypto"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/offblocks/httpsig-draft/internal/keyfile"
	"github.com/offblocks/httpsig-draft/internal/log"
	"github.com/offblocks/httpsig-draft/internal/server"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo receiving service",
	Long: `Run an HTTP service that verifies signed requests and webhook deliveries.

Routes:
  POST /webhooks/v1   shared secret webhooks (webhook.shared_secret)
  POST /webhooks/v2   RSA signed webhooks (webhook.public_key_path)
  any other path      signed API requests (signing.public_key_path), answered with
                      the verification diagnostics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides server.address)")
	rootCmd.AddCommand(serveCmd)
}

func serverKeys() (server.Keys, error) {
	var keys server.Keys

	if p := cfg.Signing.PublicKeyPath; p != "" {
		pub, err := keyfile.LoadPublicKey(p)
		if err != nil {
			return keys, err
		}
		if cfg.Signing.KeyID != "" {
			keys.APIKeys = map[string]crypto.PublicKey{cfg.Signing.KeyID: pub}
		} else {
			keys.DefaultAPIKey = pub
		}
	}
	if cfg.Webhook.SharedSecret != "" {
		keys.SharedSecret = []byte(cfg.Webhook.SharedSecret)
	}
	if p := cfg.Webhook.PublicKeyPath; p != "" {
		pub, err := keyfile.LoadRSAPublicKey(p)
		if err != nil {
			return keys, err
		}
		keys.WebhookKey = pub
	}
	return keys, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	keys, err := serverKeys()
	if err != nil {
		return err
	}

	address := cfg.Server.Address
	if serveAddress != "" {
		address = serveAddress
	}

	srv, err := server.New(server.Config{
		Address:         address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
	}, keys, log.Named("server"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
