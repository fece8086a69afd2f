package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/keyfile"
)

var (
	webhookSecret    string
	webhookPublicKey string
)

type webhookOutput struct {
	Version string `json:"version" yaml:"version"`
	Valid   bool   `json:"valid" yaml:"valid"`
}

var webhookCmd = &cobra.Command{
	Use:   "webhook <signature> <payload>",
	Short: "Check the X-Hook-Signature of a webhook delivery",
	Long: `Check a webhook signature against its raw payload.

v1 webhooks are signed with the shared secret (--secret, or webhook.shared_secret in
the config). v2 webhooks are signed with an RSA key; pass its public key with
--public-key (or webhook.public_key_path in the config).`,
	Args: ExactArgsWithUsage(2),
	RunE: runWebhook,
}

func init() {
	webhookCmd.Flags().StringVar(&webhookSecret, "secret", "", "Shared secret for v1 webhooks")
	webhookCmd.Flags().StringVar(&webhookPublicKey, "public-key", "", "PEM public key file for v2 webhooks")
	rootCmd.AddCommand(webhookCmd)
}

func runWebhook(cmd *cobra.Command, args []string) error {
	signature, payload := args[0], []byte(args[1])

	keyPath := webhookPublicKey
	if keyPath == "" && webhookSecret == "" {
		keyPath = cfg.Webhook.PublicKeyPath
	}

	var out webhookOutput
	if keyPath != "" {
		pub, err := keyfile.LoadRSAPublicKey(keyPath)
		if err != nil {
			return err
		}
		valid, err := httpsig.IsValidWebhookSignature(pub, signature, payload)
		if err != nil {
			return err
		}
		out = webhookOutput{Version: "v2", Valid: valid}
	} else {
		secret := webhookSecret
		if secret == "" {
			secret = cfg.Webhook.SharedSecret
		}
		if secret == "" {
			return errors.New("no shared secret: pass --secret or set webhook.shared_secret")
		}
		out = webhookOutput{Version: "v1", Valid: httpsig.IsValidSharedSecret(signature, payload, []byte(secret))}
	}

	w := cmd.OutOrStdout()
	if ok, err := formatOutput(w, out); ok {
		if err != nil {
			return err
		}
	} else if out.Valid {
		fmt.Fprintln(w, okFmt("Good webhook signature"))
	} else {
		fmt.Fprintln(w, failFmt("Bad webhook signature"))
	}

	if !out.Valid {
		return errVerificationFailed
	}
	return nil
}
