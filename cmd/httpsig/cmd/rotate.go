package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/keyfile"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate <rotationKeyUid> <privateRotationKey> <publicApiKey> <algorithm>",
	Short: "Prepare the signed upload of a new public API key",
	Long: `Sign a new public API key with the rotation key so that it can be uploaded.

Where:
- rotationKeyUid is the key uid for the rotation key e.g. "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa"
- privateRotationKey is the PEM file of the private rotation key
- publicApiKey is the PEM file of the public API key to upload
- algorithm is one of ` + algorithmNames() + `

The upload is valid for up to 5 minutes after the signature timestamp.`,
	Args: ExactArgsWithUsage(4),
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	keyID, err := parseKeyUID("rotationKeyUid", args[0])
	if err != nil {
		return err
	}
	alg, err := httpsig.ParseAlgorithmName(args[3])
	if err != nil {
		return err
	}

	rotationKey, err := keyfile.LoadPrivateKey(args[1])
	if err != nil {
		return err
	}
	apiKey, err := keyfile.LoadPublicKey(args[2])
	if err != nil {
		return err
	}
	der, err := httpsig.MarshalPublicKey(apiKey)
	if err != nil {
		return err
	}

	upload, err := httpsig.SignRotation(rotationKey, alg, keyID, der, time.Now())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ok, err := formatOutput(w, upload); ok {
		return err
	}

	fmt.Fprintln(w, "The details for your key rotation upload (valid for up to 5 minutes) are:")
	fmt.Fprintf(w, "\n%s\n%s\n", infoFmt("API Key:"), upload.APIKey)
	fmt.Fprintf(w, "\n%s\n%s\n", infoFmt("Upload Signature:"), upload.UploadSignature)
	fmt.Fprintf(w, "\n%s\n%s\n", infoFmt("Signature Timestamp:"), upload.Timestamp)
	return nil
}
