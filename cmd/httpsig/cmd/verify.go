package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/keyfile"
	"github.com/offblocks/httpsig-draft/internal/log"
)

var (
	verifyHeaders []string
	verifyKeyID   string

	errVerificationFailed = errors.New("verification failed")
)

var verifyCmd = &cobra.Command{
	Use:   "verify <publicKeyFile> <requestTarget> [payload]",
	Short: "Check a signed request offline",
	Long: `Verify the headers of a signed request against the public key that signed it.

Pass the received headers with -H, e.g.

  httpsig verify api.pub "put /api/v2/payments" '{"externalIdentifier":"abc"}' \
    -H 'Authorization: Signature keyid="...",algorithm="rsa-sha512",...' \
    -H 'Date: 2024-01-01T00:00:00Z' \
    -H 'Digest: ...'

The header completeness, digest and signature checks are all reported. The command
fails when any check fails.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringArrayVarP(&verifyHeaders, "header", "H", nil, "Received header as \"Name: value\" (repeatable)")
	verifyCmd.Flags().StringVar(&verifyKeyID, "key-id", "", "Only accept signatures made with this key uid")
	rootCmd.AddCommand(verifyCmd)
}

func parseHeaders(lines []string) (http.Header, error) {
	hdr := make(http.Header)
	for _, l := range lines {
		name, value, ok := strings.Cut(l, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("header %q must be \"Name: value\"", l)
		}
		hdr.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return hdr, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	pub, err := keyfile.LoadPublicKey(args[0])
	if err != nil {
		return err
	}
	method, path, err := parseRequestTarget(args[1])
	if err != nil {
		return err
	}
	hdr, err := parseHeaders(verifyHeaders)
	if err != nil {
		return err
	}

	var body []byte
	if len(args) == 3 {
		body = []byte(args[2])
	}

	var v *httpsig.Verifier
	if verifyKeyID != "" {
		v = httpsig.NewVerifier(httpsig.WithVerifyKey(verifyKeyID, pub), httpsig.WithLogger(log.Named("verifier")))
	} else {
		v = httpsig.NewVerifier(httpsig.WithVerifyDefaultKey(pub), httpsig.WithLogger(log.Named("verifier")))
	}

	result, err := v.Verify(&httpsig.Message{
		Method:     method,
		RequestURI: path,
		Header:     hdr,
		Body:       body,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ok, err := formatOutput(w, result); ok {
		if err != nil {
			return err
		}
	} else {
		printResult(w, result)
	}

	if !result.Valid() {
		return errVerificationFailed
	}
	return nil
}

func printResult(w io.Writer, result *httpsig.VerificationResult) {
	for _, c := range result.Checks {
		if c.Name == httpsig.CheckSignature {
			fmt.Fprintln(w, dimFmt("algorithm: "+result.Algorithm.String()))
			fmt.Fprintln(w, dimFmt("headers: "+strings.ReplaceAll(result.SigningString, "\n", " ")))
		}
		switch c.Status {
		case httpsig.CheckPassed:
			fmt.Fprintln(w, okFmt(c.Detail))
		case httpsig.CheckFailed:
			fmt.Fprintln(w, failFmt(c.Detail))
		default:
			fmt.Fprintln(w, dimFmt(c.Detail))
		}
	}
}
