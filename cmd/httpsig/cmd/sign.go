package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/keyfile"
	"github.com/offblocks/httpsig-draft/internal/log"
)

var signDate string

type signOutput struct {
	Authorization string `json:"authorization" yaml:"authorization"`
	Date          string `json:"date" yaml:"date"`
	Digest        string `json:"digest" yaml:"digest"`
}

var signCmd = &cobra.Command{
	Use:   "sign <keyUid> <privateKeyFile> <algorithm> <requestTarget> <payload> <accessToken>",
	Short: "Print the Authorization, Date and Digest headers for a request",
	Long: `Sign a request and print the headers to attach to it.

Where:
- keyUid is the key uid for the API key e.g. "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa"
- privateKeyFile is the PEM file of the corresponding private API key
- algorithm is one of ` + algorithmNames() + `
- requestTarget is the HTTP method, a space, then the endpoint path e.g. "put /api/v2/payments/local/account/<accountUid>/category/<categoryUid>"
- payload is the raw JSON body, "" for requests without one
- accessToken is the access token, "" to omit the Bearer prefix

You may need to surround the arguments in quotes, and escape any inner quotes.`,
	Args: ExactArgsWithUsage(6),
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVar(&signDate, "date", "", "Fixed Date header value as an RFC 3339 timestamp (default: now)")
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	keyID, err := parseKeyUID("keyUid", args[0])
	if err != nil {
		return err
	}
	alg, err := httpsig.ParseAlgorithmName(args[2])
	if err != nil {
		return err
	}
	method, path, err := parseRequestTarget(args[3])
	if err != nil {
		return err
	}

	key, err := keyfile.LoadPrivateKey(args[1])
	if err != nil {
		return err
	}

	now := time.Now()
	if signDate != "" {
		if now, err = time.Parse(time.RFC3339Nano, signDate); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	signer := httpsig.NewSigner(
		httpsig.WithSignKey(keyID, alg, key),
		httpsig.WithSignBearerToken(args[5]),
		httpsig.WithSignDate(now),
		httpsig.WithLogger(log.Named("signer")),
	)

	hdr, err := signer.Sign(&httpsig.Message{
		Method:     method,
		RequestURI: path,
		Body:       []byte(args[4]),
	})
	if err != nil {
		return err
	}

	out := signOutput{
		Authorization: hdr.Get(httpsig.AuthorizationHeader),
		Date:          hdr.Get(httpsig.DateHeader),
		Digest:        hdr.Get(httpsig.DigestHeader),
	}

	w := cmd.OutOrStdout()
	if ok, err := formatOutput(w, out); ok {
		return err
	}

	fmt.Fprintln(w, "Attach these headers to your request:")
	fmt.Fprintf(w, "%s: %s\n", httpsig.AuthorizationHeader, out.Authorization)
	fmt.Fprintf(w, "%s: %s\n", httpsig.DateHeader, out.Date)
	fmt.Fprintf(w, "%s: %s\n", httpsig.DigestHeader, out.Digest)
	return nil
}
