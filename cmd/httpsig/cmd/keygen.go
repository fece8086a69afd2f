package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/keyfile"
)

var (
	keygenType string
	keygenDir  string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen <name>",
	Short: "Generate a key pair for signing",
	Long: `Generate a key pair and write <name>.key (PKCS#8, mode 0600) and <name>.pub
(X.509 SubjectPublicKeyInfo) as PEM files.

RSA keys are 4096 bits and EC keys use the P-256 curve. Upload the public key and
keep the private key to sign with.`,
	Args: ExactArgsWithUsage(1),
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringVar(&keygenType, "type", "rsa", "Key type: rsa, ec")
	keygenCmd.Flags().StringVar(&keygenDir, "dir", ".", "Directory to write the key files to")
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	var family httpsig.KeyFamily
	switch strings.ToLower(keygenType) {
	case "rsa":
		family = httpsig.KeyFamilyRSA
	case "ec", "ecdsa":
		family = httpsig.KeyFamilyEC
	default:
		return fmt.Errorf("unknown key type %q, expected rsa or ec", keygenType)
	}

	key, err := keyfile.Generate(family)
	if err != nil {
		return err
	}
	pair, err := keyfile.WritePair(keygenDir, args[0], key)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ok, err := formatOutput(w, pair); ok {
		return err
	}

	fmt.Fprintf(w, "%s %s\n", okFmt("Private key:"), pair.PrivateKeyPath)
	fmt.Fprintf(w, "%s %s\n", okFmt("Public key: "), pair.PublicKeyPath)
	return nil
}
