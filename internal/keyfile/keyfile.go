// Package keyfile reads and writes the PEM key files used by the command line tools.
//
// Private keys are PKCS#8 ("PRIVATE KEY") and public keys X.509 SubjectPublicKeyInfo
// ("PUBLIC KEY"). Files holding the bare base64 body without armour are accepted too.
package keyfile

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	httpsig "github.com/offblocks/httpsig-draft"
)

const (
	privateKeyType = "PRIVATE KEY"
	publicKeyType  = "PUBLIC KEY"

	RSABits = 4096
)

// Decode returns the DER bytes of a PEM file, or of a bare base64 body once the armour
// lines and whitespace are removed.
func Decode(data []byte) ([]byte, error) {
	if block, _ := pem.Decode(data); block != nil {
		return block.Bytes, nil
	}

	var b strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-----") {
			continue
		}
		b.WriteString(strings.Join(strings.Fields(line), ""))
	}
	if b.Len() == 0 {
		return nil, errors.New("key file is empty")
	}

	der, err := base64.StdEncoding.DecodeString(b.String())
	if err != nil {
		return nil, errors.Wrap(err, "key file is neither PEM nor base64")
	}
	return der, nil
}

func LoadPrivateKey(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read private key file")
	}
	der, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "private key %s", path)
	}
	key, err := httpsig.ParsePrivateKey(der)
	if err != nil {
		return nil, errors.Wrapf(err, "private key %s", path)
	}
	return key, nil
}

func LoadPublicKey(path string) (crypto.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read public key file")
	}
	der, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "public key %s", path)
	}
	key, err := httpsig.ParsePublicKey(der)
	if err != nil {
		return nil, errors.Wrapf(err, "public key %s", path)
	}
	return key, nil
}

// LoadRSAPublicKey loads a public key that must be RSA, as used by public key webhooks.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	key, err := LoadPublicKey(path)
	if err != nil {
		return nil, err
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Errorf("public key %s is %T, expected RSA", path, key)
	}
	return pub, nil
}

// Generate creates a new key of the given family: RSA 4096 or EC P-256.
func Generate(family httpsig.KeyFamily) (crypto.Signer, error) {
	var (
		key crypto.Signer
		err error
	)
	switch family {
	case httpsig.KeyFamilyRSA:
		key, err = rsa.GenerateKey(rand.Reader, RSABits)
	case httpsig.KeyFamilyEC:
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	default:
		return nil, errors.Errorf("unsupported key family %q", family)
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate key")
	}
	return key, nil
}

func EncodePrivateKey(key crypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal private key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: privateKeyType, Bytes: der}), nil
}

func EncodePublicKey(pub crypto.PublicKey) ([]byte, error) {
	der, err := httpsig.MarshalPublicKey(pub)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal public key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicKeyType, Bytes: der}), nil
}

// Pair is the location of a written key pair.
type Pair struct {
	PrivateKeyPath string `json:"privateKeyPath" yaml:"privateKeyPath"`
	PublicKeyPath  string `json:"publicKeyPath" yaml:"publicKeyPath"`
}

// WritePair writes <name>.key (mode 0600) and <name>.pub into dir.
func WritePair(dir, name string, key crypto.Signer) (*Pair, error) {
	priv, err := EncodePrivateKey(key)
	if err != nil {
		return nil, err
	}
	pub, err := EncodePublicKey(key.Public())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "unable to create key directory")
	}

	p := &Pair{
		PrivateKeyPath: filepath.Join(dir, name+".key"),
		PublicKeyPath:  filepath.Join(dir, name+".pub"),
	}
	if err := os.WriteFile(p.PrivateKeyPath, priv, 0o600); err != nil {
		return nil, errors.Wrap(err, "unable to write private key")
	}
	if err := os.WriteFile(p.PublicKeyPath, pub, 0o644); err != nil {
		return nil, errors.Wrap(err, "unable to write public key")
	}
	return p, nil
}
