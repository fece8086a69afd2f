// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// ParsePrivateKey parses a PKCS#8 DER encoded RSA or EC private key. PEM armour must
// already have been removed.
func ParsePrivateKey(der []byte) (crypto.Signer, error) {
	if len(der) == 0 {
		return nil, fmt.Errorf("private key data is empty")
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("unable to parse PKCS#8 private key: %w", err)
	}

	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}

// ParsePublicKey parses an X.509 SubjectPublicKeyInfo DER encoded RSA or EC public key.
func ParsePublicKey(der []byte) (crypto.PublicKey, error) {
	if len(der) == 0 {
		return nil, fmt.Errorf("public key data is empty")
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("unable to parse public key: %w", err)
	}

	switch k := key.(type) {
	case *rsa.PublicKey:
		return k, nil
	case *ecdsa.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}

// MarshalPublicKey encodes a public key as X.509 SubjectPublicKeyInfo DER.
func MarshalPublicKey(pub crypto.PublicKey) ([]byte, error) {
	if _, err := FamilyOf(pub); err != nil {
		return nil, err
	}
	return x509.MarshalPKIXPublicKey(pub)
}

// FamilyOf reports the family of a private or public RSA/EC key.
func FamilyOf(key any) (KeyFamily, error) {
	switch key.(type) {
	case *rsa.PrivateKey, *rsa.PublicKey:
		return KeyFamilyRSA, nil
	case *ecdsa.PrivateKey, *ecdsa.PublicKey:
		return KeyFamilyEC, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}

func checkFamily(alg Algorithm, key any) error {
	family, err := FamilyOf(key)
	if err != nil {
		return err
	}
	if family != alg.Family() {
		return &KeyAlgorithmMismatchError{Algorithm: alg, Family: family}
	}
	return nil
}
