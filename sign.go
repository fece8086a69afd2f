// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/rand"
	"encoding/base64"
	"io"
)

// Sign signs the exact bytes of signingString and returns the base64 encoded signature.
// RSA keys produce PKCS#1 v1.5 signatures and EC keys ASN.1 DER signatures.
func Sign(key crypto.Signer, alg Algorithm, signingString string) (string, error) {
	raw, err := signBytes(rand.Reader, key, alg, []byte(signingString))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func signBytes(random io.Reader, key crypto.Signer, alg Algorithm, data []byte) ([]byte, error) {
	if !alg.valid() {
		return nil, &UnsupportedAlgorithmError{Name: string(alg), Supported: SupportedAlgorithms()}
	}
	if key == nil {
		return nil, &SigningError{Algorithm: alg, Err: ErrUnsupportedKey}
	}
	if err := checkFamily(alg, key); err != nil {
		return nil, err
	}

	hashed, err := hashData(alg.Hash(), data)
	if err != nil {
		return nil, &SigningError{Algorithm: alg, Err: err}
	}

	sig, err := key.Sign(random, hashed, alg.Hash())
	if err != nil {
		return nil, &SigningError{Algorithm: alg, Err: err}
	}

	return sig, nil
}

func hashData(h crypto.Hash, data []byte) ([]byte, error) {
	hash := h.New()
	_, err := hash.Write(data)
	if err != nil {
		return nil, err
	}

	return hash.Sum(nil), nil
}
