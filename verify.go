// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
)

// Verify checks a raw signature over signingString. A signature that does not match is
// reported as false with a nil error; errors are reserved for unusable inputs such as an
// unknown algorithm or a key of the wrong family.
func Verify(pub crypto.PublicKey, alg Algorithm, signingString string, signature []byte) (bool, error) {
	if !alg.valid() {
		return false, &UnsupportedAlgorithmError{Name: string(alg), Supported: SupportedAlgorithms()}
	}
	if err := checkFamily(alg, pub); err != nil {
		return false, err
	}

	hashed, err := hashData(alg.Hash(), []byte(signingString))
	if err != nil {
		return false, err
	}

	switch k := pub.(type) {
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(k, alg.Hash(), hashed, signature) == nil, nil
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(k, hashed, signature), nil
	}

	return false, fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
}

// VerifyBase64 decodes a base64 signature and verifies it. Undecodable input is
// ErrMalformedSignature rather than a failed verification.
func VerifyBase64(pub crypto.PublicKey, alg Algorithm, signingString string, signature string) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return Verify(pub, alg, signingString, raw)
}
