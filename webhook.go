// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// SharedSecretSignature computes base64(SHA-512(secret || payload)).
func SharedSecretSignature(payload, secret []byte) string {
	hash := sha512.New()
	hash.Write(secret)
	hash.Write(payload)
	return base64.StdEncoding.EncodeToString(hash.Sum(nil))
}

// IsValidSharedSecret reports whether signature is the shared secret signature of payload.
func IsValidSharedSecret(signature string, payload, secret []byte) bool {
	expected := SharedSecretSignature(payload, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// IsValidWebhookSignature verifies an RSA SHA-512 PKCS#1 v1.5 signature over the raw
// payload, as sent with public key signed webhooks.
func IsValidWebhookSignature(pub *rsa.PublicKey, signature string, payload []byte) (bool, error) {
	if pub == nil {
		return false, fmt.Errorf("%w: nil public key", ErrUnsupportedKey)
	}

	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	hashed := sha512.Sum512(payload)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA512, hashed[:], raw) == nil, nil
}
