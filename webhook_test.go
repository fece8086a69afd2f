// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookSecret    = "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa"
	testWebhookSignature = "9zwHaUK5wx48WtPbGxGsPNmtf1RXm4iCXP17hy56G7hTaOL0YVJX9cOBLqF/RdEEmT5eR0p2G7uz0+OvoRvsDQ=="
)

func TestSharedSecretSignature(t *testing.T) {
	assert.Equal(t, testWebhookSignature, SharedSecretSignature([]byte("{}"), []byte(testWebhookSecret)))
}

func TestIsValidSharedSecret(t *testing.T) {
	secret := []byte(testWebhookSecret)

	assert.True(t, IsValidSharedSecret(testWebhookSignature, []byte("{}"), secret))

	assert.False(t, IsValidSharedSecret(testWebhookSignature, []byte("{ }"), secret), "different payload")
	assert.False(t, IsValidSharedSecret(testWebhookSignature, []byte("{}"), []byte("bbbbbbbb-aaaa-4aaa-aaaa-aaaaaaaaaaaa")), "different secret")
	assert.False(t, IsValidSharedSecret(testWebhookSignature[:len(testWebhookSignature)-2], []byte("{}"), secret), "truncated signature")
	assert.False(t, IsValidSharedSecret("", []byte("{}"), secret), "empty signature")
}

func TestIsValidWebhookSignature(t *testing.T) {
	rsaKey, _ := testKeys(t)
	payload := []byte(`{"event":"payment.created"}`)

	hashed := sha512.Sum512(payload)
	raw, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.SHA512, hashed[:])
	require.NoError(t, err)
	sig := base64.StdEncoding.EncodeToString(raw)

	ok, err := IsValidWebhookSignature(&rsaKey.PublicKey, sig, payload)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsValidWebhookSignature(&rsaKey.PublicKey, sig, []byte(`{"event":"payment.failed"}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsValidWebhookSignature(&rsaKey.PublicKey, "%%%", payload)
	assert.ErrorIs(t, err, ErrMalformedSignature)

	_, err = IsValidWebhookSignature(nil, sig, payload)
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}
