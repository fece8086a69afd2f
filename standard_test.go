// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests follow the documented request samples end to end: the client signs, the
// message crosses the wire as headers, and a separate verifier rebuilds it.

func TestStandard_PutPaymentCategory(t *testing.T) {
	rsaKey, _ := testKeys(t)

	signer := NewSigner(
		WithSignKey(testKeyID, AlgorithmRsaSha256, rsaKey),
		WithSignDate(testDate),
	)

	sent, err := signer.Sign(&Message{
		Method:     http.MethodPut,
		RequestURI: testPutPath,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(testPutBody),
	})
	require.NoError(t, err)

	assert.Equal(t, "uKTqIog0WrinaDQTug5KcUf2By6uP+8JAxVE+Xpj438QkcethqnLuq73upZfnolGA7Pm5hXxGMsaDDzpec9KTQ==", sent.Get(DigestHeader))

	received := &Message{
		Method:     "PUT",
		RequestURI: testPutPath,
		Header:     sent,
		Body:       []byte(testPutBody),
	}

	result, err := NewVerifier(WithVerifyKey(testKeyID, &rsaKey.PublicKey)).Verify(received)
	require.NoError(t, err)

	assert.True(t, result.Valid())
	for _, name := range []CheckName{CheckHeaders, CheckDigest, CheckSignature} {
		c, ok := result.Check(name)
		require.True(t, ok)
		assert.Equal(t, CheckPassed, c.Status, name)
	}
}

func TestStandard_MissingDigestHeaderName(t *testing.T) {
	auth, err := ParseAuthorization(`Signature keyid="k",algorithm="rsa-sha256",headers="date (request-target)",signature="c2ln"`)
	require.NoError(t, err)

	assert.Equal(t, []string{"digest"}, missingHeaders(RequiredHeaders, auth.SignedHeaderNames()))
}

func TestStandard_SharedSecretWebhook(t *testing.T) {
	assert.True(t, IsValidSharedSecret(testWebhookSignature, []byte("{}"), []byte(testWebhookSecret)))
	assert.False(t, IsValidSharedSecret(strings.ToLower(testWebhookSignature), []byte("{}"), []byte(testWebhookSecret)))
}

func TestStandard_UnsupportedAlgorithm(t *testing.T) {
	rsaKey, _ := testKeys(t)

	_, err := ResolveAlgorithm("md5-rsa")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = Sign(rsaKey, Algorithm("md5-rsa"), "Date: x")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
