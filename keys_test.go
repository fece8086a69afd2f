// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKeysOnce sync.Once
	testRSAKey   *rsa.PrivateKey
	testECKey    *ecdsa.PrivateKey
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *ecdsa.PrivateKey) {
	t.Helper()

	testKeysOnce.Do(func() {
		var err error
		testRSAKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic("could not generate test rsa key: " + err.Error())
		}
		testECKey, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			panic("could not generate test ec key: " + err.Error())
		}
	})

	return testRSAKey, testECKey
}

// testKeyFor returns a private key matching the algorithm family.
func testKeyFor(t *testing.T, alg Algorithm) crypto.Signer {
	rsaKey, ecKey := testKeys(t)
	if alg.Family() == KeyFamilyRSA {
		return rsaKey
	}
	return ecKey
}

func TestParsePrivateKey(t *testing.T) {
	rsaKey, ecKey := testKeys(t)

	for _, key := range []crypto.Signer{rsaKey, ecKey} {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)

		parsed, err := ParsePrivateKey(der)
		require.NoError(t, err)
		assert.IsType(t, key, parsed)
	}

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParsePrivateKey(nil)
		assert.Error(t, err)
	})
	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParsePrivateKey([]byte("not a key"))
		assert.Error(t, err)
	})
	t.Run("rejects ed25519", func(t *testing.T) {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(priv)
		require.NoError(t, err)

		_, err = ParsePrivateKey(der)
		assert.ErrorIs(t, err, ErrUnsupportedKey)
	})
}

func TestParsePublicKey(t *testing.T) {
	rsaKey, ecKey := testKeys(t)

	for _, pub := range []crypto.PublicKey{&rsaKey.PublicKey, &ecKey.PublicKey} {
		der, err := MarshalPublicKey(pub)
		require.NoError(t, err)

		parsed, err := ParsePublicKey(der)
		require.NoError(t, err)
		assert.IsType(t, pub, parsed)
	}

	_, err := ParsePublicKey([]byte{0x30, 0x01})
	assert.Error(t, err)
}

func TestFamilyOf(t *testing.T) {
	rsaKey, ecKey := testKeys(t)

	f, err := FamilyOf(rsaKey)
	assert.NoError(t, err)
	assert.Equal(t, KeyFamilyRSA, f)

	f, err = FamilyOf(&ecKey.PublicKey)
	assert.NoError(t, err)
	assert.Equal(t, KeyFamilyEC, f)

	_, err = FamilyOf("nope")
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}
