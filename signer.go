// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DateFormat is the layout of the Date header: an ISO-8601 offset date-time.
const DateFormat = time.RFC3339Nano

type SignConfig struct {
	// The key to use for signing
	Key SigningKey

	// The header names to sign, in signing order
	// Default: (request-target) Date Digest
	Headers []string

	// Access token emitted as a Bearer prefix of the Authorization header
	// Default: none
	BearerToken string

	// Methods sent without a body digest
	// Default: GET, HEAD
	NoDigestMethods []string

	Logger *zap.Logger
}

// SigningKey signs data on behalf of a key id with a fixed algorithm.
type SigningKey interface {
	Sign(data []byte) ([]byte, error)
	GetKeyID() string
	GetAlgorithm() Algorithm
}

type signingKey struct {
	crypto.Signer
	keyID string
	alg   Algorithm
}

// NewSigningKey binds a private key to a key id and algorithm, checking that the key
// family matches the algorithm.
func NewSigningKey(keyID string, alg Algorithm, key crypto.Signer) (SigningKey, error) {
	if !alg.valid() {
		return nil, &UnsupportedAlgorithmError{Name: string(alg), Supported: SupportedAlgorithms()}
	}
	if err := checkFamily(alg, key); err != nil {
		return nil, err
	}
	return &signingKey{Signer: key, keyID: keyID, alg: alg}, nil
}

func (k *signingKey) Sign(data []byte) ([]byte, error) {
	return signBytes(rand.Reader, k.Signer, k.alg, data)
}

func (k *signingKey) GetKeyID() string {
	return k.keyID
}

func (k *signingKey) GetAlgorithm() Algorithm {
	return k.alg
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Signer adds Date, Digest and Authorization headers to outgoing requests.
type Signer struct {
	*signer
}

// NewSigner creates a new signer with the given options. Use WithSignKey to configure the
// key; signing fails until one is set.
func NewSigner(opts ...signOption) *Signer {
	s := signer{clock: systemClock{}}

	for _, o := range opts {
		o.configureSign(&s)
	}

	if len(s.config.Headers) == 0 {
		s.config.Headers = DefaultSignedHeaders
	}
	if s.config.Logger == nil {
		s.config.Logger = zap.NewNop()
	}

	var digestOpts []digestOption
	if s.config.NoDigestMethods != nil {
		digestOpts = append(digestOpts, WithNoDigestMethods(s.config.NoDigestMethods...))
	}
	s.digestor = NewDigestor(digestOpts...)

	return &Signer{&s}
}

// Sign returns a copy of the message headers with Date (unless already present), Digest
// and Authorization set.
func (s *Signer) Sign(msg *Message) (http.Header, error) {
	return s.signer.Sign(msg)
}

// SignRequest signs r in place.
func (s *Signer) SignRequest(r *http.Request) error {
	msg, err := MessageFromRequest(r)
	if err != nil {
		return err
	}
	hdr, err := s.signer.Sign(msg)
	if err != nil {
		return err
	}
	r.Header = hdr
	return nil
}

type signer struct {
	config   SignConfig
	digestor *Digestor

	// for testing
	clock clock
}

func (s *signer) Sign(msg *Message) (http.Header, error) {
	if s.config.Key == nil {
		return nil, errors.New("signer not configured")
	}

	hdr := msg.Header.Clone()
	if hdr == nil {
		hdr = make(http.Header)
	}

	if hdr.Get(DateHeader) == "" {
		hdr.Set(DateHeader, s.clock.Now().UTC().Format(DateFormat))
	}
	hdr.Set(DigestHeader, s.digestor.digestFor(msg.Method, msg.Body))

	signingString, err := BuildSigningString(msg.Method, msg.RequestURI, s.config.Headers, LookupFromHeader(hdr))
	if err != nil {
		return nil, err
	}

	raw, err := s.config.Key.Sign([]byte(signingString))
	if err != nil {
		return nil, err
	}

	auth := BuildAuthorizationValue(
		s.config.Key.GetKeyID(),
		s.config.Key.GetAlgorithm(),
		s.config.Headers,
		base64.StdEncoding.EncodeToString(raw),
		s.config.BearerToken,
	)
	value, err := auth.Format()
	if err != nil {
		return nil, err
	}
	hdr.Set(AuthorizationHeader, value)

	s.config.Logger.Debug("signed request",
		zap.String("keyid", auth.KeyID),
		zap.String("algorithm", string(auth.Algorithm)),
		zap.String("request_target", RequestTarget(msg.Method, msg.RequestURI)),
	)

	return hdr, nil
}
