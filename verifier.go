// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
)

type VerifyConfig struct {
	// The keys to use for verifying, by key id
	Keys map[string]crypto.PublicKey

	// Key used when the key id is absent or not known
	DefaultKey crypto.PublicKey

	// Resolver for verifying keys
	KeyResolver VerifyingKeyResolver

	// Header names (lowercase) that must be covered by the signature
	// Default: date, digest, (request-target)
	RequiredHeaders []string

	// Methods whose requests carry no body digest
	// Default: GET, HEAD
	NoDigestMethods []string

	Logger *zap.Logger
}

// VerifyingKeyResolver looks up public keys by key id.
type VerifyingKeyResolver interface {
	Resolve(keyID string, alg Algorithm) (crypto.PublicKey, error)
}

// CheckName identifies one of the verification checks.
type CheckName string

const (
	CheckHeaders   CheckName = "headers"
	CheckDigest    CheckName = "digest"
	CheckSignature CheckName = "signature"
)

type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

type CheckResult struct {
	Name   CheckName   `json:"name" yaml:"name"`
	Status CheckStatus `json:"status" yaml:"status"`
	Detail string      `json:"detail" yaml:"detail"`
}

// VerificationResult reports every check that ran. Failed digest and signature checks are
// normal results, not errors.
type VerificationResult struct {
	KeyID          string        `json:"keyId" yaml:"keyId"`
	Algorithm      Algorithm     `json:"algorithm" yaml:"algorithm"`
	SignedHeaders  []string      `json:"signedHeaders" yaml:"signedHeaders"`
	MissingHeaders []string      `json:"missingHeaders,omitempty" yaml:"missingHeaders,omitempty"`
	SigningString  string        `json:"signingString" yaml:"signingString"`
	Checks         []CheckResult `json:"checks" yaml:"checks"`
}

// Valid is true when no check failed.
func (r *VerificationResult) Valid() bool {
	if r == nil || len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if c.Status == CheckFailed {
			return false
		}
	}
	return true
}

// Check returns the result of the named check.
func (r *VerificationResult) Check(name CheckName) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Lines renders the result as human readable diagnostics, one check per line.
func (r *VerificationResult) Lines() []string {
	lines := make([]string, 0, len(r.Checks)+3)
	for _, c := range r.Checks {
		if c.Name == CheckSignature {
			lines = append(lines,
				fmt.Sprintf("algorithm: %s", r.Algorithm),
				fmt.Sprintf("headers: %s", strings.ReplaceAll(r.SigningString, "\n", " ")),
			)
		}
		lines = append(lines, c.Detail)
	}
	return lines
}

func (r *VerificationResult) String() string {
	return strings.Join(r.Lines(), "\n")
}

func (r *VerificationResult) add(name CheckName, status CheckStatus, detail string) {
	r.Checks = append(r.Checks, CheckResult{Name: name, Status: status, Detail: detail})
}

// Verifier checks inbound requests signed with the Signature authorization scheme.
type Verifier struct {
	*verifier
}

// NewVerifier creates a new verifier with the given options
func NewVerifier(opts ...verifyOption) *Verifier {
	v := verifier{
		config: VerifyConfig{Keys: make(map[string]crypto.PublicKey)},
	}

	for _, o := range opts {
		o.configureVerify(&v)
	}

	if v.config.RequiredHeaders == nil {
		v.config.RequiredHeaders = RequiredHeaders
	}
	if v.config.Logger == nil {
		v.config.Logger = zap.NewNop()
	}

	var digestOpts []digestOption
	if v.config.NoDigestMethods != nil {
		digestOpts = append(digestOpts, WithNoDigestMethods(v.config.NoDigestMethods...))
	}
	v.digestor = NewDigestor(digestOpts...)

	return &Verifier{&v}
}

// Verify runs the header completeness, digest and signature checks against msg. All three
// checks are reported. An error is returned only when verification cannot proceed: the
// Authorization header is malformed, the algorithm is unsupported, no key is known for the
// key id, the key does not match the algorithm, or the signature is not valid base64. The
// partial result is still returned alongside the error.
func (v *Verifier) Verify(msg *Message) (*VerificationResult, error) {
	return v.verifier.Verify(msg)
}

// VerifyRequest captures r (restoring its body) and verifies it.
func (v *Verifier) VerifyRequest(r *http.Request) (*VerificationResult, error) {
	msg, err := MessageFromRequest(r)
	if err != nil {
		return nil, err
	}
	return v.verifier.Verify(msg)
}

type verifier struct {
	config   VerifyConfig
	digestor *Digestor
}

func (v *verifier) Verify(msg *Message) (*VerificationResult, error) {
	auth, err := ParseAuthorization(msg.Header.Get(AuthorizationHeader))
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{
		KeyID:         auth.KeyID,
		Algorithm:     auth.Algorithm,
		SignedHeaders: auth.Headers,
	}

	// 1. header completeness
	result.MissingHeaders = missingHeaders(v.config.RequiredHeaders, auth.SignedHeaderNames())
	if len(result.MissingHeaders) > 0 {
		result.add(CheckHeaders, CheckFailed, "Validation failure: authHeader is missing some required headers: "+strings.Join(result.MissingHeaders, ", "))
	} else {
		result.add(CheckHeaders, CheckPassed, "All required headers are signed.")
	}

	// 2. digest
	if v.digestor.Skips(msg.Method) {
		result.add(CheckDigest, CheckSkipped, fmt.Sprintf("Digest not checked for %s requests.", strings.ToUpper(msg.Method)))
	} else if DigestsEqual(Digest(msg.Body), msg.Header.Get(DigestHeader)) {
		result.add(CheckDigest, CheckPassed, "Successfully verified digest against payload.")
	} else {
		result.add(CheckDigest, CheckFailed, "Digest could not be verified against payload.")
	}

	// 3. signature
	alg, err := ResolveAlgorithm(string(auth.Algorithm))
	if err != nil {
		return result, err
	}

	key, err := v.resolveKey(auth.KeyID, alg)
	if err != nil {
		return result, err
	}
	if err := checkFamily(alg, key); err != nil {
		return result, err
	}

	signature, err := base64.StdEncoding.DecodeString(auth.Signature)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	signingString, err := msg.SigningString(auth.Headers)
	if err != nil {
		var missing *MissingHeaderValueError
		if !errors.As(err, &missing) {
			return result, err
		}
		result.add(CheckSignature, CheckFailed, fmt.Sprintf("Message signature invalid: signed header %s not present.", missing.Name))
		v.log(result)
		return result, nil
	}
	result.SigningString = signingString

	ok, err := Verify(key, alg, signingString, signature)
	if err != nil {
		return result, err
	}
	if ok {
		result.add(CheckSignature, CheckPassed, "Message signed correctly.")
	} else {
		result.add(CheckSignature, CheckFailed, "Message signature invalid.")
	}

	v.log(result)
	return result, nil
}

func (v *verifier) log(result *VerificationResult) {
	v.config.Logger.Debug("verified request",
		zap.String("keyid", result.KeyID),
		zap.String("algorithm", string(result.Algorithm)),
		zap.Bool("valid", result.Valid()),
		zap.Strings("missing_headers", result.MissingHeaders),
	)
}

// resolveKey asks the resolver on every call; resolved keys are not retained.
func (v *verifier) resolveKey(keyID string, alg Algorithm) (crypto.PublicKey, error) {
	if key, ok := v.config.Keys[keyID]; ok && keyID != "" {
		return key, nil
	}

	if v.config.KeyResolver != nil && keyID != "" {
		key, err := v.config.KeyResolver.Resolve(keyID, alg)
		if err == nil && key != nil {
			return key, nil
		}
		if err != nil && !errors.Is(err, ErrUnknownKey) {
			return nil, err
		}
	}

	if v.config.DefaultKey != nil {
		return v.config.DefaultKey, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, keyID)
}

// missingHeaders returns the sorted members of required absent from signed.
func missingHeaders(required, signed []string) []string {
	var missing []string
	for _, r := range required {
		if !slices.Contains(signed, strings.ToLower(r)) {
			missing = append(missing, strings.ToLower(r))
		}
	}
	sort.Strings(missing)
	return missing
}
