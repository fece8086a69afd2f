// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"encoding/base64"
	"fmt"
	"time"
)

// rotationAdvertisedHeaders is the header list the key upload endpoint expects in the
// upload signature. Only Date and Digest are actually signed.
var rotationAdvertisedHeaders = DefaultSignedHeaders

// RotationUpload carries what is needed to upload a new API public key under an existing
// rotation key.
type RotationUpload struct {
	// APIKey is the base64 encoded DER public key being uploaded.
	APIKey string `json:"apiKey" yaml:"apiKey"`
	// UploadSignature is the Signature value authorising the upload.
	UploadSignature string `json:"uploadSignature" yaml:"uploadSignature"`
	// Timestamp is the signed Date value.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// SignRotation signs the Date and Digest of a base64 encoded public API key with the
// rotation key.
func SignRotation(key crypto.Signer, alg Algorithm, rotationKeyID string, publicAPIKey []byte, now time.Time) (*RotationUpload, error) {
	if len(publicAPIKey) == 0 {
		return nil, fmt.Errorf("public api key is empty")
	}

	payload := base64.StdEncoding.EncodeToString(publicAPIKey)
	date := now.UTC().Format(DateFormat)

	signingString, err := rotationSigningString(payload, date)
	if err != nil {
		return nil, err
	}

	signature, err := Sign(key, alg, signingString)
	if err != nil {
		return nil, err
	}

	auth := BuildAuthorizationValue(rotationKeyID, alg, rotationAdvertisedHeaders, signature, "")
	value, err := auth.Format()
	if err != nil {
		return nil, err
	}

	return &RotationUpload{
		APIKey:          payload,
		UploadSignature: value,
		Timestamp:       date,
	}, nil
}

// VerifyRotation checks an upload signature against the rotation public key.
func VerifyRotation(pub crypto.PublicKey, upload *RotationUpload) (bool, error) {
	auth, err := ParseAuthorization(upload.UploadSignature)
	if err != nil {
		return false, err
	}

	alg, err := ResolveAlgorithm(string(auth.Algorithm))
	if err != nil {
		return false, err
	}

	signingString, err := rotationSigningString(upload.APIKey, upload.Timestamp)
	if err != nil {
		return false, err
	}

	return VerifyBase64(pub, alg, signingString, auth.Signature)
}

func rotationSigningString(payload, date string) (string, error) {
	return BuildSigningString("", "", RotationSignedHeaders, LookupFromMap(map[string]string{
		DateHeader:   date,
		DigestHeader: Digest([]byte(payload)),
	}))
}
