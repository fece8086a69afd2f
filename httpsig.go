// BSD 3-Clause License

// Copyright (c) 2021, James Bowes
// Copyright (c) 2023, Alexander Taraymovich, OffBlocks
// All rights reserved.

// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:

// 1. Redistributions of source code must retain the above copyright notice, this
//    list of conditions and the following disclaimer.

// 2. Redistributions in binary form must reproduce the above copyright notice,
//    this list of conditions and the following disclaimer in the documentation
//    and/or other materials provided with the distribution.

// 3. Neither the name of the copyright holder nor the names of its
//    contributors may be used to endorse or promote products derived from
//    this software without specific prior written permission.

// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
// FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
// DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
// CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
// OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

// Package httpsig signs and verifies HTTP requests using the draft
// "Signature" authorization scheme: a signing string built from
// (request-target), Date and Digest is signed with an RSA or EC key and
// carried in the Authorization header.
package httpsig

const (
	AuthorizationHeader    = "Authorization"
	DateHeader             = "Date"
	DigestHeader           = "Digest"
	WebhookSignatureHeader = "X-Hook-Signature"

	// RequestTargetPseudoHeader binds the signature to the method and path.
	RequestTargetPseudoHeader = "(request-target)"

	bearerPrefix    = "Bearer "
	signatureScheme = "Signature"
)

// Algorithm is the signature algorithm to use. Available algorithms are:
// - RSASSA-PKCS1-v1_5 using SHA-256 (rsa-sha256)
// - RSASSA-PKCS1-v1_5 using SHA-512 (rsa-sha512)
// - ECDSA using SHA-256 (ecdsa-sha256)
// - ECDSA using SHA-512 (ecdsa-sha512)
type Algorithm string

const (
	AlgorithmRsaSha256   Algorithm = "rsa-sha256"
	AlgorithmRsaSha512   Algorithm = "rsa-sha512"
	AlgorithmEcdsaSha256 Algorithm = "ecdsa-sha256"
	AlgorithmEcdsaSha512 Algorithm = "ecdsa-sha512"
)

// KeyFamily is the asymmetric key type an algorithm requires.
type KeyFamily string

const (
	KeyFamilyRSA KeyFamily = "RSA"
	KeyFamilyEC  KeyFamily = "EC"
)

// DefaultSignedHeaders is the header list used for ordinary API requests.
var DefaultSignedHeaders = []string{RequestTargetPseudoHeader, DateHeader, DigestHeader}

// RotationSignedHeaders is the header list covered by a key rotation signature.
var RotationSignedHeaders = []string{DateHeader, DigestHeader}

// RequiredHeaders are the (lowercase) names a verifier expects in the headers field.
var RequiredHeaders = []string{"date", "digest", RequestTargetPseudoHeader}
