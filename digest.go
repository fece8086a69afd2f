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

package httpsig

import (
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"slices"
	"strings"
)

// NoDigest is the Digest value sent for requests that carry no body.
const NoDigest = ""

// Digest returns the base64 encoded SHA-512 digest of body.
func Digest(body []byte) string {
	sum := sha512.Sum512(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// DigestFor returns NoDigest for GET and HEAD requests and the body digest otherwise.
func DigestFor(method string, body []byte) string {
	return NewDigestor().digestor.digestFor(method, body)
}

// DigestsEqual compares two digest values. Digests are not secret so a plain
// comparison is enough.
func DigestsEqual(a, b string) bool {
	return a == b
}

type DigestConfig struct {
	// Methods whose requests are sent without a body digest.
	// default: GET, HEAD
	NoDigestMethods []string
}

type Digestor struct {
	*digestor
}

// NewDigestor creates a new digestor with the given options
func NewDigestor(opts ...digestOption) *Digestor {
	d := digestor{}

	for _, o := range opts {
		o.configureDigest(&d)
	}

	if d.config.NoDigestMethods == nil {
		d.config.NoDigestMethods = []string{http.MethodGet, http.MethodHead}
	}

	return &Digestor{&d}
}

// Digest creates a Digest header for the given method and body
func (d *Digestor) Digest(method string, body []byte) http.Header {
	hdr := make(http.Header)
	hdr.Set(DigestHeader, d.digestor.digestFor(method, body))
	return hdr
}

// Skips reports whether requests with the given method carry no digest.
func (d *Digestor) Skips(method string) bool {
	return d.digestor.skips(method)
}

type digestor struct {
	config DigestConfig
}

func (d *digestor) skips(method string) bool {
	return slices.Contains(d.config.NoDigestMethods, strings.ToUpper(method))
}

func (d *digestor) digestFor(method string, body []byte) string {
	if d.skips(method) {
		return NoDigest
	}
	return Digest(body)
}
