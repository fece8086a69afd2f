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
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

// NewVerifyMiddleware returns a configured http server middleware that can be used to wrap
// multiple handlers for http message signature and digest verification.
//
// Use the `WithVerify*` option funcs to configure verification keys and required headers.
//
// Requests with a missing or malformed Authorization header, an unsupported algorithm or an
// unknown key are rejected with a `400` response. Requests that fail any check are rejected
// with a `401` response whose body lists the diagnostics.
func NewVerifyMiddleware(opts ...verifyOption) func(http.Handler) http.Handler {
	v := NewVerifier(opts...)

	serveErr := func(rw http.ResponseWriter, status int, body string) {
		rw.Header().Set("Content-Type", "text/plain")
		rw.WriteHeader(status)

		_, _ = rw.Write([]byte(body))
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			result, err := v.VerifyRequest(r)
			if err != nil {
				serveErr(rw, http.StatusBadRequest, err.Error())
				return
			}
			if !result.Valid() {
				serveErr(rw, http.StatusUnauthorized, result.String())
				return
			}
			h.ServeHTTP(rw, r)
		})
	}
}

// NewWebhookMiddleware returns a middleware that only lets through POST requests whose
// X-Hook-Signature header matches the shared secret signature of the body.
func NewWebhookMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(rw, "Only POST is supported", http.StatusMethodNotAllowed)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					http.Error(rw, "Request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(rw, "unable to read body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			signature := strings.TrimSpace(r.Header.Get(WebhookSignatureHeader))
			if !IsValidSharedSecret(signature, body, secret) {
				http.Error(rw, "Bad webhook signature", http.StatusForbidden)
				return
			}
			h.ServeHTTP(rw, r)
		})
	}
}
