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
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is a minimal representation of an HTTP request, containing the values
// needed to construct a signing string.
type Message struct {
	// Method as sent on the wire, any case.
	Method string
	// RequestURI is the path with the raw query, exactly as sent.
	RequestURI string
	Header     http.Header
	// Body is nil for requests without a body.
	Body    []byte
	Context context.Context
}

// MessageFromRequest captures a request. The body is read fully and replaced so that
// downstream handlers can still consume it.
func MessageFromRequest(r *http.Request) (*Message, error) {
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("unable to read request body: %w", err)
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(b))
		body = b
	}

	return &Message{
		Method:     r.Method,
		RequestURI: requestURI(r),
		Header:     r.Header.Clone(),
		Body:       body,
		Context:    r.Context(),
	}, nil
}

// requestURI prefers the unmodified request line on the server side so that query
// parameters keep the order and encoding the signer used.
func requestURI(r *http.Request) string {
	if r.RequestURI != "" && strings.HasPrefix(r.RequestURI, "/") {
		return r.RequestURI
	}
	if r.URL == nil {
		return "/"
	}
	return r.URL.RequestURI()
}

// HeaderLookup resolves the value of a signed header. The boolean is false when the
// header is absent; an empty value that is present is valid.
type HeaderLookup func(name string) (string, bool)

// LookupFromHeader resolves names case-insensitively against an http.Header. Multiple
// values are joined with ", ".
func LookupFromHeader(h http.Header) HeaderLookup {
	return func(name string) (string, bool) {
		v := h.Values(name)
		if len(v) == 0 {
			return "", false
		}
		return strings.Join(v, ", "), true
	}
}

// LookupFromMap resolves names against a map keyed exactly as the signed header list.
func LookupFromMap(m map[string]string) HeaderLookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// RequestTarget builds the (request-target) value: the lowercased method, a space, then
// the path and optional query.
func RequestTarget(method, requestURI string) string {
	return strings.ToLower(method) + " " + requestURI
}

// BuildSigningString produces one "name: value" line per entry of headers, in the
// declared order and with the declared case, joined by "\n" with no trailing newline.
func BuildSigningString(method, requestTarget string, headers []string, lookup HeaderLookup) (string, error) {
	var b strings.Builder

	for i, h := range headers {
		var value string
		if strings.EqualFold(h, RequestTargetPseudoHeader) {
			value = RequestTarget(method, requestTarget)
		} else {
			v, ok := lookup(h)
			if !ok {
				return "", &MissingHeaderValueError{Name: h}
			}
			value = v
		}

		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(h)
		b.WriteString(": ")
		b.WriteString(value)
	}

	return b.String(), nil
}

// SigningString builds the signing string for a captured message.
func (m *Message) SigningString(headers []string) (string, error) {
	return BuildSigningString(m.Method, m.RequestURI, headers, LookupFromHeader(m.Header))
}
