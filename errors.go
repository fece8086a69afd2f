// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedAlgorithm   = errors.New("unsupported signing algorithm")
	ErrMissingHeaderValue     = errors.New("missing header value")
	ErrKeyAlgorithmMismatch   = errors.New("key does not match algorithm")
	ErrMalformedAuthorization = errors.New("unable to parse authorization header")
	ErrMalformedSignature     = errors.New("unable to decode signature")
	ErrUnknownKey             = errors.New("unknown key id")
	ErrSigning                = errors.New("signing failed")
	ErrUnsupportedKey         = errors.New("unsupported key type")
)

// UnsupportedAlgorithmError carries the rejected name and the supported set.
type UnsupportedAlgorithmError struct {
	Name      string
	Supported []Algorithm
}

func (e *UnsupportedAlgorithmError) Error() string {
	names := make([]string, len(e.Supported))
	for i, a := range e.Supported {
		names[i] = string(a)
	}
	return fmt.Sprintf("unsupported signing algorithm %q, expected one of: [%s]", e.Name, strings.Join(names, ", "))
}

func (e *UnsupportedAlgorithmError) Is(target error) bool { return target == ErrUnsupportedAlgorithm }

// MissingHeaderValueError is returned when a header named in the signed list has no value.
type MissingHeaderValueError struct {
	Name string
}

func (e *MissingHeaderValueError) Error() string {
	return fmt.Sprintf("header not found: %s", e.Name)
}

func (e *MissingHeaderValueError) Is(target error) bool { return target == ErrMissingHeaderValue }

type KeyAlgorithmMismatchError struct {
	Algorithm Algorithm
	Family    KeyFamily
}

func (e *KeyAlgorithmMismatchError) Error() string {
	return fmt.Sprintf("algorithm %s requires a %s key, got %s", e.Algorithm, e.Algorithm.Family(), e.Family)
}

func (e *KeyAlgorithmMismatchError) Is(target error) bool { return target == ErrKeyAlgorithmMismatch }

// MalformedAuthorizationError describes why an Authorization value could not be split into fields.
type MalformedAuthorizationError struct {
	Reason string
}

func (e *MalformedAuthorizationError) Error() string {
	return fmt.Sprintf("unable to parse authorization header: %s", e.Reason)
}

func (e *MalformedAuthorizationError) Is(target error) bool {
	return target == ErrMalformedAuthorization
}

// SigningError wraps a failure of the underlying crypto engine.
type SigningError struct {
	Algorithm Algorithm
	Err       error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing with %s failed: %v", e.Algorithm, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

func (e *SigningError) Is(target error) bool { return target == ErrSigning }
