// Copyright (c) 2021 James Bowes. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httpsig

import (
	"crypto"
	"strings"
)

type algorithmSpec struct {
	hash   crypto.Hash
	family KeyFamily
}

// algorithms is the closed set of supported algorithms. Adding an algorithm is one row here
// plus an entry in algorithmOrder.
var algorithms = map[Algorithm]algorithmSpec{
	AlgorithmRsaSha256:   {crypto.SHA256, KeyFamilyRSA},
	AlgorithmRsaSha512:   {crypto.SHA512, KeyFamilyRSA},
	AlgorithmEcdsaSha256: {crypto.SHA256, KeyFamilyEC},
	AlgorithmEcdsaSha512: {crypto.SHA512, KeyFamilyEC},
}

var algorithmOrder = []Algorithm{
	AlgorithmRsaSha256,
	AlgorithmRsaSha512,
	AlgorithmEcdsaSha256,
	AlgorithmEcdsaSha512,
}

// SupportedAlgorithms returns the supported wire names in a stable order.
func SupportedAlgorithms() []Algorithm {
	out := make([]Algorithm, len(algorithmOrder))
	copy(out, algorithmOrder)
	return out
}

// ResolveAlgorithm looks up a wire name such as "rsa-sha256". Names are case-sensitive.
func ResolveAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(name)
	if _, ok := algorithms[alg]; !ok {
		return "", &UnsupportedAlgorithmError{Name: name, Supported: SupportedAlgorithms()}
	}
	return alg, nil
}

// ParseAlgorithmName accepts either a wire name or the enum style name used by the
// command line tools (RSA_SHA256).
func ParseAlgorithmName(name string) (Algorithm, error) {
	if _, ok := algorithms[Algorithm(name)]; ok {
		return Algorithm(name), nil
	}
	normalised := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	if _, ok := algorithms[Algorithm(normalised)]; ok {
		return Algorithm(normalised), nil
	}
	return "", &UnsupportedAlgorithmError{Name: name, Supported: SupportedAlgorithms()}
}

func (a Algorithm) String() string { return string(a) }

// Hash returns the digest used before signing, or 0 for an unknown algorithm.
func (a Algorithm) Hash() crypto.Hash { return algorithms[a].hash }

// Family returns the key family the algorithm requires.
func (a Algorithm) Family() KeyFamily { return algorithms[a].family }

func (a Algorithm) valid() bool {
	_, ok := algorithms[a]
	return ok
}
