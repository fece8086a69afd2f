package httpsig

import (
	"crypto"
	"strings"
	"time"

	"go.uber.org/zap"
)

type signOption interface {
	configureSign(s *signer)
}

type verifyOption interface {
	configureVerify(v *verifier)
}

type digestOption interface {
	configureDigest(d *digestor)
}

type signOrVerifyOption interface {
	signOption
	verifyOption
}

type sharedOption interface {
	signOption
	verifyOption
	digestOption
}

type optImpl struct {
	s func(s *signer)
	v func(v *verifier)
	d func(d *digestor)
}

func (o *optImpl) configureSign(s *signer)     { o.s(s) }
func (o *optImpl) configureVerify(v *verifier) { o.v(v) }
func (o *optImpl) configureDigest(d *digestor) { o.d(d) }

// WithSignKey sets the key used for signing, the algorithm to sign with and the key id
// advertised in the Authorization header.
func WithSignKey(keyID string, alg Algorithm, key crypto.Signer) signOption {
	return &optImpl{
		s: func(s *signer) { s.config.Key = &signingKey{Signer: key, keyID: keyID, alg: alg} },
	}
}

// WithSignHeaders sets the header names to be included in signing, in signing order.
// default: (request-target) Date Digest
func WithSignHeaders(headers ...string) signOption {
	return &optImpl{
		s: func(s *signer) { s.config.Headers = headers },
	}
}

// WithSignBearerToken prefixes the Authorization header with a bearer access token.
// default: none
func WithSignBearerToken(token string) signOption {
	return &optImpl{
		s: func(s *signer) { s.config.BearerToken = token },
	}
}

// WithSignDate fixes the Date header value used when a message has none.
// default: time.Now()
func WithSignDate(t time.Time) signOption {
	return &optImpl{
		s: func(s *signer) { s.clock = fixedClock{t} },
	}
}

// WithLogger sets the logger used for signing and verification diagnostics.
// default: no-op logger
func WithLogger(logger *zap.Logger) signOrVerifyOption {
	return &optImpl{
		s: func(s *signer) { s.config.Logger = logger },
		v: func(v *verifier) { v.config.Logger = logger },
	}
}

// WithVerifyKey adds a public key for the given key id.
func WithVerifyKey(keyID string, pub crypto.PublicKey) verifyOption {
	return &optImpl{
		v: func(v *verifier) { v.config.Keys[keyID] = pub },
	}
}

// WithVerifyDefaultKey sets the key used when the key id is unknown or absent.
func WithVerifyDefaultKey(pub crypto.PublicKey) verifyOption {
	return &optImpl{
		v: func(v *verifier) { v.config.DefaultKey = pub },
	}
}

// WithVerifyingKeyResolver sets the resolver to use for verifying keys.
func WithVerifyingKeyResolver(resolver VerifyingKeyResolver) verifyOption {
	return &optImpl{
		v: func(v *verifier) { v.config.KeyResolver = resolver },
	}
}

// WithVerifyRequiredHeaders sets the header names that must appear in the signed list.
// default: date, digest, (request-target)
func WithVerifyRequiredHeaders(headers ...string) verifyOption {
	return &optImpl{
		v: func(v *verifier) { v.config.RequiredHeaders = headers },
	}
}

// WithNoDigestMethods sets the methods whose requests carry no body digest.
// default: GET, HEAD
func WithNoDigestMethods(methods ...string) sharedOption {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}
	return &optImpl{
		s: func(s *signer) { s.config.NoDigestMethods = upper },
		v: func(v *verifier) { v.config.NoDigestMethods = upper },
		d: func(d *digestor) { d.config.NoDigestMethods = upper },
	}
}
