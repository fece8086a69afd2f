package httpsig

import "net/http"

// NewSignTransport returns a new client transport that wraps the provided transport with
// Date, Digest and Authorization headers.
//
// Use the `WithSign*` option funcs to configure the signing key, key id and algorithm, and
// optionally a bearer access token. Requests are cloned before signing so the caller's
// request is left untouched.
func NewSignTransport(transport http.RoundTripper, opts ...signOption) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	s := NewSigner(opts...)

	return rt(func(r *http.Request) (*http.Response, error) {
		req := r.Clone(r.Context())
		if err := s.SignRequest(req); err != nil {
			return nil, err
		}
		return transport.RoundTrip(req)
	})
}

type rt func(*http.Request) (*http.Response, error)

func (r rt) RoundTrip(req *http.Request) (*http.Response, error) { return r(req) }
