package httpsig

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignTransport(t *testing.T) {
	_, ecKey := testKeys(t)

	var seen http.Header
	srv := httptest.NewServer(NewVerifyMiddleware(WithVerifyKey(testKeyID, &ecKey.PublicKey))(
		http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			seen = r.Header.Clone()
			rw.WriteHeader(http.StatusNoContent)
		}),
	))
	defer srv.Close()

	client := &http.Client{
		Transport: NewSignTransport(http.DefaultTransport,
			WithSignKey(testKeyID, AlgorithmEcdsaSha256, ecKey),
			WithSignBearerToken("access-token"),
		),
	}

	t.Run("post", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v2/payments?x=1", strings.NewReader(testPutBody))
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, req.Header.Get(AuthorizationHeader), "caller request must not be modified")
		assert.Equal(t, Digest([]byte(testPutBody)), seen.Get(DigestHeader))
		assert.True(t, strings.HasPrefix(seen.Get(AuthorizationHeader), "Bearer access-token;Signature "))
	})
	t.Run("get", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/api/v2/payments")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
	t.Run("signing failure", func(t *testing.T) {
		broken := &http.Client{Transport: NewSignTransport(nil)}

		_, err := broken.Get(srv.URL)
		assert.Error(t, err)
	})
}
