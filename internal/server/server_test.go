package server

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpsig "github.com/offblocks/httpsig-draft"
)

const (
	testKeyID  = "90d1b2c4-3a5e-4f6a-8b7c-9d0e1f2a3b4c"
	testSecret = "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa"
)

type fixture struct {
	apiKey     *rsa.PrivateKey
	webhookKey *rsa.PrivateKey
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	apiKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	webhookKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s, err := New(Config{MaxBodyBytes: 1024, ShutdownTimeout: time.Second}, Keys{
		APIKeys:      map[string]crypto.PublicKey{testKeyID: &apiKey.PublicKey},
		SharedSecret: []byte(testSecret),
		WebhookKey:   &webhookKey.PublicKey,
	}, nil)
	require.NoError(t, err)

	return &fixture{apiKey: apiKey, webhookKey: webhookKey, handler: s.Handler()}
}

func (f *fixture) signed(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)

	signer := httpsig.NewSigner(httpsig.WithSignKey(testKeyID, httpsig.AlgorithmRsaSha256, f.apiKey))
	require.NoError(t, signer.SignRequest(req))
	return req
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_VerifiesSignedRequests(t *testing.T) {
	f := newFixture(t)

	t.Run("valid put", func(t *testing.T) {
		rec := f.serve(f.signed(t, http.MethodPut, "/api/v2/payments", `{"externalIdentifier":"abc"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Successfully verified digest against payload.")
		assert.Contains(t, rec.Body.String(), "Message signed correctly.")
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})
	t.Run("valid get", func(t *testing.T) {
		rec := f.serve(f.signed(t, http.MethodGet, "/api/v2/accounts?limit=1", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Message signed correctly.")
	})
	t.Run("tampered body", func(t *testing.T) {
		req := f.signed(t, http.MethodPost, "/api/v2/payments", `{"a":1}`)
		req.Body = io.NopCloser(strings.NewReader(`{"a":2}`))

		rec := f.serve(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Digest could not be verified against payload.")
	})
	t.Run("unsigned", func(t *testing.T) {
		rec := f.serve(httptest.NewRequest(http.MethodPost, "/api/v2/payments", strings.NewReader("{}")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("unknown key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{}"))
		require.NoError(t, httpsig.NewSigner(httpsig.WithSignKey("other", httpsig.AlgorithmRsaSha256, other)).SignRequest(req))

		rec := f.serve(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown key id")
	})
	t.Run("body too large", func(t *testing.T) {
		rec := f.serve(f.signed(t, http.MethodPost, "/x", strings.Repeat("a", 2048)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
	t.Run("non-clean path", func(t *testing.T) {
		rec := f.serve(f.signed(t, http.MethodPut, "/api//v2/./payments", `{"externalIdentifier":"abc"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Message signed correctly.")
	})
}

func TestServer_SharedSecretWebhook(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/v1", strings.NewReader("{}"))
	req.Header.Set(httpsig.WebhookSignatureHeader, httpsig.SharedSecretSignature([]byte("{}"), []byte(testSecret)))
	assert.Equal(t, http.StatusOK, f.serve(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/webhooks/v1", strings.NewReader("{}"))
	req.Header.Set(httpsig.WebhookSignatureHeader, "bogus")
	assert.Equal(t, http.StatusForbidden, f.serve(req).Code)

	assert.Equal(t, http.StatusMethodNotAllowed, f.serve(httptest.NewRequest(http.MethodGet, "/webhooks/v1", nil)).Code)

	large := strings.Repeat("a", 2048)
	req = httptest.NewRequest(http.MethodPost, "/webhooks/v1", strings.NewReader(large))
	req.Header.Set(httpsig.WebhookSignatureHeader, httpsig.SharedSecretSignature([]byte(large), []byte(testSecret)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, f.serve(req).Code)
}

func TestServer_PublicKeyWebhook(t *testing.T) {
	f := newFixture(t)
	payload := []byte(`{"event":"payment.created"}`)

	hashed := sha512.Sum512(payload)
	raw, err := rsa.SignPKCS1v15(rand.Reader, f.webhookKey, crypto.SHA512, hashed[:])
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/v2", strings.NewReader(string(payload)))
	req.Header.Set(httpsig.WebhookSignatureHeader, base64.StdEncoding.EncodeToString(raw))
	rec := f.serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook signature verified.")

	req = httptest.NewRequest(http.MethodPost, "/webhooks/v2", strings.NewReader(`{"event":"payment.failed"}`))
	req.Header.Set(httpsig.WebhookSignatureHeader, base64.StdEncoding.EncodeToString(raw))
	assert.Equal(t, http.StatusForbidden, f.serve(req).Code)

	assert.Equal(t, http.StatusMethodNotAllowed, f.serve(httptest.NewRequest(http.MethodGet, "/webhooks/v2", nil)).Code)
}

func TestServer_NoKeys(t *testing.T) {
	s, err := New(Config{MaxBodyBytes: 1024}, Keys{}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/v1", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_InvalidConfig(t *testing.T) {
	_, err := New(Config{}, Keys{}, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxSize)
}

func TestServer_Serve(t *testing.T) {
	s, err := New(Config{MaxBodyBytes: 1024, ShutdownTimeout: time.Second}, Keys{SharedSecret: []byte(testSecret)}, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	req, err := http.NewRequest(http.MethodPost, "http://"+ln.Addr().String()+"/webhooks/v1", strings.NewReader("{}"))
	require.NoError(t, err)
	req.Header.Set(httpsig.WebhookSignatureHeader, httpsig.SharedSecretSignature([]byte("{}"), []byte(testSecret)))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
