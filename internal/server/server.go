// Package server is a demo receiving service: it verifies signed API requests and
// webhook deliveries and answers with the verification diagnostics.
package server

import (
	"context"
	"crypto"
	"crypto/rsa"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	httpsig "github.com/offblocks/httpsig-draft"
)

type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// Keys holds the verification material. Any field may be empty, in which case the
// matching routes are not registered.
type Keys struct {
	// APIKeys maps key ids to public keys for signed API requests.
	APIKeys map[string]crypto.PublicKey
	// DefaultAPIKey is used for requests whose key id is absent or unknown.
	DefaultAPIKey crypto.PublicKey
	// SharedSecret verifies v1 webhooks.
	SharedSecret []byte
	// WebhookKey verifies v2 webhooks.
	WebhookKey *rsa.PublicKey
}

type Server struct {
	cfg    Config
	logger *zap.Logger
	router *mux.Router
}

func New(cfg Config, keys Keys, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sizeLimit, err := RequestSizeLimitMiddleware(cfg.MaxBodyBytes)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, logger: logger, router: mux.NewRouter().SkipClean(true)}
	s.router.Use(RequestIDMiddleware(), AccessLogMiddleware(logger), RecoveryMiddleware(logger), sizeLimit)

	if len(keys.SharedSecret) > 0 {
		v1 := httpsig.NewWebhookMiddleware(keys.SharedSecret)
		s.router.Handle("/webhooks/v1", v1(webhookHandler(logger, "v1")))
	}
	if keys.WebhookKey != nil {
		v2 := publicKeyWebhookMiddleware(keys.WebhookKey)
		s.router.Handle("/webhooks/v2", v2(webhookHandler(logger, "v2")))
	}

	if len(keys.APIKeys) > 0 || keys.DefaultAPIKey != nil {
		v := httpsig.NewVerifier(
			httpsig.WithLogger(logger.Named("verifier")),
			httpsig.WithVerifyingKeyResolver(keyMap(keys.APIKeys)),
			httpsig.WithVerifyDefaultKey(keys.DefaultAPIKey),
		)
		s.router.PathPrefix("/").
			Methods(http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete).
			Handler(verifyHandler(v, logger))
	}

	return s, nil
}

type keyMap map[string]crypto.PublicKey

func (m keyMap) Resolve(keyID string, _ httpsig.Algorithm) (crypto.PublicKey, error) {
	if pub, ok := m[keyID]; ok {
		return pub, nil
	}
	return nil, httpsig.ErrUnknownKey
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.cfg.Address)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	return nil
}
