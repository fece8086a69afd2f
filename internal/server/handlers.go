package server

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	httpsig "github.com/offblocks/httpsig-draft"
)

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body+"\n")
}

// readBody reads the request body, answering 413 when the size limit was hit.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Request body too large")
		} else {
			writeText(w, http.StatusBadRequest, "Unable to read request body")
		}
		return nil, false
	}
	return body, true
}

// verifyHandler runs every check against the request and answers with the diagnostics:
// 200 when all checks pass, 401 when any fails and 400 when verification cannot run.
func verifyHandler(v *httpsig.Verifier, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := v.VerifyRequest(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeText(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			logger.Info("verification aborted",
				zap.Error(err),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			)
			lines := []string{err.Error()}
			if result != nil {
				lines = append(result.Lines(), lines...)
			}
			writeText(w, http.StatusBadRequest, strings.Join(lines, "\n"))
			return
		}

		status := http.StatusOK
		if !result.Valid() {
			status = http.StatusUnauthorized
		}
		logger.Info("verified request",
			zap.String("keyid", result.KeyID),
			zap.Bool("valid", result.Valid()),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
		writeText(w, status, result.String())
	}
}

// webhookHandler acknowledges a webhook whose signature was already checked.
func webhookHandler(logger *zap.Logger, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		logger.Info("webhook received",
			zap.String("version", version),
			zap.Int("bytes", len(body)),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
		writeText(w, http.StatusOK, "Webhook signature verified.")
	}
}

// publicKeyWebhookMiddleware checks X-Hook-Signature as an RSA SHA-512 signature of the body.
func publicKeyWebhookMiddleware(pub *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				writeText(w, http.StatusMethodNotAllowed, "Only POST is supported")
				return
			}

			body, ok := readBody(w, r)
			if !ok {
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			valid, err := httpsig.IsValidWebhookSignature(pub, r.Header.Get(httpsig.WebhookSignatureHeader), body)
			if err != nil || !valid {
				writeText(w, http.StatusForbidden, "Bad webhook signature")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
