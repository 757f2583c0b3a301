// Package services provides the core authentication business logic.
package services

import (
	"crypto/x509"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sufield/certauth/internal/core/errors"
)

// asymmetricMethods are the signing algorithms accepted for chain-bound
// tokens. HMAC algorithms and "none" are excluded: accepting them would let
// a presenter use the leaf public key as a shared secret (algorithm
// confusion).
var asymmetricMethods = []string{
	"RS256", "RS384", "RS512",
	"PS256", "PS384", "PS512",
	"ES256", "ES384", "ES512",
	"EdDSA",
}

// SignatureVerifier verifies a compact token's signature against a leaf
// public key. It fails closed: every decoding, algorithm, or cryptographic
// failure yields ErrSignatureInvalid.
type SignatureVerifier struct {
	leeway time.Duration
	logger *slog.Logger
}

// NewSignatureVerifier creates a verifier with the given clock-skew leeway
// for the token's registered time claims.
func NewSignatureVerifier(leeway time.Duration, logger *slog.Logger) *SignatureVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignatureVerifier{
		leeway: leeway,
		logger: logger,
	}
}

// Verify checks the token's signature using the leaf certificate's public
// key and the algorithm declared in the header. The library verifies over
// the original header and payload segments, so the signing input is
// byte-exact; nothing is re-serialized.
func (v *SignatureVerifier) Verify(token string, leaf *x509.Certificate) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods(asymmetricMethods),
		jwt.WithLeeway(v.leeway),
	)

	_, err := parser.Parse(token, func(*jwt.Token) (interface{}, error) {
		return leaf.PublicKey, nil
	})
	if err != nil {
		// Signature failures are security events: a well-formed chain
		// with a bad signature is indistinguishable from forgery.
		v.logger.Warn("Token signature verification failed",
			"subject", leaf.Subject.String(),
			"error", err,
		)
		return errors.NewDomainError(errors.ErrSignatureInvalid, err)
	}

	return nil
}
