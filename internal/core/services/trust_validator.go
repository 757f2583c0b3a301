package services

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/errors"
)

// TrustValidator determines whether a presented chain terminates at a
// trusted anchor. Revocation checking is disabled: the engine has no CRL or
// OCSP distribution (a documented policy choice, announced at construction
// so operators see it in the logs rather than discovering it later).
type TrustValidator struct {
	logger *slog.Logger
	clock  func() time.Time
}

// NewTrustValidator creates a validator using the system clock.
func NewTrustValidator(logger *slog.Logger) *TrustValidator {
	return NewTrustValidatorWithClock(logger, time.Now)
}

// NewTrustValidatorWithClock creates a validator with an injected clock.
func NewTrustValidatorWithClock(logger *slog.Logger, clock func() time.Time) *TrustValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}

	logger.Info("Trust validator initialized",
		"revocation_checking", "disabled",
		"reason", "no CRL/OCSP distribution in this deployment; tokens from revoked-but-unexpired certificates validate",
	)

	return &TrustValidator{
		logger: logger,
		clock:  clock,
	}
}

// ValidatePath checks that a valid, unexpired certification path exists
// from the chain's leaf to some anchor in the pool.
//
// Step 1: the leaf's validity window must contain the current time.
// Step 2: some anchor's subject must exactly match the issuer of the last
// chain entry the presenter supplied. Exact string comparison is the
// observed contract; structured name comparison would change which chains
// validate.
// Step 3: build and validate the certification path with standard X.509
// constraints (signature chaining, validity windows along the path).
func (v *TrustValidator) ValidatePath(chain *domain.CertificateChain, anchors *domain.TrustAnchorPool) error {
	leaf := chain.Leaf()
	now := v.clock()

	if now.Before(leaf.NotBefore) || now.After(leaf.NotAfter) {
		return &errors.CertificateExpiredError{
			Subject:   leaf.Subject.String(),
			NotBefore: leaf.NotBefore,
			NotAfter:  leaf.NotAfter,
		}
	}

	issuer := chain.TrustedMember().Issuer.String()
	if len(anchors.FindBySubject(issuer)) == 0 {
		return errors.NewDomainError(errors.ErrNoTrustedIssuer,
			fmt.Errorf("no anchor with subject %q among %d anchors", issuer, anchors.Count()))
	}

	intermediates := x509.NewCertPool()
	for _, cert := range chain.Intermediates() {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         anchors.CreateCertPool(),
		Intermediates: intermediates,
		CurrentTime:   now,
		// Token-signing leaves rarely carry TLS extended key usages;
		// path validation enforces chaining and windows, not EKU.
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}

	if _, err := leaf.Verify(opts); err != nil {
		return &errors.TrustPathError{
			Subject: leaf.Subject.String(),
			Reason:  "no validated path from leaf to a trust anchor",
			Err:     err,
		}
	}

	return nil
}
