package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/errors"
	"github.com/sufield/certauth/internal/core/ports"
)

// AuthService composes chain extraction, signature verification, trust path
// validation, and identity derivation into register/authenticate operations
// against an external account store.
//
// Validation is pure and stateless; concurrent calls share only the
// read-only anchor pool snapshot loaded at the start of each call. The
// check-then-act window on registration is closed by the account store's
// unique constraint, not by locking here.
type AuthService struct {
	anchors  *domain.AnchorPoolHandle
	store    ports.AccountStore
	verifier *SignatureVerifier
	trust    *TrustValidator
	metrics  MetricsReporter
	logger   *slog.Logger
}

// AuthServiceOption customizes an AuthService.
type AuthServiceOption func(*AuthService)

// WithMetrics sets the metrics reporter.
func WithMetrics(reporter MetricsReporter) AuthServiceOption {
	return func(s *AuthService) {
		if reporter != nil {
			s.metrics = reporter
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AuthServiceOption {
	return func(s *AuthService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClockSkew sets the leeway for token time-claim validation.
func WithClockSkew(leeway time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		s.verifier = NewSignatureVerifier(leeway, s.logger)
	}
}

// WithTrustValidator replaces the trust validator (tests inject a clock).
func WithTrustValidator(v *TrustValidator) AuthServiceOption {
	return func(s *AuthService) {
		if v != nil {
			s.trust = v
		}
	}
}

// NewAuthService creates the orchestrator. The anchor handle and account
// store are required collaborators.
func NewAuthService(anchors *domain.AnchorPoolHandle, store ports.AccountStore, opts ...AuthServiceOption) (*AuthService, error) {
	if anchors == nil {
		return nil, &errors.ValidationError{
			Field:   "anchors",
			Value:   nil,
			Message: "anchor pool handle cannot be nil",
		}
	}
	if store == nil {
		return nil, &errors.ValidationError{
			Field:   "store",
			Value:   nil,
			Message: "account store cannot be nil",
		}
	}

	s := &AuthService{
		anchors: anchors,
		store:   store,
		metrics: noopMetrics{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.verifier == nil {
		s.verifier = NewSignatureVerifier(ports.DefaultClockSkew, s.logger)
	}
	if s.trust == nil {
		s.trust = NewTrustValidator(s.logger)
	}

	return s, nil
}

// Validate runs the full validation pipeline on a token: chain extraction,
// signature verification against the leaf key, trust path validation
// against the current anchor snapshot, and identity derivation. Any failure
// short-circuits with the originating error; nothing is recorded.
func (s *AuthService) Validate(ctx context.Context, token string) (domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chain, err := domain.ExtractChain(token)
	if err != nil {
		s.metrics.RecordValidation(validationOutcome(err))
		return "", err
	}

	leaf := chain.Leaf()

	if err := s.verifier.Verify(token, leaf); err != nil {
		s.metrics.RecordValidation(validationOutcome(err))
		return "", err
	}

	if err := s.trust.ValidatePath(chain, s.anchors.Load()); err != nil {
		s.metrics.RecordValidation(validationOutcome(err))
		s.logger.Warn("Trust validation failed",
			"subject", leaf.Subject.String(),
			"error", err,
		)
		return "", err
	}

	identity := domain.Thumbprint(leaf)
	s.metrics.RecordValidation("ok")
	return identity, nil
}

// Register validates the token and creates a new account bound to the
// derived identity. Fails with ErrAccountExists if the tenant already has
// an account for this identity. The pre-insert existence check is an
// optimization; the store's unique constraint decides races.
func (s *AuthService) Register(ctx context.Context, tenant, token string) (ports.AccountID, error) {
	if tenant == "" {
		return "", &errors.ValidationError{
			Field:   "tenant",
			Value:   tenant,
			Message: "tenant cannot be empty",
		}
	}

	identity, err := s.Validate(ctx, token)
	if err != nil {
		s.metrics.RecordRegistration(false)
		return "", err
	}

	if _, err := s.store.FindByIdentity(ctx, tenant, identity); err == nil {
		s.metrics.RecordRegistration(false)
		return "", errors.ErrAccountExists
	} else if !stderrors.Is(err, ports.ErrAccountNotFound) {
		s.metrics.RecordRegistration(false)
		return "", err
	}

	accountID, err := s.store.CreateAccount(ctx, tenant, identity)
	if err != nil {
		s.metrics.RecordRegistration(false)
		return "", err
	}

	s.metrics.RecordRegistration(true)
	s.logger.Info("Account registered",
		"tenant", tenant,
		"account_id", accountID.String(),
	)
	return accountID, nil
}

// Authenticate validates the token and resolves the account bound to the
// derived identity. Fails with ErrAccountNotFound if no binding exists.
func (s *AuthService) Authenticate(ctx context.Context, tenant, token string) (ports.AccountID, error) {
	if tenant == "" {
		return "", &errors.ValidationError{
			Field:   "tenant",
			Value:   tenant,
			Message: "tenant cannot be empty",
		}
	}

	identity, err := s.Validate(ctx, token)
	if err != nil {
		s.metrics.RecordAuthentication(false)
		return "", err
	}

	accountID, err := s.store.FindByIdentity(ctx, tenant, identity)
	if err != nil {
		s.metrics.RecordAuthentication(false)
		return "", err
	}

	s.metrics.RecordAuthentication(true)
	return accountID, nil
}

// SwapAnchors atomically replaces the trust anchor pool. In-flight
// validations keep the snapshot they loaded.
func (s *AuthService) SwapAnchors(pool *domain.TrustAnchorPool) error {
	return s.anchors.Swap(pool)
}

// validationOutcome maps a pipeline error to a metrics outcome label.
func validationOutcome(err error) string {
	var expired *errors.CertificateExpiredError
	if stderrors.As(err, &expired) {
		return "certificate_expired"
	}
	var pathErr *errors.TrustPathError
	if stderrors.As(err, &pathErr) {
		return "trust_path_invalid"
	}
	switch {
	case stderrors.Is(err, errors.ErrMalformedToken):
		return "malformed_token"
	case stderrors.Is(err, errors.ErrMissingChainHeader):
		return "missing_chain"
	case stderrors.Is(err, errors.ErrMalformedCertificate):
		return "malformed_certificate"
	case stderrors.Is(err, errors.ErrSignatureInvalid):
		return "signature_invalid"
	case stderrors.Is(err, errors.ErrNoTrustedIssuer):
		return "no_trusted_issuer"
	default:
		return "error"
	}
}
