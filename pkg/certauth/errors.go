package certauth

import (
	"github.com/sufield/certauth/internal/core/errors"
)

// Error kinds surfaced by the engine. Match with errors.Is / errors.As.
var (
	// ErrMalformedToken: the token is not a three-segment compact token.
	ErrMalformedToken = errors.ErrMalformedToken

	// ErrMissingChainHeader: the header has no x5c list.
	ErrMissingChainHeader = errors.ErrMissingChainHeader

	// ErrMalformedCertificate: a chain entry is not valid X.509 DER.
	ErrMalformedCertificate = errors.ErrMalformedCertificate

	// ErrSignatureInvalid: cryptographic verification failed. Treated as
	// a security event; never downgraded.
	ErrSignatureInvalid = errors.ErrSignatureInvalid

	// ErrNoTrustedIssuer: no anchor subject matches the chain's issuer.
	ErrNoTrustedIssuer = errors.ErrNoTrustedIssuer

	// ErrAccountExists: the tenant already has an account for this
	// credential.
	ErrAccountExists = errors.ErrAccountExists

	// ErrAccountNotFound: no account is bound to this credential.
	ErrAccountNotFound = errors.ErrAccountNotFound
)

// CertificateExpiredError carries the offending subject and validity window.
type CertificateExpiredError = errors.CertificateExpiredError

// TrustPathError carries the subject and reason for a failed path build.
type TrustPathError = errors.TrustPathError
