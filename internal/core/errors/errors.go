// Package errors defines custom error types for the certauth library
package errors

import (
	"fmt"
	"time"
)

// DomainError represents errors in the domain logic
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same domain error code. Wrapped
// copies produced by NewDomainError stay matchable against their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Common domain errors
var (
	ErrMalformedToken = &DomainError{
		Code:    "MALFORMED_TOKEN",
		Message: "token does not have the compact three-segment shape",
	}

	ErrMissingChainHeader = &DomainError{
		Code:    "MISSING_CHAIN_HEADER",
		Message: "token header does not carry a certificate chain",
	}

	ErrMalformedCertificate = &DomainError{
		Code:    "MALFORMED_CERTIFICATE",
		Message: "certificate bytes are not valid DER-encoded X.509",
	}

	ErrSignatureInvalid = &DomainError{
		Code:    "SIGNATURE_INVALID",
		Message: "token signature verification failed",
	}

	ErrNoTrustedIssuer = &DomainError{
		Code:    "NO_TRUSTED_ISSUER",
		Message: "no trust anchor matches the chain issuer",
	}

	ErrAccountExists = &DomainError{
		Code:    "ACCOUNT_EXISTS",
		Message: "an account is already bound to this identity",
	}

	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "no account is bound to this identity",
	}
)

// NewDomainError creates a new domain error with context
func NewDomainError(base *DomainError, err error) error {
	return &DomainError{
		Code:    base.Code,
		Message: base.Message,
		Err:     err,
	}
}

// CertificateExpiredError reports a leaf certificate whose validity window
// does not contain the evaluation time. Subject and window are carried for
// audit logging.
type CertificateExpiredError struct {
	Subject   string
	NotBefore time.Time
	NotAfter  time.Time
}

func (e *CertificateExpiredError) Error() string {
	return fmt.Sprintf("certificate %q is outside its validity window (not before %s, not after %s)",
		e.Subject, e.NotBefore.Format(time.RFC3339), e.NotAfter.Format(time.RFC3339))
}

// TrustPathError reports a failure to build a validated certification path
// from the leaf to a trust anchor.
type TrustPathError struct {
	Subject string
	Reason  string
	Err     error
}

func (e *TrustPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trust path validation failed for %q: %s: %v", e.Subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("trust path validation failed for %q: %s", e.Subject, e.Reason)
}

func (e *TrustPathError) Unwrap() error {
	return e.Err
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}
