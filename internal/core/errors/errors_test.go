package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/certauth/internal/core/errors"
)

func TestDomainErrorIs(t *testing.T) {
	t.Parallel()

	t.Run("sentinel matches itself", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, errors.ErrMalformedToken, errors.ErrMalformedToken)
	})

	t.Run("wrapped copy matches sentinel", func(t *testing.T) {
		t.Parallel()
		err := errors.NewDomainError(errors.ErrSignatureInvalid, stderrors.New("bad curve point"))
		assert.ErrorIs(t, err, errors.ErrSignatureInvalid)
		assert.NotErrorIs(t, err, errors.ErrMalformedToken)
	})

	t.Run("fmt wrapping preserved", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("register: %w", errors.NewDomainError(errors.ErrAccountExists, nil))
		assert.ErrorIs(t, err, errors.ErrAccountExists)
	})

	t.Run("unwrap exposes cause", func(t *testing.T) {
		t.Parallel()
		cause := stderrors.New("asn1 trailing data")
		err := errors.NewDomainError(errors.ErrMalformedCertificate, cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestDomainErrorMessage(t *testing.T) {
	t.Parallel()

	err := errors.NewDomainError(errors.ErrNoTrustedIssuer, stderrors.New("0 anchors"))
	assert.Contains(t, err.Error(), "NO_TRUSTED_ISSUER")
	assert.Contains(t, err.Error(), "0 anchors")

	assert.Contains(t, errors.ErrAccountNotFound.Error(), "ACCOUNT_NOT_FOUND")
}

func TestCertificateExpiredError(t *testing.T) {
	t.Parallel()

	err := &errors.CertificateExpiredError{
		Subject:   "CN=holder",
		NotBefore: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.Contains(t, err.Error(), "CN=holder")
	assert.Contains(t, err.Error(), "2026-02-01")

	var target *errors.CertificateExpiredError
	require.ErrorAs(t, fmt.Errorf("validate: %w", err), &target)
	assert.Equal(t, "CN=holder", target.Subject)
}

func TestTrustPathError(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("x509: certificate signed by unknown authority")
	err := &errors.TrustPathError{
		Subject: "CN=holder",
		Reason:  "no validated path from leaf to a trust anchor",
		Err:     cause,
	}

	assert.Contains(t, err.Error(), "CN=holder")
	assert.ErrorIs(t, err, cause)
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := &errors.ValidationError{
		Field:   "tenant",
		Value:   "",
		Message: "tenant cannot be empty",
	}
	assert.Contains(t, err.Error(), "tenant")
	assert.Contains(t, err.Error(), "cannot be empty")
}
