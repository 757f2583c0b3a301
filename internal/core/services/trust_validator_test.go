package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/certauth/internal/core/errors"
	"github.com/sufield/certauth/internal/core/services"
)

func TestTrustValidatorValidatePath(t *testing.T) {
	t.Parallel()

	t.Run("leaf signed directly by anchor", func(t *testing.T) {
		t.Parallel()
		ca, caKey := createCA(t, "Test Root")
		leaf, _ := createLeaf(t, "holder", ca, caKey, nil)

		validator := services.NewTrustValidator(nil)
		err := validator.ValidatePath(mustChain(t, leaf, ca), mustPool(t, ca))
		assert.NoError(t, err)
	})

	t.Run("chain through intermediate", func(t *testing.T) {
		t.Parallel()
		root, rootKey := createCA(t, "Test Root")
		inter, interKey := createIntermediateCA(t, "Test Intermediate", root, rootKey)
		leaf, _ := createLeaf(t, "holder", inter, interKey, nil)

		validator := services.NewTrustValidator(nil)
		err := validator.ValidatePath(mustChain(t, leaf, inter), mustPool(t, root))
		assert.NoError(t, err)
	})

	t.Run("expired leaf", func(t *testing.T) {
		t.Parallel()
		ca, caKey := createCA(t, "Test Root")
		leaf, _ := createLeaf(t, "holder", ca, caKey, nil)

		// An injected clock past NotAfter makes an otherwise valid chain
		// fail the window check before any path building runs.
		future := leaf.NotAfter.Add(time.Second)
		validator := services.NewTrustValidatorWithClock(nil, func() time.Time { return future })

		err := validator.ValidatePath(mustChain(t, leaf, ca), mustPool(t, ca))
		var expired *errors.CertificateExpiredError
		require.ErrorAs(t, err, &expired)
		assert.Equal(t, leaf.Subject.String(), expired.Subject)
	})

	t.Run("not yet valid leaf", func(t *testing.T) {
		t.Parallel()
		ca, caKey := createCA(t, "Test Root")
		leaf, _ := createLeaf(t, "holder", ca, caKey, nil)

		past := leaf.NotBefore.Add(-time.Second)
		validator := services.NewTrustValidatorWithClock(nil, func() time.Time { return past })

		err := validator.ValidatePath(mustChain(t, leaf, ca), mustPool(t, ca))
		var expired *errors.CertificateExpiredError
		assert.ErrorAs(t, err, &expired)
	})

	t.Run("one second before NotAfter still validates", func(t *testing.T) {
		t.Parallel()
		ca, caKey := createCA(t, "Test Root")
		leaf, _ := createLeaf(t, "holder", ca, caKey, nil)

		edge := leaf.NotAfter.Add(-time.Second)
		validator := services.NewTrustValidatorWithClock(nil, func() time.Time { return edge })

		assert.NoError(t, validator.ValidatePath(mustChain(t, leaf, ca), mustPool(t, ca)))
	})

	t.Run("issuer not among anchors", func(t *testing.T) {
		t.Parallel()
		ca, caKey := createCA(t, "Test Root")
		other, _ := createCA(t, "Unrelated Root")
		leaf, _ := createLeaf(t, "holder", ca, caKey, nil)

		validator := services.NewTrustValidator(nil)
		err := validator.ValidatePath(mustChain(t, leaf, ca), mustPool(t, other))
		assert.ErrorIs(t, err, errors.ErrNoTrustedIssuer)
	})

	t.Run("issuer subject matches but signature does not chain", func(t *testing.T) {
		t.Parallel()
		// Two CAs with the same subject but different keys. The anchor
		// lookup passes on the name; path validation must still fail on
		// the signature.
		realCA, _ := createCA(t, "Test Root")
		impostorCA, impostorKey := createCA(t, "Test Root")
		leaf, _ := createLeaf(t, "holder", impostorCA, impostorKey, nil)

		validator := services.NewTrustValidator(nil)
		err := validator.ValidatePath(mustChain(t, leaf, impostorCA), mustPool(t, realCA))

		// The impostor CA is itself last in the chain, so its own issuer
		// name matches an anchor subject; only step 3 catches the forgery.
		var pathErr *errors.TrustPathError
		assert.ErrorAs(t, err, &pathErr)
	})

	t.Run("missing intermediate breaks the path", func(t *testing.T) {
		t.Parallel()
		root, rootKey := createCA(t, "Test Root")
		inter, interKey := createIntermediateCA(t, "Test Intermediate", root, rootKey)
		leaf, _ := createLeaf(t, "holder", inter, interKey, nil)

		validator := services.NewTrustValidator(nil)
		// Leaf alone: its issuer is the intermediate, which is neither
		// supplied nor an anchor.
		err := validator.ValidatePath(mustChain(t, leaf), mustPool(t, root))
		assert.ErrorIs(t, err, errors.ErrNoTrustedIssuer)
	})
}
