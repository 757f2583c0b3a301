package services_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/sufield/certauth/internal/core/domain"
)

func newSerial(t *testing.T) *big.Int {
	t.Helper()
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)
	return serial
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

// createCA mints a self-signed CA certificate and its key.
func createCA(t *testing.T, commonName string) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	key := newKey(t)
	template := &x509.Certificate{
		SerialNumber:          newSerial(t),
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"certauth test"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert, key
}

// createIntermediateCA mints a CA certificate signed by the given parent.
func createIntermediateCA(t *testing.T, commonName string, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	key := newKey(t)
	template := &x509.Certificate{
		SerialNumber:          newSerial(t),
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"certauth test"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert, key
}

// createLeafAt mints a leaf with an explicit validity window, signed by the
// given issuer. Pass a nil key to generate a fresh one.
func createLeafAt(t *testing.T, commonName string, issuer *x509.Certificate, issuerKey *ecdsa.PrivateKey, key *ecdsa.PrivateKey, notBefore, notAfter time.Time) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	if key == nil {
		key = newKey(t)
	}
	template := &x509.Certificate{
		SerialNumber:          newSerial(t),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, issuer, &key.PublicKey, issuerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert, key
}

// createLeaf mints a leaf valid from an hour ago to twelve hours from now.
func createLeaf(t *testing.T, commonName string, issuer *x509.Certificate, issuerKey *ecdsa.PrivateKey, key *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	return createLeafAt(t, commonName, issuer, issuerKey, key,
		time.Now().Add(-time.Hour), time.Now().Add(12*time.Hour))
}

// signToken produces a compact ES256 token whose header carries the given
// chain in x5c order (leaf first).
func signToken(t *testing.T, key *ecdsa.PrivateKey, chain []*x509.Certificate, claims jwt.MapClaims) string {
	t.Helper()

	if claims == nil {
		claims = jwt.MapClaims{"sub": "holder"}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	entries := make([]string, len(chain))
	for i, cert := range chain {
		entries[i] = base64.StdEncoding.EncodeToString(cert.Raw)
	}
	token.Header[domain.ChainHeaderField] = entries

	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

// mustChain wraps certificates in a CertificateChain.
func mustChain(t *testing.T, certs ...*x509.Certificate) *domain.CertificateChain {
	t.Helper()
	chain, err := domain.NewCertificateChain(certs)
	require.NoError(t, err)
	return chain
}

// mustPool builds a TrustAnchorPool from configured CAs.
func mustPool(t *testing.T, cas ...*x509.Certificate) *domain.TrustAnchorPool {
	t.Helper()
	pool, err := domain.NewTrustAnchorPoolFromCAs(cas)
	require.NoError(t, err)
	return pool
}
