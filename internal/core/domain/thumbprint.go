package domain

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
)

// Identity is the stable correlation key between a presented credential and
// a stored account. It is derived from public-key material only, so two
// certificates sharing a key yield the same Identity.
type Identity string

// String returns the thumbprint value.
func (i Identity) String() string {
	return string(i)
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == ""
}

// Thumbprint derives an Identity from the certificate's public key. The
// digest is SHA-256 over the DER SubjectPublicKeyInfo, the canonical
// encoding of the key, rendered as unpadded base64url. No salts and no
// time-dependent input: the output is stable across processes and machines.
func Thumbprint(cert *x509.Certificate) Identity {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return Identity(base64.RawURLEncoding.EncodeToString(sum[:]))
}
