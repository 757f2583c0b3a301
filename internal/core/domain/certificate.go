// Package domain holds the certificate, token, and identity value objects
// for chain-based passwordless authentication.
package domain

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/sufield/certauth/internal/core/errors"
)

// pemCertificateBlock is the PEM type label for X.509 certificates.
const pemCertificateBlock = "CERTIFICATE"

// DecodeCertificate parses a single DER-encoded X.509 certificate.
func DecodeCertificate(der []byte) (*x509.Certificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, err)
	}
	return cert, nil
}

// DecodeCertificateBundle parses one or more certificates from a blob.
// PEM bundles and raw concatenated DER are both accepted; order is preserved.
func DecodeCertificateBundle(data []byte) ([]*x509.Certificate, error) {
	if len(data) == 0 {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, fmt.Errorf("empty input"))
	}

	if bytes.Contains(data, []byte("-----BEGIN ")) {
		return decodePEMBundle(data)
	}

	// x509.ParseCertificates handles concatenated DER.
	certs, err := x509.ParseCertificates(data)
	if err != nil {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, err)
	}
	if len(certs) == 0 {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, fmt.Errorf("no certificates found"))
	}
	return certs, nil
}

func decodePEMBundle(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != pemCertificateBlock {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.NewDomainError(errors.ErrMalformedCertificate, err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, fmt.Errorf("no certificate blocks in PEM input"))
	}
	return certs, nil
}

// DecodeBase64Certificate parses a base64-encoded DER certificate string,
// as carried by the entries of an x5c token header (RFC 7515 section 4.1.6
// uses standard encoding; unpadded input is tolerated).
func DecodeBase64Certificate(s string) (*x509.Certificate, error) {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		der, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return nil, errors.NewDomainError(errors.ErrMalformedCertificate, err)
		}
	}
	return DecodeCertificate(der)
}

// CertificateToPEM renders a certificate in the canonical delimited text
// form. The round trip through PEMToDER is lossless.
func CertificateToPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemCertificateBlock,
		Bytes: cert.Raw,
	})
}

// PEMToDER extracts the DER bytes from a single PEM certificate block.
func PEMToDER(pemBytes []byte) ([]byte, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != pemCertificateBlock {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, fmt.Errorf("input is not a PEM certificate block"))
	}
	return block.Bytes, nil
}

// CertificateChain is an ordered, non-empty sequence of certificates as
// presented by a token holder. Index 0 is the leaf; the last entry is the
// member nearest the root that the presenter supplied. Issuer/subject
// adjacency is not enforced here: path validation re-derives the
// relationship cryptographically.
type CertificateChain struct {
	certs []*x509.Certificate
}

// NewCertificateChain creates a chain from ordered certificates.
func NewCertificateChain(certs []*x509.Certificate) (*CertificateChain, error) {
	if len(certs) == 0 {
		return nil, errors.NewDomainError(errors.ErrMalformedCertificate, fmt.Errorf("certificate chain cannot be empty"))
	}
	for i, cert := range certs {
		if cert == nil {
			return nil, errors.NewDomainError(errors.ErrMalformedCertificate, fmt.Errorf("certificate at index %d is nil", i))
		}
	}
	return &CertificateChain{certs: certs}, nil
}

// Leaf returns the holder's certificate.
func (c *CertificateChain) Leaf() *x509.Certificate {
	return c.certs[0]
}

// Intermediates returns every certificate after the leaf, in presented order.
func (c *CertificateChain) Intermediates() []*x509.Certificate {
	return c.certs[1:]
}

// TrustedMember returns the last chain entry the presenter supplied, the
// certificate whose issuer must match a trust anchor's subject.
func (c *CertificateChain) TrustedMember() *x509.Certificate {
	return c.certs[len(c.certs)-1]
}

// Certificates returns the full ordered chain.
func (c *CertificateChain) Certificates() []*x509.Certificate {
	return c.certs
}

// Len returns the number of certificates in the chain.
func (c *CertificateChain) Len() int {
	return len(c.certs)
}
