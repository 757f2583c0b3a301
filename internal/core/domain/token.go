package domain

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sufield/certauth/internal/core/errors"
)

// ChainHeaderField is the protected-header field carrying the ordered
// certificate chain, per RFC 7515 section 4.1.6.
const ChainHeaderField = "x5c"

// tokenSegments is the segment count of a compact serialized token
// (header.payload.signature).
const tokenSegments = 3

// SplitToken splits a compact token into its three base64url segments.
// The segments are returned verbatim so callers can reconstruct the signing
// input byte-exactly.
func SplitToken(token string) (header, payload, signature string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != tokenSegments {
		return "", "", "", errors.NewDomainError(errors.ErrMalformedToken,
			fmt.Errorf("expected %d segments, got %d", tokenSegments, len(parts)))
	}
	for i, part := range parts {
		if part == "" {
			return "", "", "", errors.NewDomainError(errors.ErrMalformedToken,
				fmt.Errorf("segment %d is empty", i))
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// ExtractChain parses the token's protected header and decodes the ordered
// certificate chain from the x5c field. Only the header segment is
// inspected; the payload and signature are left untouched.
func ExtractChain(token string) (*CertificateChain, error) {
	headerSeg, _, _, err := SplitToken(token)
	if err != nil {
		return nil, err
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(headerSeg)
	if err != nil {
		return nil, errors.NewDomainError(errors.ErrMalformedToken, fmt.Errorf("header segment is not base64url: %w", err))
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, errors.NewDomainError(errors.ErrMalformedToken, fmt.Errorf("header is not a JSON object: %w", err))
	}

	raw, ok := header[ChainHeaderField]
	if !ok {
		return nil, errors.NewDomainError(errors.ErrMissingChainHeader,
			fmt.Errorf("header field %q is absent", ChainHeaderField))
	}

	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.NewDomainError(errors.ErrMissingChainHeader,
			fmt.Errorf("header field %q is not a list of strings: %w", ChainHeaderField, err))
	}
	if len(entries) == 0 {
		return nil, errors.NewDomainError(errors.ErrMissingChainHeader,
			fmt.Errorf("header field %q is empty", ChainHeaderField))
	}

	certs := make([]*x509.Certificate, 0, len(entries))
	for i, entry := range entries {
		cert, err := DecodeBase64Certificate(entry)
		if err != nil {
			return nil, errors.NewDomainError(errors.ErrMalformedCertificate,
				fmt.Errorf("%s[%d]: %w", ChainHeaderField, i, err))
		}
		certs = append(certs, cert)
	}

	return NewCertificateChain(certs)
}
