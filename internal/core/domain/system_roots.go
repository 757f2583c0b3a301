package domain

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
)

// systemRootBundles lists the canonical CA bundle locations, in the same
// order the Go runtime probes them. The first readable bundle wins.
var systemRootBundles = []string{
	"/etc/ssl/certs/ca-certificates.crt", // Debian/Ubuntu
	"/etc/pki/tls/certs/ca-bundle.crt",   // Fedora/RHEL
	"/etc/ssl/ca-bundle.pem",             // OpenSUSE
	"/etc/pki/tls/cacert.pem",            // OpenELEC
	"/etc/ssl/cert.pem",                  // Alpine
}

// systemRootCertificates enumerates the platform's default trusted roots.
// Anchor discovery matches issuers against anchor subjects by name, so the
// pool needs the certificates themselves, not an opaque x509.CertPool.
// Individual entries that fail to parse are skipped with a warning rather
// than poisoning the whole pool; distributions occasionally ship roots Go
// cannot parse.
func systemRootCertificates() ([]*x509.Certificate, error) {
	for _, path := range systemRootBundles {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read root bundle %s: %w", path, err)
		}

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
				slog.Warn("Skipping unparsable system root certificate",
					"path", path,
					"error", err,
				)
				continue
			}
			certs = append(certs, cert)
		}

		if len(certs) > 0 {
			return certs, nil
		}
	}

	return nil, fmt.Errorf("no system root bundle found")
}
