package domain

import (
	"crypto/x509"
	"fmt"
	"sync/atomic"
)

// TrustAnchorPool is an immutable set of certificates trusted a priori as
// verification roots. It is formed as the union of the host platform's
// default root store and caller-supplied CAs, so public-web trust and
// private deployments share one validation algorithm. Safe for concurrent
// readers; never mutated after construction.
type TrustAnchorPool struct {
	anchors []*x509.Certificate

	// bySubject indexes anchors by exact subject string for issuer
	// discovery. Exact string comparison is deliberate: it matches the
	// observed behavior of the system this engine replaces.
	bySubject map[string][]*x509.Certificate
}

// TrustAnchorPoolOptions configures pool construction.
type TrustAnchorPoolOptions struct {
	// IncludeSystemRoots adds the host platform's default trusted roots.
	IncludeSystemRoots bool

	// AdditionalCAs are caller-supplied trusted roots, typically
	// tenant-configured private CAs.
	AdditionalCAs []*x509.Certificate
}

// NewTrustAnchorPool builds a pool from the given options.
func NewTrustAnchorPool(opts TrustAnchorPoolOptions) (*TrustAnchorPool, error) {
	var anchors []*x509.Certificate

	if opts.IncludeSystemRoots {
		systemAnchors, err := loadSystemAnchors()
		if err != nil {
			return nil, fmt.Errorf("failed to load system trust anchors: %w", err)
		}
		anchors = append(anchors, systemAnchors...)
	}

	seen := make(map[string]struct{}, len(anchors)+len(opts.AdditionalCAs))
	for _, anchor := range anchors {
		seen[string(anchor.RawSubjectPublicKeyInfo)] = struct{}{}
	}
	for _, ca := range opts.AdditionalCAs {
		if ca == nil {
			return nil, fmt.Errorf("trust anchor cannot be nil")
		}
		key := string(ca.RawSubjectPublicKeyInfo)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		anchors = append(anchors, ca)
	}

	if len(anchors) == 0 {
		return nil, fmt.Errorf("trust anchor pool cannot be empty")
	}

	bySubject := make(map[string][]*x509.Certificate, len(anchors))
	for _, anchor := range anchors {
		subject := anchor.Subject.String()
		bySubject[subject] = append(bySubject[subject], anchor)
	}

	return &TrustAnchorPool{
		anchors:   anchors,
		bySubject: bySubject,
	}, nil
}

// NewTrustAnchorPoolFromCAs builds a pool from caller-supplied CAs only.
func NewTrustAnchorPoolFromCAs(cas []*x509.Certificate) (*TrustAnchorPool, error) {
	return NewTrustAnchorPool(TrustAnchorPoolOptions{AdditionalCAs: cas})
}

// FindBySubject returns the anchors whose subject exactly matches the given
// name string, or nil when none do.
func (p *TrustAnchorPool) FindBySubject(subject string) []*x509.Certificate {
	return p.bySubject[subject]
}

// Contains reports whether the exact certificate is an anchor in this pool.
func (p *TrustAnchorPool) Contains(cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}
	for _, anchor := range p.anchors {
		if anchor.Equal(cert) {
			return true
		}
	}
	return false
}

// CreateCertPool builds a fresh x509.CertPool holding every anchor. A new
// pool is created per call so an in-flight validation never observes a
// swap.
func (p *TrustAnchorPool) CreateCertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	for _, anchor := range p.anchors {
		pool.AddCert(anchor)
	}
	return pool
}

// Anchors returns the anchors in pool order.
func (p *TrustAnchorPool) Anchors() []*x509.Certificate {
	out := make([]*x509.Certificate, len(p.anchors))
	copy(out, p.anchors)
	return out
}

// Count returns the number of anchors.
func (p *TrustAnchorPool) Count() int {
	return len(p.anchors)
}

// loadSystemAnchors extracts the platform's default trusted roots.
// x509.SystemCertPool does not expose its certificates, and anchor
// discovery needs enumerable subjects, so the bundle files are read
// directly.
func loadSystemAnchors() ([]*x509.Certificate, error) {
	return systemRootCertificates()
}

// AnchorPoolHandle holds the current TrustAnchorPool behind an atomic
// pointer. Refreshing the trust configuration swaps the pointer; in-flight
// validations keep the snapshot they loaded. Never mutate a pool in place.
type AnchorPoolHandle struct {
	current atomic.Pointer[TrustAnchorPool]
}

// NewAnchorPoolHandle creates a handle seeded with the given pool.
func NewAnchorPoolHandle(pool *TrustAnchorPool) (*AnchorPoolHandle, error) {
	if pool == nil {
		return nil, fmt.Errorf("initial trust anchor pool cannot be nil")
	}
	h := &AnchorPoolHandle{}
	h.current.Store(pool)
	return h, nil
}

// Load returns the current pool snapshot.
func (h *AnchorPoolHandle) Load() *TrustAnchorPool {
	return h.current.Load()
}

// Swap atomically replaces the current pool.
func (h *AnchorPoolHandle) Swap(pool *TrustAnchorPool) error {
	if pool == nil {
		return fmt.Errorf("replacement trust anchor pool cannot be nil")
	}
	h.current.Store(pool)
	return nil
}
