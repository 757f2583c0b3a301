// Package config loads engine configuration from files and the
// environment.
package config

import (
	"context"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/errors"
	"github.com/sufield/certauth/internal/core/ports"
)

// envPrefix namespaces the environment variables, e.g.
// CERTAUTH_TRUST_INCLUDE_SYSTEM_ROOTS.
const envPrefix = "CERTAUTH"

// Provider loads configuration from an optional file plus environment
// overrides.
type Provider struct{}

// NewProvider creates a provider.
func NewProvider() *Provider {
	return &Provider{}
}

// LoadConfiguration loads and validates configuration. An empty path loads
// defaults and environment overrides only.
func (p *Provider) LoadConfiguration(ctx context.Context, path string) (*ports.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("configuration loading canceled: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service.name", "certauth")
	v.SetDefault("trust.include_system_roots", true)
	v.SetDefault("trust.ca_bundle_paths", []string{})
	v.SetDefault("token.clock_skew", "30s")

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg ports.Configuration
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// GetDefaultConfiguration returns the defaults used when no file or
// environment overrides are present.
func (p *Provider) GetDefaultConfiguration(ctx context.Context) *ports.Configuration {
	return &ports.Configuration{
		Service: ports.ServiceConfig{
			Name: "certauth",
		},
		Trust: ports.TrustConfig{
			IncludeSystemRoots: true,
		},
		Token: ports.TokenConfig{
			ClockSkew: "30s",
		},
	}
}

// BuildAnchorPool constructs the trust anchor pool the configuration
// describes: the platform's default roots (when enabled) united with every
// CA found in the configured bundle files.
func BuildAnchorPool(cfg *ports.Configuration) (*domain.TrustAnchorPool, error) {
	if cfg == nil {
		return nil, &errors.ValidationError{
			Field:   "configuration",
			Value:   nil,
			Message: "configuration cannot be nil",
		}
	}

	var additional []*x509.Certificate
	for _, path := range cfg.Trust.CABundlePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle %s: %w", path, err)
		}
		certs, err := domain.DecodeCertificateBundle(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CA bundle %s: %w", path, err)
		}
		additional = append(additional, certs...)
	}

	return domain.NewTrustAnchorPool(domain.TrustAnchorPoolOptions{
		IncludeSystemRoots: cfg.Trust.IncludeSystemRoots,
		AdditionalCAs:      additional,
	})
}
