package ports

import (
	"fmt"
	"time"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/errors"
)

// Configuration is the process-wide configuration for the authentication
// engine. It is loaded once at startup and treated as immutable; trust
// refresh happens through an atomic anchor-pool swap, never by mutating a
// loaded Configuration.
type Configuration struct {
	// Service identifies this deployment in logs and metrics.
	Service ServiceConfig `yaml:"service" mapstructure:"service"`

	// Trust configures the anchor pool.
	Trust TrustConfig `yaml:"trust" mapstructure:"trust"`

	// Token configures compact-token validation.
	Token TokenConfig `yaml:"token" mapstructure:"token"`
}

// ServiceConfig contains the core service identification settings.
type ServiceConfig struct {
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
}

// TrustConfig configures the trust anchor pool.
type TrustConfig struct {
	// IncludeSystemRoots adds the platform's default trusted roots to
	// the anchor pool.
	IncludeSystemRoots bool `yaml:"include_system_roots" mapstructure:"include_system_roots"`

	// CABundlePaths are PEM bundle files of additional trusted CAs,
	// typically tenant-configured private roots.
	CABundlePaths []string `yaml:"ca_bundle_paths" mapstructure:"ca_bundle_paths" validate:"dive,file_exists"`
}

// TokenConfig configures compact-token validation.
type TokenConfig struct {
	// ClockSkew is the leeway applied when validating the token's
	// registered time claims. Certificate validity windows are always
	// checked against the actual clock.
	ClockSkew string `yaml:"clock_skew" mapstructure:"clock_skew" validate:"duration"`
}

// DefaultClockSkew is applied when TokenConfig.ClockSkew is unset.
const DefaultClockSkew = 30 * time.Second

// Validate checks the configuration using the domain validator.
func (c *Configuration) Validate() error {
	if c == nil {
		return &errors.ValidationError{
			Field:   "configuration",
			Value:   nil,
			Message: "configuration cannot be nil",
		}
	}

	if err := domain.NewValidator().Validate(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if !c.Trust.IncludeSystemRoots && len(c.Trust.CABundlePaths) == 0 {
		return &errors.ValidationError{
			Field:   "trust",
			Value:   c.Trust,
			Message: "at least one trust source is required (system roots or CA bundles)",
		}
	}

	return nil
}

// ClockSkew returns the configured leeway, or DefaultClockSkew.
func (c *Configuration) ClockSkew() time.Duration {
	if c.Token.ClockSkew == "" {
		return DefaultClockSkew
	}
	d, err := time.ParseDuration(c.Token.ClockSkew)
	if err != nil {
		return DefaultClockSkew
	}
	return d
}
