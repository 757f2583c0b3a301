// Package certauth exposes certificate-chain passwordless authentication:
// tokens carrying an x5c certificate chain are verified against the chain's
// leaf key, validated to a trusted root, and resolved to a per-tenant
// account identity.
package certauth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sufield/certauth/internal/adapters/metrics"
	configadapter "github.com/sufield/certauth/internal/adapters/secondary/config"
	"github.com/sufield/certauth/internal/adapters/secondary/memaccount"
	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/ports"
	"github.com/sufield/certauth/internal/core/services"
)

// Identity is the stable thumbprint derived from a credential's public key.
type Identity = domain.Identity

// AccountID identifies an account inside a tenant.
type AccountID = ports.AccountID

// AccountStore is the external account collaborator contract.
type AccountStore = ports.AccountStore

// Options configures an Engine.
type Options struct {
	// ConfigPath is an optional configuration file. When empty, defaults
	// and CERTAUTH_* environment variables apply.
	ConfigPath string

	// Store is the account store. When nil an in-memory store is used,
	// which is suitable for tests and single-process deployments only.
	Store ports.AccountStore

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// EnableMetrics wires the Prometheus metrics reporter.
	EnableMetrics bool
}

// Engine is the authentication orchestrator plus its trust configuration.
type Engine struct {
	service *services.AuthService
	config  *ports.Configuration
	logger  *slog.Logger
}

// New loads configuration, builds the trust anchor pool, and wires the
// orchestrator.
func New(ctx context.Context, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := configadapter.NewProvider()
	cfg, err := provider.LoadConfiguration(ctx, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := configadapter.BuildAnchorPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build trust anchor pool: %w", err)
	}

	handle, err := domain.NewAnchorPoolHandle(pool)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = memaccount.New()
	}

	serviceOpts := []services.AuthServiceOption{
		services.WithLogger(logger),
		services.WithClockSkew(cfg.ClockSkew()),
	}
	if opts.EnableMetrics {
		serviceOpts = append(serviceOpts, services.WithMetrics(metrics.NewPrometheusMetrics()))
	}

	service, err := services.NewAuthService(handle, store, serviceOpts...)
	if err != nil {
		return nil, err
	}

	logger.Info("Authentication engine ready",
		"service", cfg.Service.Name,
		"trust_anchors", pool.Count(),
		"system_roots", cfg.Trust.IncludeSystemRoots,
	)

	return &Engine{
		service: service,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Register validates the token and creates a new account bound to its
// identity. Returns ErrAccountExists when the tenant already has an account
// for this credential.
func (e *Engine) Register(ctx context.Context, tenant, token string) (AccountID, error) {
	return e.service.Register(ctx, tenant, token)
}

// Authenticate validates the token and resolves its bound account. Returns
// ErrAccountNotFound when no binding exists.
func (e *Engine) Authenticate(ctx context.Context, tenant, token string) (AccountID, error) {
	return e.service.Authenticate(ctx, tenant, token)
}

// Validate runs the validation pipeline without touching the account store.
func (e *Engine) Validate(ctx context.Context, token string) (Identity, error) {
	return e.service.Validate(ctx, token)
}

// ReloadTrust rebuilds the anchor pool from the current configuration and
// swaps it in atomically. In-flight validations keep their snapshot.
func (e *Engine) ReloadTrust() error {
	pool, err := configadapter.BuildAnchorPool(e.config)
	if err != nil {
		return fmt.Errorf("failed to rebuild trust anchor pool: %w", err)
	}
	if err := e.service.SwapAnchors(pool); err != nil {
		return err
	}
	e.logger.Info("Trust anchor pool reloaded", "trust_anchors", pool.Count())
	return nil
}
