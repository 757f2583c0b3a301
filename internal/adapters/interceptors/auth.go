// Package interceptors provides gRPC server interceptors that authenticate
// incoming requests with chain-bound tokens.
package interceptors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/sufield/certauth/internal/core/errors"
	"github.com/sufield/certauth/internal/core/ports"
)

// authorizationHeader is the metadata key carrying the bearer token.
const authorizationHeader = "authorization"

// bearerPrefix is the expected scheme prefix of the authorization value.
const bearerPrefix = "bearer "

// IdentityContextKey is the context key for the authenticated account.
type IdentityContextKey struct{}

// AuthenticatedAccount is the result of a successful request
// authentication, stored in the request context.
type AuthenticatedAccount struct {
	Tenant    string
	AccountID ports.AccountID
}

// Authenticator resolves a (tenant, token) pair to an account. The
// orchestrator's Authenticate satisfies this.
type Authenticator interface {
	Authenticate(ctx context.Context, tenant, token string) (ports.AccountID, error)
}

// AuthConfig configures the authentication interceptor.
type AuthConfig struct {
	// Tenant scopes every request this server handles.
	Tenant string

	// SkipMethods bypass authentication (format: /service.Service/Method).
	SkipMethods []string

	// Logger for authentication events.
	Logger *slog.Logger
}

// AuthInterceptor authenticates gRPC requests using a bearer token from the
// request metadata.
type AuthInterceptor struct {
	authenticator Authenticator
	config        *AuthConfig
	logger        *slog.Logger
}

// NewAuthInterceptor creates an interceptor around the given authenticator.
func NewAuthInterceptor(authenticator Authenticator, config *AuthConfig) (*AuthInterceptor, error) {
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}
	if config == nil || config.Tenant == "" {
		return nil, fmt.Errorf("auth config with a tenant is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthInterceptor{
		authenticator: authenticator,
		config:        config,
		logger:        logger,
	}, nil
}

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// authenticates each request and injects the account into the context.
func (a *AuthInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if a.shouldSkipMethod(info.FullMethod) {
			a.logger.Debug("Skipping authentication for method", "method", info.FullMethod)
			return handler(ctx, req)
		}

		authenticatedCtx, err := a.authenticateRequest(ctx, info.FullMethod)
		if err != nil {
			a.logger.Warn("Request authentication failed",
				"method", info.FullMethod,
				"error", err,
			)
			return nil, err
		}

		return handler(authenticatedCtx, req)
	}
}

// authenticateRequest extracts the bearer token and runs it through the
// authenticator.
func (a *AuthInterceptor) authenticateRequest(ctx context.Context, method string) (context.Context, error) {
	token, err := bearerTokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := a.authenticator.Authenticate(ctx, a.config.Tenant, token)
	if err != nil {
		return nil, statusFromDomainError(err)
	}

	account := &AuthenticatedAccount{
		Tenant:    a.config.Tenant,
		AccountID: accountID,
	}
	authenticatedCtx := context.WithValue(ctx, IdentityContextKey{}, account)

	a.logger.Info("Request authenticated",
		"tenant", account.Tenant,
		"account_id", account.AccountID.String(),
		"method", method,
	)

	return authenticatedCtx, nil
}

// bearerTokenFromContext pulls the bearer token out of the incoming
// metadata.
func bearerTokenFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "no request metadata")
	}

	values := md.Get(authorizationHeader)
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization metadata")
	}

	value := values[0]
	if len(value) <= len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return "", status.Error(codes.Unauthenticated, "authorization metadata is not a bearer token")
	}

	return value[len(bearerPrefix):], nil
}

// statusFromDomainError maps engine failures to gRPC status codes. Input
// and trust failures are Unauthenticated; missing bindings are NotFound;
// anything else is Internal.
func statusFromDomainError(err error) error {
	var expired *errors.CertificateExpiredError
	var pathErr *errors.TrustPathError

	switch {
	case stderrors.Is(err, errors.ErrAccountNotFound):
		return status.Error(codes.NotFound, "no account bound to the presented credential")
	case stderrors.Is(err, errors.ErrMalformedToken),
		stderrors.Is(err, errors.ErrMissingChainHeader),
		stderrors.Is(err, errors.ErrMalformedCertificate),
		stderrors.Is(err, errors.ErrSignatureInvalid),
		stderrors.Is(err, errors.ErrNoTrustedIssuer),
		stderrors.As(err, &expired),
		stderrors.As(err, &pathErr):
		return status.Error(codes.Unauthenticated, "credential validation failed")
	default:
		return status.Error(codes.Internal, "authentication failed")
	}
}

// GetAccountFromContext extracts the authenticated account from a gRPC
// context.
func GetAccountFromContext(ctx context.Context) (*AuthenticatedAccount, bool) {
	account, ok := ctx.Value(IdentityContextKey{}).(*AuthenticatedAccount)
	return account, ok
}

// RequireAccount extracts the authenticated account or returns an error.
func RequireAccount(ctx context.Context) (*AuthenticatedAccount, error) {
	account, ok := GetAccountFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no authenticated account in context")
	}
	return account, nil
}

// shouldSkipMethod checks if a method bypasses authentication.
func (a *AuthInterceptor) shouldSkipMethod(method string) bool {
	for _, skipMethod := range a.config.SkipMethods {
		if method == skipMethod {
			return true
		}
	}
	return false
}
