package bookly

import (
	"context"
	"reflect"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair is the access plus refresh token pair minted at login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Auther struct {
	provider      IdentityProvider
	signingKey    []byte
	signingMethod jwt.SigningMethod
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      []string
	logger        Logger
	tokenService  TokenService
	blocklist     TokenBlocklist
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	method := jwt.GetSigningMethod(opts.GetSigningMethod())

	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		method,
		opts.GetAccessTokenTTL(),
		opts.GetRefreshTokenTTL(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:      provider,
		signingKey:    []byte(opts.GetSigningKey()),
		signingMethod: method,
		accessTTL:     opts.GetAccessTokenTTL(),
		refreshTTL:    opts.GetRefreshTokenTTL(),
		audience:      opts.GetAudience(),
		issuer:        opts.GetIssuer(),
		logger:        defLogger{},
		tokenService:  tokenService,
		blocklist:     NewMemoryBlocklist(),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	// Update the TokenService logger as well
	s.tokenService = NewTokenService(
		s.signingKey,
		s.signingMethod,
		s.accessTTL,
		s.refreshTTL,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// WithBlocklist sets the revocation store consulted by Revoke. Pass the
// same instance that the route guard checks.
func (s *Auther) WithBlocklist(blocklist TokenBlocklist) *Auther {
	if blocklist != nil {
		s.blocklist = blocklist
	}
	return s
}

// WithTokenService sets a custom token service
func (s *Auther) WithTokenService(tokenService TokenService) *Auther {
	if tokenService != nil {
		s.tokenService = tokenService
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Blocklist returns the revocation store used by this Authenticator
func (s *Auther) Blocklist() TokenBlocklist {
	return s.blocklist
}

// Login verifies the credentials and mints a fresh access plus refresh
// token pair. Credential failures come back as a single error so callers
// cannot tell an unknown email from a wrong password.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	var err error
	var identity Identity

	if identity, err = s.provider.VerifyIdentity(ctx, identifier, password); err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrMismatchedHashAndPassword
	}

	access, err := s.tokenService.Issue(identity, false)
	if err != nil {
		s.logger.Error("Login failed to issue access token", "error", err)
		return nil, err
	}

	refresh, err := s.tokenService.Issue(identity, true)
	if err != nil {
		s.logger.Error("Login failed to issue refresh token", "error", err)
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token from validated refresh token claims.
// The identity is re-read from the provider so role or account changes
// since login are reflected in the new token.
func (s *Auther) Refresh(ctx context.Context, claims AuthClaims) (string, error) {
	if claims == nil {
		return "", ErrTokenInvalid
	}

	if !claims.IsRefresh() {
		return "", ErrRefreshTokenRequired
	}

	if !claims.Expires().After(time.Now()) {
		return "", ErrRefreshTokenExpired
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Email())
	if err != nil {
		s.logger.Error("Refresh find identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		return "", ErrUserNotFound
	}

	return s.tokenService.Issue(identity, false)
}

// Revoke places the token's jti on the blocklist until the token would
// have expired on its own. Revoking an already revoked token succeeds.
func (s *Auther) Revoke(ctx context.Context, claims AuthClaims) error {
	if claims == nil || claims.TokenID() == "" {
		return ErrTokenInvalid
	}

	if err := s.blocklist.Add(ctx, claims.TokenID(), claims.Expires()); err != nil {
		s.logger.Error("Revoke blocklist add error", "jti", claims.TokenID(), "error", err)
		return err
	}

	return nil
}

// IdentityFromClaims loads the current user record behind a set of claims
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Email())
	if err != nil {
		s.logger.Error("IdentityFromClaims find identity by identifier: %s", err)
		return nil, err
	}

	return identity, nil
}
