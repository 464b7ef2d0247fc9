package tokenware

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var defaultTokenLookup = "header:" + router.HeaderAuthorization

// defaultBlocklistTimeout bounds the revocation lookup so a slow store
// cannot stall the request path.
var defaultBlocklistTimeout = 2 * time.Second

// ErrCredentialsMissing is returned when no bearer token is found in the request.
var ErrCredentialsMissing = errors.New("Missing or malformed credentials", errors.CategoryAuth).
	WithTextCode("credentials_missing").
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid is returned when the token fails validation or is expired.
var ErrTokenInvalid = errors.New("Token is invalid or expired", errors.CategoryAuth).
	WithTextCode("invalid_token").
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned when the token identifier is on the blocklist.
var ErrTokenRevoked = errors.New("Token is invalid or has been revoked", errors.CategoryAuth).
	WithTextCode("token_revoked").
	WithCode(errors.CodeUnauthorized)

// ErrAccessTokenRequired is returned when a refresh token hits an access route.
var ErrAccessTokenRequired = errors.New("Please provide a valid access token", errors.CategoryAuth).
	WithTextCode("wrong_token_kind").
	WithCode(errors.CodeForbidden)

// ErrRefreshTokenRequired is returned when an access token hits a refresh route.
var ErrRefreshTokenRequired = errors.New("Please provide a valid refresh token", errors.CategoryAuth).
	WithTextCode("wrong_token_kind").
	WithCode(errors.CodeForbidden)

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the bookly package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the bookly package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() string
	TokenID() string
	IsRefresh() bool
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// Blocklist is the revocation store the guard consults for every request.
type Blocklist interface {
	Contains(ctx context.Context, jti string) (bool, error)
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	ContextKey     string
	TokenLookup    string
	AuthScheme     string

	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// Blocklist is the revocation store. When nil revocation is not checked.
	Blocklist Blocklist
	// BlocklistTimeout bounds each revocation lookup
	BlocklistTimeout time.Duration

	// RequireRefresh selects which token kind the route accepts: access
	// tokens by default, refresh tokens when true.
	RequireRefresh bool

	// ContextEnricher is an optional function to propagate claims to the standard
	// Go context. If provided, it will be called after successful token validation.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, ErrTokenInvalid)
			}

			if !claims.Expires().After(time.Now()) {
				return cfg.ErrorHandler(ctx, ErrTokenInvalid)
			}

			if err := cfg.checkRevocation(ctx.Context(), claims); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if cfg.RequireRefresh && !claims.IsRefresh() {
				return cfg.ErrorHandler(ctx, ErrRefreshTokenRequired)
			}

			if !cfg.RequireRefresh && claims.IsRefresh() {
				return cfg.ErrorHandler(ctx, ErrAccessTokenRequired)
			}

			ctx.Locals(cfg.ContextKey, claims)

			// if a context enricher we use it to propagate claims to the standard context
			if cfg.ContextEnricher != nil {
				stdCtx := ctx.Context()
				stdCtxWithClaims := cfg.ContextEnricher(stdCtx, claims)
				ctx.SetContext(stdCtxWithClaims)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg *Config) checkRevocation(ctx context.Context, claims AuthClaims) error {
	if cfg.Blocklist == nil {
		return nil
	}

	jti := claims.TokenID()
	if jti == "" {
		// legacy tokens without a jti cannot be revoked, reject them
		return ErrTokenInvalid
	}

	lookupCtx, cancel := context.WithTimeout(ctx, cfg.BlocklistTimeout)
	defer cancel()

	revoked, err := cfg.Blocklist.Contains(lookupCtx, jti)
	if err != nil {
		// fail closed, a store outage must not let revoked tokens through
		return errors.Wrap(err, errors.CategoryAuth, ErrTokenRevoked.Message).
			WithTextCode(ErrTokenRevoked.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	if revoked {
		return ErrTokenRevoked
	}

	return nil
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return c.JSON(richErr.Code, map[string]any{
					"message":    richErr.Message,
					"error_code": richErr.TextCode,
				})
			}
			return c.JSON(router.StatusUnauthorized, map[string]any{
				"message":    ErrTokenInvalid.Message,
				"error_code": ErrTokenInvalid.TextCode,
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: token middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.BlocklistTimeout <= 0 {
		cfg.BlocklistTimeout = defaultBlocklistTimeout
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		//header:Authorization
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts token from the request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			return "", ErrCredentialsMissing
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrCredentialsMissing
	}
}

// tokenFromQuery returns a function that extracts token from the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrCredentialsMissing
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts token from the url param string.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrCredentialsMissing
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts token from the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrCredentialsMissing
		}
		return token, nil
	}
}
