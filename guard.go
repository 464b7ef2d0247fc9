package bookly

import (
	"context"

	"github.com/goliatone/bookly/middleware/tokenware"
	"github.com/goliatone/go-router"
)

// guardValidator bridges TokenService to the guard's validator interface.
type guardValidator struct {
	tokens TokenService
}

func (g guardValidator) Validate(tokenString string) (tokenware.AuthClaims, error) {
	claims, err := g.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// NewTokenGuard builds the route middleware that protects endpoints with a
// bearer token. Pass requireRefresh true for routes that exchange refresh
// tokens, false everywhere else.
func NewTokenGuard(cfg Config, tokens TokenService, blocklist TokenBlocklist, requireRefresh bool) router.MiddlewareFunc {
	return tokenware.New(tokenware.Config{
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		TokenValidator: guardValidator{tokens: tokens},
		Blocklist:      blocklist,
		RequireRefresh: requireRefresh,
		ContextEnricher: func(c context.Context, claims tokenware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(c, ac)
			}
			return c
		},
	})
}
