package bookly

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// CurrentUserKey is the locals key under which the policy middleware
// stores the freshly loaded user record.
const CurrentUserKey = "current_user"

// UserFinder loads the stored user behind a set of claims
type UserFinder interface {
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
}

// Policy makes the authorization decision for guarded routes: the user
// behind the claims must still exist, must have a verified email, and
// must hold one of the allowed roles. The user record is re-read on every
// request so a role change or deletion takes effect before the token
// expires.
type Policy struct {
	users        UserFinder
	contextKey   string
	logger       Logger
	errorHandler router.ErrorHandler
}

// NewAccessPolicy creates a Policy backed by the given user store
func NewAccessPolicy(users UserFinder) *Policy {
	return &Policy{
		users:      users,
		contextKey: "user",
		logger:     defLogger{},
	}
}

// WithContextKey overrides the locals key the middleware reads claims from
func (p *Policy) WithContextKey(key string) *Policy {
	if key != "" {
		p.contextKey = key
	}
	return p
}

// WithLogger overrides the policy logger
func (p *Policy) WithLogger(logger Logger) *Policy {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithErrorHandler overrides how policy failures are rendered
func (p *Policy) WithErrorHandler(handler router.ErrorHandler) *Policy {
	if handler != nil {
		p.errorHandler = handler
	}
	return p
}

// Authorize checks the claims against the stored user record and returns
// it. An empty roles list means any role is accepted.
func (p *Policy) Authorize(ctx context.Context, claims AuthClaims, roles ...UserRole) (*User, error) {
	if claims == nil {
		return nil, ErrTokenInvalid
	}

	user, err := p.users.GetByIdentifier(ctx, claims.Email())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for authorization")
	}

	if !user.EmailValidated {
		return nil, ErrAccountNotVerified
	}

	if len(roles) == 0 {
		return user, nil
	}

	for _, role := range roles {
		if user.Role == role {
			return user, nil
		}
	}

	p.logger.Debug("policy rejected request", "user", user.ID.String(), "role", user.Role)
	return nil, ErrInsufficientPermission
}

// Middleware builds a route middleware enforcing this policy. It expects
// the token guard to have stored validated claims in locals already.
func (p *Policy) Middleware(roles ...UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := ctx.Locals(p.contextKey).(AuthClaims)
			if !ok || claims == nil {
				return p.handleError(ctx, ErrCredentialsMissing)
			}

			user, err := p.Authorize(ctx.Context(), claims, roles...)
			if err != nil {
				return p.handleError(ctx, err)
			}

			ctx.Locals(CurrentUserKey, user)

			return ctx.Next()
		}
	}
}

func (p *Policy) handleError(ctx router.Context, err error) error {
	if p.errorHandler != nil {
		return p.errorHandler(ctx, err)
	}
	return RenderError(ctx, err)
}
