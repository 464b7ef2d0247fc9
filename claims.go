package bookly

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUser is the identity snapshot embedded in bearer tokens. It is a
// convenience for handlers; authorization decisions read the stored user.
type TokenUser struct {
	Email   string `json:"email,omitempty"`
	UserUID string `json:"user_uid,omitempty"`
	Role    string `json:"role,omitempty"`
}

// AuthClaims represents structured JWT claims with enhanced permission checking
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

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	User    TokenUser `json:"user"`
	Refresh bool      `json:"refresh"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.User.UserUID != "" {
		return c.User.UserUID
	}
	return c.Subject()
}

// Email returns the email embedded in the token
func (c *JWTClaims) Email() string {
	return c.User.Email
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.User.Role
}

// TokenID returns the token's unique identifier, the jti claim
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// IsRefresh reports whether this is a refresh token
func (c *JWTClaims) IsRefresh() bool {
	return c.Refresh
}

// HasRole checks if the user has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.User.Role == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return UserRole(c.User.Role).IsAtLeast(UserRole(minRole))
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
