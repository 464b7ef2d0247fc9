package bookly_test

import (
	"testing"

	"github.com/goliatone/bookly"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRichErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *goerrors.Error
		code int
	}{
		{"token invalid", bookly.ErrTokenInvalid, 401},
		{"token revoked", bookly.ErrTokenRevoked, 401},
		{"credentials missing", bookly.ErrCredentialsMissing, 401},
		{"access token required", bookly.ErrAccessTokenRequired, 403},
		{"refresh token expired", bookly.ErrRefreshTokenExpired, 400},
		{"refresh token required", bookly.ErrRefreshTokenRequired, 403},
		{"bad credentials", bookly.ErrMismatchedHashAndPassword, 403},
		{"duplicate account", bookly.ErrDuplicateAccount, 403},
		{"not verified", bookly.ErrAccountNotVerified, 403},
		{"insufficient permission", bookly.ErrInsufficientPermission, 403},
		{"too many attempts", bookly.ErrTooManyLoginAttempts, 403},
		{"user not found", bookly.ErrUserNotFound, 404},
		{"password mismatch", bookly.ErrPasswordMismatch, 400},
		{"action token invalid", bookly.ErrActionTokenInvalid, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.TextCode)
		})
	}
}

// credential failures and token failures share outward messages so the
// API never reveals which check tripped
func TestErrorMessagesDoNotLeakCause(t *testing.T) {
	assert.Equal(t, bookly.ErrTokenInvalid.Message, bookly.ErrTokenExpired.Message)
	assert.Equal(t, bookly.ErrTokenInvalid.Message, bookly.ErrTokenMalformed.Message)
	assert.Equal(t, "Invalid email or password", bookly.ErrMismatchedHashAndPassword.Message)
}

func TestRichErrorsUnwrapAsRich(t *testing.T) {
	wrapped := goerrors.Wrap(bookly.ErrTokenInvalid, goerrors.CategoryAuth, "guard rejected request")

	var richErr *goerrors.Error
	require.True(t, goerrors.As(wrapped, &richErr))
	assert.NotEmpty(t, richErr.Message)
}

func TestDuplicateAccountTextCode(t *testing.T) {
	assert.Equal(t, "duplicate_account", bookly.ErrDuplicateAccount.TextCode)
	assert.Equal(t, bookly.TextCodeDuplicateAccount, bookly.ErrDuplicateAccount.TextCode)
}
