package bookly_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/bookly"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// renderedError runs RenderError against a mock context and captures the
// status and body handed to JSON.
func renderedError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()

	var status int
	var body map[string]any

	ctx := router.NewMockContext()
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, bookly.RenderError(ctx, err))
	return status, body
}

func TestRenderErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid token",
			err:        bookly.ErrTokenInvalid,
			wantStatus: http.StatusUnauthorized,
			wantCode:   bookly.TextCodeInvalidToken,
		},
		{
			name:       "duplicate account",
			err:        bookly.ErrDuplicateAccount,
			wantStatus: http.StatusForbidden,
			wantCode:   bookly.TextCodeDuplicateAccount,
		},
		{
			name:       "bad credentials",
			err:        bookly.ErrMismatchedHashAndPassword,
			wantStatus: http.StatusForbidden,
			wantCode:   bookly.TextCodeInvalidCredentials,
		},
		{
			name:       "insufficient permission",
			err:        bookly.ErrInsufficientPermission,
			wantStatus: http.StatusForbidden,
			wantCode:   bookly.TextCodeInsufficientPermission,
		},
		{
			name:       "user not found",
			err:        bookly.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   bookly.TextCodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := renderedError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body["error_code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRenderErrorHidesInternalErrors(t *testing.T) {
	status, body := renderedError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Oops! Something went wrong", body["message"])
	assert.Equal(t, bookly.TextCodeServerError, body["error_code"])
	assert.NotContains(t, body["message"], "pq:")
}

func TestRenderErrorUnverifiedAccountResolution(t *testing.T) {
	status, body := renderedError(t, bookly.ErrAccountNotVerified)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Please check your email for verification details", body["resolution"])
}

func TestSignupPayloadValidate(t *testing.T) {
	valid := bookly.SignupPayload{
		FirstName: "Pepe",
		LastName:  "Mint",
		Username:  "pepe",
		Email:     "pepe@example.com",
		Password:  "sekret123",
	}

	tests := []struct {
		name    string
		mutate  func(p *bookly.SignupPayload)
		wantErr bool
	}{
		{name: "valid payload", mutate: func(p *bookly.SignupPayload) {}},
		{name: "names are optional", mutate: func(p *bookly.SignupPayload) {
			p.FirstName = ""
			p.LastName = ""
		}},
		{name: "missing username", mutate: func(p *bookly.SignupPayload) { p.Username = "" }, wantErr: true},
		{name: "username too long", mutate: func(p *bookly.SignupPayload) { p.Username = "waytoolongname" }, wantErr: true},
		{name: "missing email", mutate: func(p *bookly.SignupPayload) { p.Email = "" }, wantErr: true},
		{name: "malformed email", mutate: func(p *bookly.SignupPayload) { p.Email = "not-an-email" }, wantErr: true},
		{name: "password too short", mutate: func(p *bookly.SignupPayload) { p.Password = "short" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid
			tt.mutate(&payload)
			err := payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginPayloadValidate(t *testing.T) {
	valid := bookly.LoginPayload{Email: "pepe@example.com", Password: "sekret123"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, bookly.LoginPayload{Email: "", Password: "sekret123"}.Validate())
	assert.Error(t, bookly.LoginPayload{Email: "nope", Password: "sekret123"}.Validate())
	assert.Error(t, bookly.LoginPayload{Email: "pepe@example.com", Password: ""}.Validate())
	assert.Error(t, bookly.LoginPayload{Email: "pepe@example.com", Password: "short"}.Validate())
}

func TestPasswordResetPayloadsValidate(t *testing.T) {
	assert.NoError(t, bookly.PasswordResetRequestPayload{Email: "pepe@example.com"}.Validate())
	assert.Error(t, bookly.PasswordResetRequestPayload{}.Validate())
	assert.Error(t, bookly.PasswordResetRequestPayload{Email: "nope"}.Validate())

	assert.NoError(t, bookly.PasswordResetConfirmPayload{
		NewPassword:     "new-sekret",
		ConfirmPassword: "new-sekret",
	}.Validate())
	assert.Error(t, bookly.PasswordResetConfirmPayload{NewPassword: "new-sekret"}.Validate())
	assert.Error(t, bookly.PasswordResetConfirmPayload{
		NewPassword:     "short",
		ConfirmPassword: "short",
	}.Validate())
}

func newTestController(auth *bookly.Auther) *bookly.AuthController {
	return bookly.NewAuthController(bookly.AuthControllerConfig{
		Auth:   auth,
		Tokens: auth.TokenService(),
		Logger: testLogger{},
	})
}

func TestControllerRefreshToken(t *testing.T) {
	identity := bookly.NewIdentityFromUser(&bookly.User{
		ID:    uuid.New(),
		Email: "pepe@example.com",
		Role:  bookly.RoleUser,
	})

	provider := new(MockIdentityProvider)
	provider.On("FindIdentityByIdentifier", mock.Anything, "pepe@example.com").Return(identity, nil)

	auth := newTestAuther(provider)
	ctrl := newTestController(auth)

	refresh, err := auth.TokenService().Issue(identity, true)
	require.NoError(t, err)
	claims, err := auth.TokenService().Validate(refresh)
	require.NoError(t, err)

	var body map[string]any
	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = claims
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, ctrl.RefreshToken(ctx))

	token, ok := body["access_token"].(string)
	require.True(t, ok)

	issued, err := auth.TokenService().Validate(token)
	require.NoError(t, err)
	assert.False(t, issued.IsRefresh())
	assert.Equal(t, identity.ID(), issued.UserID())
}

func TestControllerRefreshTokenMissingClaims(t *testing.T) {
	ctrl := newTestController(newTestAuther(new(MockIdentityProvider)))

	var status int
	ctx := router.NewMockContext()
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
	}).Return(nil)

	require.NoError(t, ctrl.RefreshToken(ctx))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestControllerLogoutRevokesToken(t *testing.T) {
	identity := bookly.NewIdentityFromUser(&bookly.User{
		ID:    uuid.New(),
		Email: "pepe@example.com",
		Role:  bookly.RoleUser,
	})

	auth := newTestAuther(new(MockIdentityProvider))
	ctrl := newTestController(auth)

	access, err := auth.TokenService().Issue(identity, false)
	require.NoError(t, err)
	claims, err := auth.TokenService().Validate(access)
	require.NoError(t, err)

	var body map[string]any
	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = claims
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, ctrl.Logout(ctx))
	assert.Equal(t, "Logged Out Successfully", body["message"])

	revoked, err := auth.Blocklist().Contains(context.Background(), claims.TokenID())
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestControllerCurrentUser(t *testing.T) {
	now := time.Now()
	user := &bookly.User{
		ID:             uuid.New(),
		Username:       "peppermint",
		Email:          "pepe@example.com",
		FirstName:      "Pepe",
		Role:           bookly.RoleUser,
		EmailValidated: true,
		CreatedAt:      &now,
	}

	ctrl := newTestController(newTestAuther(new(MockIdentityProvider)))

	var body map[string]any
	ctx := router.NewMockContext()
	ctx.LocalsMock[bookly.CurrentUserKey] = user
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, ctrl.CurrentUser(ctx))

	assert.Equal(t, user.ID, body["uid"])
	assert.Equal(t, "peppermint", body["username"])
	assert.Equal(t, "pepe@example.com", body["email"])
	assert.Equal(t, true, body["is_verified"])
	assert.NotContains(t, body, "password_hash")
}

func TestControllerCurrentUserMissing(t *testing.T) {
	ctrl := newTestController(newTestAuther(new(MockIdentityProvider)))

	var status int
	ctx := router.NewMockContext()
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
	}).Return(nil)

	require.NoError(t, ctrl.CurrentUser(ctx))
	assert.Equal(t, http.StatusUnauthorized, status)
}
