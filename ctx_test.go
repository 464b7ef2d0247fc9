package bookly_test

import (
	"context"
	"testing"

	"github.com/goliatone/bookly"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundtrip(t *testing.T) {
	user := &bookly.User{ID: uuid.New(), Email: "pepe@example.com"}

	ctx := bookly.WithContext(context.Background(), user)

	got, ok := bookly.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := bookly.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundtrip(t *testing.T) {
	claims := &bookly.JWTClaims{
		User: bookly.TokenUser{Email: "pepe@example.com"},
	}

	ctx := bookly.WithClaimsContext(context.Background(), claims)

	got, ok := bookly.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "pepe@example.com", got.Email())
}

func TestGetClaimsMissing(t *testing.T) {
	_, ok := bookly.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestGetRouterClaims(t *testing.T) {
	claims := &bookly.JWTClaims{
		User: bookly.TokenUser{Email: "pepe@example.com"},
	}

	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = claims

	got, ok := bookly.GetRouterClaims(ctx, "")
	require.True(t, ok)
	assert.Equal(t, "pepe@example.com", got.Email())

	// custom key
	ctx = router.NewMockContext()
	ctx.LocalsMock["jwt"] = claims

	got, ok = bookly.GetRouterClaims(ctx, "jwt")
	require.True(t, ok)
	assert.Equal(t, "pepe@example.com", got.Email())
}

func TestGetRouterClaimsMissing(t *testing.T) {
	ctx := router.NewMockContext()

	_, ok := bookly.GetRouterClaims(ctx, "user")
	assert.False(t, ok)
}

func TestGetRouterClaimsWrongType(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = "not-claims"

	_, ok := bookly.GetRouterClaims(ctx, "user")
	assert.False(t, ok)
}

func TestGetRouterUser(t *testing.T) {
	user := &bookly.User{ID: uuid.New()}

	ctx := router.NewMockContext()
	ctx.LocalsMock[bookly.CurrentUserKey] = user

	got, ok := bookly.GetRouterUser(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
}

func TestGetRouterUserMissing(t *testing.T) {
	ctx := router.NewMockContext()

	_, ok := bookly.GetRouterUser(ctx)
	assert.False(t, ok)
}
