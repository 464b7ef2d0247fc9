package bookly_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/bookly"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVerifyAccountSuccess(t *testing.T) {
	ctx := context.Background()
	tokens := newTestActionTokens(time.Hour)

	user := &bookly.User{
		ID:    uuid.New(),
		Email: "pepe@example.com",
	}

	token, err := tokens.Issue(user.Email, bookly.PurposeEmailVerification)
	require.NoError(t, err)

	users := new(MockUsers)
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.Email).Return(user, nil)
	users.On("MarkEmailVerifiedTx", mock.Anything, mock.Anything, user.ID).Return(nil)

	repo := new(MockRepositoryManager)
	repo.On("Users").Return(users)

	handler := bookly.NewVerifyAccountHandler(repo, tokens).WithLogger(testLogger{})

	var got *bookly.User
	err = handler.Execute(ctx, bookly.VerifyAccountMessage{
		Token: token,
		OnResponse: func(user *bookly.User) {
			got = user
		},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.EmailValidated)
	users.AssertExpectations(t)
}

// clicking the emailed link twice must not fail
func TestVerifyAccountAlreadyVerified(t *testing.T) {
	ctx := context.Background()
	tokens := newTestActionTokens(time.Hour)

	user := &bookly.User{
		ID:             uuid.New(),
		Email:          "pepe@example.com",
		EmailValidated: true,
	}

	token, err := tokens.Issue(user.Email, bookly.PurposeEmailVerification)
	require.NoError(t, err)

	users := new(MockUsers)
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.Email).Return(user, nil)

	repo := new(MockRepositoryManager)
	repo.On("Users").Return(users)

	handler := bookly.NewVerifyAccountHandler(repo, tokens).WithLogger(testLogger{})

	err = handler.Execute(ctx, bookly.VerifyAccountMessage{Token: token})
	require.NoError(t, err)
	users.AssertNotCalled(t, "MarkEmailVerifiedTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyAccountInvalidToken(t *testing.T) {
	handler := bookly.NewVerifyAccountHandler(new(MockRepositoryManager), newTestActionTokens(time.Hour))

	err := handler.Execute(context.Background(), bookly.VerifyAccountMessage{Token: "garbage"})
	assert.ErrorIs(t, err, bookly.ErrActionTokenInvalid)
}

// a password reset token must not verify an account
func TestVerifyAccountRejectsWrongPurposeToken(t *testing.T) {
	tokens := newTestActionTokens(time.Hour)
	token, err := tokens.Issue("pepe@example.com", bookly.PurposePasswordReset)
	require.NoError(t, err)

	handler := bookly.NewVerifyAccountHandler(new(MockRepositoryManager), tokens)

	err = handler.Execute(context.Background(), bookly.VerifyAccountMessage{Token: token})
	assert.ErrorIs(t, err, bookly.ErrActionTokenInvalid)
}

func TestVerifyAccountUnknownUser(t *testing.T) {
	ctx := context.Background()
	tokens := newTestActionTokens(time.Hour)

	token, err := tokens.Issue("ghost@example.com", bookly.PurposeEmailVerification)
	require.NoError(t, err)

	users := new(MockUsers)
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound())

	repo := new(MockRepositoryManager)
	repo.On("Users").Return(users)

	handler := bookly.NewVerifyAccountHandler(repo, tokens).WithLogger(testLogger{})

	err = handler.Execute(ctx, bookly.VerifyAccountMessage{Token: token})
	assert.ErrorIs(t, err, bookly.ErrUserNotFound)
}
