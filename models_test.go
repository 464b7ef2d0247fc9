package bookly_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/bookly"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAddMetadata(t *testing.T) {
	user := &bookly.User{}

	user.AddMetadata("signup_source", "mobile").AddMetadata("referrer", "newsletter")

	assert.Equal(t, "mobile", user.Metadata["signup_source"])
	assert.Equal(t, "newsletter", user.Metadata["referrer"])
}

func TestUserJSONHidesSensitiveFields(t *testing.T) {
	user := &bookly.User{
		ID:            uuid.New(),
		Email:         "pepe@example.com",
		PasswordHash:  "$2a$14$abcdefg",
		LoginAttempts: 3,
	}

	payload, err := json.Marshal(user)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	assert.NotContains(t, raw, "password_hash")
	assert.NotContains(t, raw, "login_attempts")
	assert.Equal(t, "pepe@example.com", raw["email"])
}

func TestBookJSONShape(t *testing.T) {
	userID := uuid.New()
	book := &bookly.Book{
		ID:     uuid.New(),
		UserID: &userID,
		Title:  "The midnight library",
		Author: "Matt Haig",
	}

	payload, err := json.Marshal(book)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	assert.Equal(t, book.ID.String(), raw["uid"])
	assert.Equal(t, userID.String(), raw["user_uid"])
	assert.Equal(t, "The midnight library", raw["title"])
}

func TestReviewJSONKeepsZeroRating(t *testing.T) {
	review := &bookly.Review{ID: uuid.New()}

	payload, err := json.Marshal(review)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	// rating has no omitempty so a zero shows up and flags bad data
	assert.Contains(t, raw, "rating")
}
