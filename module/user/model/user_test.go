package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Handlers return users through this struct, so the JSON rendering is the
// last line of defense for credentials and the block list.
func TestUserJSONHidesCredentialsAndBlockList(t *testing.T) {
	u := &User{
		UserID:       "u1",
		Username:     "amelia",
		Email:        "amelia@example.com",
		PasswordHash: "$2a$10$secrethashsecrethash",
		Blocked:      []string{"u9"},
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secrethash")
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "u9")
	assert.Contains(t, string(raw), `"username":"amelia"`)
}

func TestIsBlockedEither(t *testing.T) {
	a := &User{UserID: "u1", Blocked: []string{"u2"}}
	b := &User{UserID: "u2"}
	c := &User{UserID: "u3"}

	assert.True(t, a.IsBlockedEither(b))
	assert.True(t, b.IsBlockedEither(a))
	assert.False(t, a.IsBlockedEither(c))
}

func TestIsFollowing(t *testing.T) {
	a := &User{UserID: "u1", Following: []string{"u2", "u3"}}
	assert.True(t, a.IsFollowing("u2"))
	assert.False(t, a.IsFollowing("u9"))
}
