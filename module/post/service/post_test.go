package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	postmodel "snapcap/module/post/model"
)

func TestLikeToggleStates(t *testing.T) {
	cases := []struct {
		name      string
		likes     []string
		wantOp    string
		wantLiked bool
	}{
		{"not yet liked adds", []string{"other"}, "$addToSet", true},
		{"already liked removes", []string{"other", "u1"}, "$pull", false},
		{"empty list adds", nil, "$addToSet", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &postmodel.Post{PostID: "p1", Likes: tc.likes}
			update, liked := likeToggle(p, "u1")
			assert.Equal(t, tc.wantLiked, liked)
			assert.Equal(t, bson.M{tc.wantOp: bson.M{"likes": "u1"}}, update)
		})
	}
}

// Toggling twice lands back on the starting state regardless of where it
// started.
func TestLikeToggleRoundTrip(t *testing.T) {
	apply := func(p *postmodel.Post, userID string) {
		update, liked := likeToggle(p, userID)
		if liked {
			assert.Contains(t, update, "$addToSet")
			p.Likes = append(p.Likes, userID)
			return
		}
		assert.Contains(t, update, "$pull")
		kept := p.Likes[:0]
		for _, id := range p.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.Likes = kept
	}

	p := &postmodel.Post{PostID: "p1", Likes: []string{"other"}}
	apply(p, "u1")
	assert.True(t, p.LikedBy("u1"))
	apply(p, "u1")
	assert.False(t, p.LikedBy("u1"))
	assert.Equal(t, []string{"other"}, p.Likes)
}
