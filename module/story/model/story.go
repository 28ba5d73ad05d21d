package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// DefaultTTL is how long a story stays visible.
const DefaultTTL = 24 * time.Hour

// Story is an ephemeral media post. Expired stories are hidden by query and
// removed by the periodic sweep.
type Story struct {
	StoryID  string `bson:"story_id" json:"storyId"`
	AuthorID string `bson:"author_id" json:"authorId"`

	MediaURL  string `bson:"media_url" json:"mediaUrl"`
	MediaType string `bson:"media_type" json:"mediaType"`
	Caption   string `bson:"caption,omitempty" json:"caption,omitempty"`
	MusicURL  string `bson:"music_url,omitempty" json:"musicUrl,omitempty"`
	TextOver  string `bson:"text_overlay,omitempty" json:"textOverlay,omitempty"`

	Viewers []string `bson:"viewers" json:"viewers"`

	ExpiresAt  time.Time `bson:"expires_at" json:"expiresAt"`
	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (s *Story) GetTableName() string { return "stories" }

func (s *Story) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(s.GetTableName())
}

func (s *Story) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
