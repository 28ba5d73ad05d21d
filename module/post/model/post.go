package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

const (
	MediaImage = "image"
	MediaVideo = "video"
)

// GeoPoint tags a post with where it was taken; drives the map feed.
type GeoPoint struct {
	Lat  float64 `bson:"lat" json:"lat"`
	Lng  float64 `bson:"lng" json:"lng"`
	Name string  `bson:"name,omitempty" json:"name,omitempty"`
}

// Post is a permanent feed entry. Likes hold user ids; $addToSet/$pull keep
// the toggle idempotent without read-modify-write.
type Post struct {
	PostID   string `bson:"post_id" json:"postId"`
	AuthorID string `bson:"author_id" json:"authorId"`

	MediaURL  string    `bson:"media_url" json:"mediaUrl"`
	MediaType string    `bson:"media_type" json:"mediaType"`
	Caption   string    `bson:"caption,omitempty" json:"caption,omitempty"`
	Hashtags  []string  `bson:"hashtags" json:"hashtags"`
	Location  *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	Likes    []string `bson:"likes" json:"likes"`
	Comments []string `bson:"comments" json:"comments"`
	Views    int64    `bson:"views" json:"views"`
	Shares   int64    `bson:"shares" json:"shares"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (p *Post) GetTableName() string { return "posts" }

func (p *Post) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(p.GetTableName())
}

// LikedBy reports whether the user currently likes the post.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
