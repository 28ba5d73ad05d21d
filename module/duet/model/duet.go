package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// Duet is a textual response attached to another user's post, modeled as its
// own resource.
type Duet struct {
	DuetID           string `bson:"duet_id" json:"duetId"`
	PostID           string `bson:"post_id" json:"postId"`
	OriginalAuthorID string `bson:"original_author_id" json:"originalAuthorId"`
	AuthorID         string `bson:"author_id" json:"authorId"`

	Content string `bson:"content" json:"content"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (d *Duet) GetTableName() string { return "duets" }

func (d *Duet) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(d.GetTableName())
}
