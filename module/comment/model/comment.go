package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// Comment on a post. Likes mirror the post like mechanism.
type Comment struct {
	CommentID string `bson:"comment_id" json:"commentId"`
	PostID    string `bson:"post_id" json:"postId"`
	AuthorID  string `bson:"author_id" json:"authorId"`

	Content string   `bson:"content" json:"content"`
	Likes   []string `bson:"likes" json:"likes"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (c *Comment) GetTableName() string { return "comments" }

func (c *Comment) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}
