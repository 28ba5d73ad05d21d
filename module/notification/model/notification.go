package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// Notification types; one per interaction that can reach a user.
const (
	TypeLike      = "like"
	TypeComment   = "comment"
	TypeFollow    = "follow"
	TypeMessage   = "message"
	TypeMention   = "mention"
	TypeStoryView = "story_view"
	TypeDuet      = "duet"
)

// ValidType reports whether t is one of the known notification types.
func ValidType(t string) bool {
	switch t {
	case TypeLike, TypeComment, TypeFollow, TypeMessage, TypeMention, TypeStoryView, TypeDuet:
		return true
	}
	return false
}

// Notification is the durable record of an interaction. Live delivery is
// at-most-once over the socket; this document is what a disconnected
// recipient fetches later.
type Notification struct {
	NotificationID string `bson:"notification_id" json:"notificationId"`
	Recipient      string `bson:"recipient" json:"recipient"`
	Type           string `bson:"type" json:"type"`
	FromUserID     string `bson:"from_user_id" json:"fromUserId"`

	PostID    string `bson:"post_id,omitempty" json:"postId,omitempty"`
	CommentID string `bson:"comment_id,omitempty" json:"commentId,omitempty"`
	StoryID   string `bson:"story_id,omitempty" json:"storyId,omitempty"`
	MessageID string `bson:"message_id,omitempty" json:"messageId,omitempty"`
	DuetID    string `bson:"duet_id,omitempty" json:"duetId,omitempty"`

	IsRead     bool      `bson:"is_read" json:"isRead"`
	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (n *Notification) GetTableName() string { return "notifications" }

func (n *Notification) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(n.GetTableName())
}
