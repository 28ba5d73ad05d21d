package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// Conversation is a two-party thread. LastMessage/LastMessageAt drive the
// conversation-list sort.
type Conversation struct {
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	Participants   [2]string `bson:"participants" json:"participants"`

	LastMessageID string     `bson:"last_message_id,omitempty" json:"lastMessageId,omitempty"`
	LastMessage   string     `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt *time.Time `bson:"last_message_at,omitempty" json:"lastMessageAt,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (c *Conversation) GetTableName() string { return "conversations" }

func (c *Conversation) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// Has reports whether userID participates in the conversation.
func (c *Conversation) Has(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}
