package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// Message content types.
const (
	MsgText  = "text"
	MsgImage = "image"
	MsgVideo = "video"
	MsgAudio = "audio"
	MsgFile  = "file"
)

// ValidMsgType reports whether t is a known message type tag.
func ValidMsgType(t string) bool {
	switch t {
	case MsgText, MsgImage, MsgVideo, MsgAudio, MsgFile:
		return true
	}
	return false
}

// Message belongs to a conversation; IsRead flips only via the explicit
// mark-read call.
type Message struct {
	MessageID      string `bson:"message_id" json:"messageId"`
	ConversationID string `bson:"conversation_id" json:"conversationId"`
	SenderID       string `bson:"sender_id" json:"senderId"`
	ReceiverID     string `bson:"receiver_id" json:"receiverId"`

	Content string `bson:"content" json:"content"`
	Type    string `bson:"type" json:"type"`
	IsRead  bool   `bson:"is_read" json:"isRead"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (m *Message) GetTableName() string { return "messages" }

func (m *Message) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}
