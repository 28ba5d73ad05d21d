package gateway

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Inbound frame types, the finite set of client intents.
const (
	FrameJoinConversation  = "join_conversation"
	FrameLeaveConversation = "leave_conversation"
	FrameTypingStart       = "typing_start"
	FrameTypingStop        = "typing_stop"
	FrameInteraction       = "interaction"
)

// Outbound event types.
const (
	EventUserOnline      = "user_online"
	EventUserOffline     = "user_offline"
	EventNewNotification = "new_notification"
	EventUserTyping      = "user_typing"
)

// Frame is the tagged inbound message. Unused fields stay empty; Type selects
// the handler in the dispatch table.
type Frame struct {
	Type string `json:"type"`

	ConversationID string `json:"conversationId,omitempty"`

	// interaction payload
	Interaction  string `json:"interaction,omitempty"` // like|comment|follow|story_view|duet|message|mention
	TargetUserID string `json:"targetUserId,omitempty"`
	PostID       string `json:"postId,omitempty"`
	CommentID    string `json:"commentId,omitempty"`
	StoryID      string `json:"storyId,omitempty"`
	MessageID    string `json:"messageId,omitempty"`
	DuetID       string `json:"duetId,omitempty"`
}

// Event is the tagged outbound message. TS is the server clock so client
// caches can reject stale patches.
type Event struct {
	Type string `json:"type"`

	UserID         string      `json:"userId,omitempty"`
	ConversationID string      `json:"conversationId,omitempty"`
	Typing         bool        `json:"typing,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`

	TS int64 `json:"ts"`
}

// ParseFrame decodes and sanity-checks one inbound frame.
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "bad frame")
	}
	if f.Type == "" {
		return nil, errors.New("frame missing type")
	}
	return &f, nil
}

// EncodeEvent renders an outbound event; encoding errors collapse to nil,
// which broadcasters skip.
func EncodeEvent(ev *Event) []byte {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	return b
}
