package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatmodel "snapcap/module/chat/model"
)

func TestPairIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, pair("u1", "u2"), pair("u2", "u1"))
	assert.Equal(t, [2]string{"a", "b"}, pair("b", "a"))
}

func TestConversationOtherAndHas(t *testing.T) {
	c := &chatmodel.Conversation{Participants: pair("u2", "u1")}

	assert.Equal(t, "u2", c.Other("u1"))
	assert.Equal(t, "u1", c.Other("u2"))
	assert.True(t, c.Has("u1"))
	assert.True(t, c.Has("u2"))
	assert.False(t, c.Has("u3"))
}

func TestValidMsgType(t *testing.T) {
	for _, mt := range []string{chatmodel.MsgText, chatmodel.MsgImage, chatmodel.MsgVideo, chatmodel.MsgAudio, chatmodel.MsgFile} {
		assert.True(t, chatmodel.ValidMsgType(mt), mt)
	}
	assert.False(t, chatmodel.ValidMsgType("sticker"))
}

// Bad input is rejected before the conversation is ever loaded, so these run
// without a store.
func TestSendMessageRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	_, err := SendMessage(ctx, SendParams{ConversationID: "c1", SenderID: "u1", Content: "hi", Type: "sticker"})
	assert.Error(t, err)

	_, err = SendMessage(ctx, SendParams{ConversationID: "c1", SenderID: "u1", Content: "", Type: chatmodel.MsgText})
	assert.Error(t, err)
}

// The wire shape clients depend on: camelCase keys, content and type intact,
// and a fresh message reads back unread.
func TestMessageJSONRoundTrip(t *testing.T) {
	m := chatmodel.Message{
		MessageID:      "m1",
		ConversationID: "c1",
		SenderID:       "u1",
		ReceiverID:     "u2",
		Content:        "see you at 8",
		Type:           chatmodel.MsgText,
		CreateTime:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"messageId":"m1"`)
	assert.Contains(t, string(raw), `"isRead":false`)

	var back chatmodel.Message
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, m.Content, back.Content)
	assert.Equal(t, m.Type, back.Type)
	assert.False(t, back.IsRead)
	assert.True(t, back.CreateTime.Equal(m.CreateTime))
}
