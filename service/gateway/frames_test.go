package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"join_conversation","conversationId":"c1"}`))
	require.NoError(t, err)
	assert.Equal(t, FrameJoinConversation, f.Type)
	assert.Equal(t, "c1", f.ConversationID)
}

func TestParseFrameInteraction(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"interaction","interaction":"like","targetUserId":"u2","postId":"p1"}`))
	require.NoError(t, err)
	assert.Equal(t, FrameInteraction, f.Type)
	assert.Equal(t, "like", f.Interaction)
	assert.Equal(t, "u2", f.TargetUserID)
	assert.Equal(t, "p1", f.PostID)
}

func TestParseFrameRejectsBadInput(t *testing.T) {
	_, err := ParseFrame([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseFrame([]byte(`{"conversationId":"c1"}`))
	assert.Error(t, err)
}

func TestEncodeEvent(t *testing.T) {
	b := EncodeEvent(&Event{Type: EventUserTyping, UserID: "u1", ConversationID: "c1", Typing: true, TS: 123})
	require.NotNil(t, b)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, EventUserTyping, m["type"])
	assert.Equal(t, true, m["typing"])
	assert.Equal(t, float64(123), m["ts"])
}
