package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(maxPerUser int) (*ConnManager, func()) {
	now := time.Unix(0, 0)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	m := NewConnManagerWithConf(ManagerConf{MaxPerUser: maxPerUser, Clock: clock}, "gw-test")
	return m, func() { m.Close() }
}

func TestAddAndUserIndex(t *testing.T) {
	m, done := testManager(0)
	defer done()

	m.Add("c1", "u1", nil)
	m.Add("c2", "u1", nil)
	m.Add("c3", "u2", nil)

	assert.Len(t, m.UserConns("u1"), 2)
	assert.Len(t, m.UserConns("u2"), 1)
	assert.Len(t, m.AllConns(), 3)
	assert.True(t, m.UserOnlineLocal("u1"))
	assert.False(t, m.UserOnlineLocal("u3"))
}

func TestMaxPerUserEvictsOldest(t *testing.T) {
	m, done := testManager(2)
	defer done()

	m.Add("c1", "u1", nil)
	m.Add("c2", "u1", nil)
	m.Add("c3", "u1", nil)

	conns := m.UserConns("u1")
	require.Len(t, conns, 2)
	ids := map[string]bool{}
	for _, c := range conns {
		ids[c.ConnID] = true
	}
	assert.False(t, ids["c1"])
	assert.True(t, ids["c2"])
	assert.True(t, ids["c3"])
}

func TestRoomsJoinLeave(t *testing.T) {
	m, done := testManager(0)
	defer done()

	m.Add("c1", "u1", nil)
	m.Add("c2", "u2", nil)

	room := RoomConversation("conv1")
	m.Join("c1", room)
	m.Join("c2", room)
	assert.Len(t, m.RoomConns(room), 2)

	m.Leave("c1", room)
	conns := m.RoomConns(room)
	require.Len(t, conns, 1)
	assert.Equal(t, "c2", conns[0].ConnID)

	// joining a room with an unknown conn is a no-op
	m.Join("nope", room)
	assert.Len(t, m.RoomConns(room), 1)
}

func TestRemoveLeavesRoomsAndClosesSend(t *testing.T) {
	m, done := testManager(0)
	defer done()

	c := m.Add("c1", "u1", nil)
	m.Join("c1", RoomUser("u1"))
	m.Join("c1", RoomFollowers("u2"))

	removed := m.Remove("c1")
	require.NotNil(t, removed)
	assert.Empty(t, m.RoomConns(RoomUser("u1")))
	assert.Empty(t, m.RoomConns(RoomFollowers("u2")))
	assert.False(t, m.UserOnlineLocal("u1"))

	_, open := <-c.Send
	assert.False(t, open)

	assert.Nil(t, m.Remove("c1"))
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "user:u1", RoomUser("u1"))
	assert.Equal(t, "followers:u1", RoomFollowers("u1"))
	assert.Equal(t, "conv:c1", RoomConversation("c1"))
}
