package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldNotifySuppressesSelf(t *testing.T) {
	assert.False(t, ShouldNotify(Params{Recipient: "u1", FromUser: "u1", Type: "like"}))
}

func TestShouldNotifyDistinctUsers(t *testing.T) {
	assert.True(t, ShouldNotify(Params{Recipient: "u1", FromUser: "u2", Type: "like"}))
}

func TestShouldNotifyRequiresBothSides(t *testing.T) {
	assert.False(t, ShouldNotify(Params{Recipient: "", FromUser: "u2"}))
	assert.False(t, ShouldNotify(Params{Recipient: "u1", FromUser: ""}))
}

func TestRelayRegistration(t *testing.T) {
	t.Cleanup(ResetRelays)

	RegisterRelay(func(string, *Event) {})

	relayMu.RLock()
	n := len(relays)
	relayMu.RUnlock()
	assert.Equal(t, 1, n)

	ResetRelays()
	relayMu.RLock()
	n = len(relays)
	relayMu.RUnlock()
	assert.Zero(t, n)
}
