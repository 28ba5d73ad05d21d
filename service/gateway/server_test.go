package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	notifsvc "snapcap/module/notification/service"
	"snapcap/tools/security"
)

// A socket dropping while the database is unreachable must not crash the
// gateway: the document write is skipped and the disconnect path carries on
// to the offline broadcast.
func TestPresenceWritesSurviveUnavailableDB(t *testing.T) {
	s := NewServer("gw-test", security.DefaultOptions([]byte("k")))
	t.Cleanup(func() {
		s.Close()
		notifsvc.ResetRelays()
	})

	assert.NotPanics(t, func() { s.markOnline("user-1") })
	assert.NotPanics(t, func() { s.markOffline("user-1") })
}
