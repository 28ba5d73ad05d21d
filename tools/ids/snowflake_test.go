package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUniqueAndMonotonic(t *testing.T) {
	const n = 5000
	seen := make(map[int64]struct{}, n)
	prev := int64(0)
	for i := 0; i < n; i++ {
		id := Generate()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestSetNodeIDBounds(t *testing.T) {
	SetNodeID(2000) // out of range falls back to the default node
	assert.EqualValues(t, 1, defaultGen.nodeID)

	SetNodeID(7)
	assert.EqualValues(t, 7, defaultGen.nodeID)

	SetNodeID(1) // restore
}
