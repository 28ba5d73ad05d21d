package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPrependEvictsOldest(t *testing.T) {
	r := NewRing(3)
	r.Prepend("a")
	r.Prepend("b")
	r.Prepend("c")
	r.Prepend("d")

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []interface{}{"d", "c", "b"}, r.Items())
}

func TestRingReplaceTruncates(t *testing.T) {
	r := NewRing(2)
	r.Replace([]interface{}{"a", "b", "c"})
	assert.Equal(t, []interface{}{"a", "b"}, r.Items())
}

func TestRingPatch(t *testing.T) {
	r := NewRing(5)
	r.Replace([]interface{}{"a", "b", "c"})

	ok := r.Patch(
		func(it interface{}) bool { return it == "b" },
		func(interface{}) interface{} { return "B" },
	)
	assert.True(t, ok)
	assert.Equal(t, []interface{}{"a", "B", "c"}, r.Items())

	ok = r.Patch(
		func(it interface{}) bool { return it == "zzz" },
		func(it interface{}) interface{} { return it },
	)
	assert.False(t, ok)
}

func TestRingItemsIsCopy(t *testing.T) {
	r := NewRing(3)
	r.Prepend("a")
	items := r.Items()
	items[0] = "mutated"
	assert.Equal(t, []interface{}{"a"}, r.Items())
}

func TestCacheStalePatchDropped(t *testing.T) {
	c := New(10)
	require.True(t, c.Replace("stories", []interface{}{"s1"}, 100))

	// a push carrying an older server timestamp must not win
	ok := c.Patch("stories", 50,
		func(interface{}) bool { return true },
		func(interface{}) interface{} { return "stale" },
	)
	assert.False(t, ok)
	assert.Equal(t, []interface{}{"s1"}, c.Get("stories"))
	assert.Equal(t, int64(100), c.Version("stories"))
}

func TestCacheFresherPatchWins(t *testing.T) {
	c := New(10)
	require.True(t, c.Replace("friends", []interface{}{"offline"}, 100))

	ok := c.Patch("friends", 200,
		func(interface{}) bool { return true },
		func(interface{}) interface{} { return "online" },
	)
	assert.True(t, ok)
	assert.Equal(t, []interface{}{"online"}, c.Get("friends"))
	assert.Equal(t, int64(200), c.Version("friends"))
}

func TestCacheStaleReplaceDropped(t *testing.T) {
	c := New(10)
	require.True(t, c.Replace("feed", []interface{}{"new"}, 200))
	assert.False(t, c.Replace("feed", []interface{}{"old"}, 100))
	assert.Equal(t, []interface{}{"new"}, c.Get("feed"))
}

func TestCachePrependCapped(t *testing.T) {
	c := New(2)
	c.Replace("stories", []interface{}{"a", "b"}, 1)
	c.Prepend("stories", "c", 2)
	assert.Equal(t, []interface{}{"c", "a"}, c.Get("stories"))
}

func TestCacheObservers(t *testing.T) {
	c := New(10)

	var keys []string
	unsub := c.Subscribe(func(key string) { keys = append(keys, key) })

	c.Replace("feed", []interface{}{"a"}, 1)
	c.Prepend("feed", "b", 2)
	assert.Equal(t, []string{"feed", "feed"}, keys)

	unsub()
	c.Replace("feed", []interface{}{"c"}, 3)
	assert.Len(t, keys, 2)
}

func TestCacheUnknownDataset(t *testing.T) {
	c := New(10)
	assert.Nil(t, c.Get("nope"))
	assert.Zero(t, c.Version("nope"))
}
