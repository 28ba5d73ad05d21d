package caption

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRng(n int) func(int) int {
	return func(max int) int { return n % max }
}

func TestGenerateWithoutClientUsesFallback(t *testing.T) {
	g := NewGenerator("", "")
	g.rng = fixedRng(0)

	res := g.Generate(context.Background(), nil, "image/jpeg", Context{})
	assert.False(t, res.Generated)
	assert.NotEmpty(t, res.Caption)
	assert.Len(t, res.Hashtags, HashtagCount)
}

func TestFallbackKeywordMatch(t *testing.T) {
	g := NewGenerator("", "")
	g.rng = fixedRng(0)

	res := g.fallback(Context{Location: "Bondi Beach", Mood: "happy"})
	assert.Equal(t, "Salt in the air, sand in my heart", res.Caption)
	assert.Len(t, res.Hashtags, HashtagCount)
	assert.False(t, res.Generated)
}

func TestFallbackEmptyContext(t *testing.T) {
	g := NewGenerator("", "")
	g.rng = fixedRng(3)

	res := g.fallback(Context{})
	assert.NotEmpty(t, res.Caption)
	assert.Len(t, res.Hashtags, HashtagCount)
}

func TestPadHashtagsTruncates(t *testing.T) {
	in := []string{"#a", "#b", "#c", "#d", "#e", "#f"}
	out := padHashtags(in, fixedRng(0))
	assert.Equal(t, []string{"#a", "#b", "#c", "#d"}, out)
}

func TestPadHashtagsFillsFromGenericPool(t *testing.T) {
	out := padHashtags([]string{"#solo"}, fixedRng(0))
	require.Len(t, out, HashtagCount)
	assert.Equal(t, "#solo", out[0])
	seen := map[string]struct{}{}
	for _, tag := range out {
		_, dup := seen[tag]
		assert.False(t, dup, tag)
		seen[tag] = struct{}{}
	}
}

func TestPadHashtagsDedupesInput(t *testing.T) {
	out := padHashtags([]string{"#dup", "#dup", "#dup"}, fixedRng(2))
	require.Len(t, out, HashtagCount)
	assert.Equal(t, "#dup", out[0])
}

func TestPadHashtagsSkipsGenericAlreadyPresent(t *testing.T) {
	// "#snapcap" is genericTags[0]; padding must not repeat it
	out := padHashtags([]string{"#snapcap"}, fixedRng(0))
	require.Len(t, out, HashtagCount)
	seen := map[string]struct{}{}
	for _, tag := range out {
		_, dup := seen[tag]
		assert.False(t, dup, tag)
		seen[tag] = struct{}{}
	}
}

func TestStripQuotes(t *testing.T) {
	cases := map[string]string{
		`"hello"`:       "hello",
		`'hello'`:       "hello",
		"“hello”":       "hello",
		`  "hello"  `:   "hello",
		"no quotes":     "no quotes",
		`"mixed' ends"`: `mixed' ends`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripQuotes(in), in)
	}
}

func TestParseHashtags(t *testing.T) {
	got := ParseHashtags("#Sunset, #beach\n#GOLDEN_hour junk!!! #ok")
	assert.Equal(t, []string{"#sunset", "#beach", "#golden_hour", "#junk", "#ok"}, got)
}

func TestCannedPoolShapes(t *testing.T) {
	for _, e := range cannedPool {
		assert.NotEmpty(t, e.caption)
		assert.Len(t, e.hashtags, HashtagCount)
	}
}
