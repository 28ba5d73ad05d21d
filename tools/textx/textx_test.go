package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMentions(t *testing.T) {
	got := ExtractMentions("hey @alice check this with @bob_99 and @alice again")
	assert.Equal(t, []string{"alice", "bob_99"}, got)
}

func TestExtractMentionsNone(t *testing.T) {
	assert.Empty(t, ExtractMentions("no mentions here"))
}

func TestNormalizeHashtag(t *testing.T) {
	cases := map[string]string{
		"Sunset":     "#sunset",
		"#GoldenHR":  "#goldenhr",
		"  #beach  ": "#beach",
		"snow_day":   "#snow_day",
		"c@fé!":      "#cf",
		"!!!":        "",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHashtag(in), in)
	}
}

func TestWellFormedHashtag(t *testing.T) {
	assert.True(t, WellFormedHashtag("#sunset"))
	assert.False(t, WellFormedHashtag("sunset"))
	assert.False(t, WellFormedHashtag("#"))
	assert.False(t, WellFormedHashtag("#two words"))
}
