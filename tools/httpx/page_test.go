package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxWithQuery(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParsePageDefaults(t *testing.T) {
	page, limit, err := ParsePage(ctxWithQuery(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultLimit, limit)
}

func TestParsePageExplicit(t *testing.T) {
	page, limit, err := ParsePage(ctxWithQuery(t, "page=3&limit=50"))
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)
}

func TestParsePageRejectsBadInput(t *testing.T) {
	cases := []string{
		"page=0",
		"page=-1",
		"limit=0",
		"limit=101",
		"page=abc",
		"limit=abc",
	}
	for _, q := range cases {
		_, _, err := ParsePage(ctxWithQuery(t, q))
		assert.Error(t, err, q)
	}
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), Skip(1, 20))
	assert.Equal(t, int64(40), Skip(3, 20))
}
