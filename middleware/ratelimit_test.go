package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowAllowsUpToMax(t *testing.T) {
	l := NewSlidingWindow(time.Minute, 3)
	defer l.Stop()

	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))

	// independent keys do not interfere
	assert.True(t, l.Allow("u2"))
}

func TestSlidingWindowRecoversAfterWindow(t *testing.T) {
	now := time.Now()
	l := NewSlidingWindow(time.Minute, 2)
	defer l.Stop()
	l.clock = func() time.Time { return now }

	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))

	// one second past the window the old hits fall out
	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("u1"))
}

func TestSlidingWindowSlides(t *testing.T) {
	now := time.Now()
	l := NewSlidingWindow(time.Minute, 2)
	defer l.Stop()
	l.clock = func() time.Time { return now }

	assert.True(t, l.Allow("u1"))
	now = now.Add(40 * time.Second)
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))

	// first hit expires, second still counts
	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))
}

// Mounted after auth, the limiter sees the user id: two users behind the same
// IP get independent budgets.
func TestRateLimitKeysByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewSlidingWindow(time.Minute, 1)
	defer l.Stop()

	do := func(userID string) int {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set(CtxUserIDKey, userID) }, RateLimit(l))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("u1"))
	assert.Equal(t, http.StatusTooManyRequests, do("u1"))
	assert.Equal(t, http.StatusOK, do("u2"))
}
