package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"snapcap/tools/errs"
	"snapcap/tools/httpx"
)

// SlidingWindow is an in-memory sliding-window counter keyed by user id with
// an IP fallback. Process-scoped: correct for a single instance only; see the
// Redis-backed limiter for multi-instance deployments.
type SlidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	window time.Duration
	max    int
	stop   chan struct{}
	once   sync.Once
	clock  func() time.Time
}

func NewSlidingWindow(window time.Duration, max int) *SlidingWindow {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 120
	}
	l := &SlidingWindow{
		hits:   make(map[string][]time.Time),
		window: window,
		max:    max,
		stop:   make(chan struct{}),
		clock:  time.Now,
	}
	go l.sweeper()
	return l
}

// Allow records a hit and reports whether the key is within its budget.
func (l *SlidingWindow) Allow(key string) bool {
	now := l.clock()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// Stop releases the sweeper; part of server shutdown.
func (l *SlidingWindow) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *SlidingWindow) sweeper() {
	t := time.NewTicker(l.window)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			cutoff := l.clock().Add(-l.window)
			l.mu.Lock()
			for k, ts := range l.hits {
				kept := ts[:0]
				for _, h := range ts {
					if h.After(cutoff) {
						kept = append(kept, h)
					}
				}
				if len(kept) == 0 {
					delete(l.hits, k)
				} else {
					l.hits[k] = kept
				}
			}
			l.mu.Unlock()
		}
	}
}

// RateLimit answers 429 once the caller exceeds the window budget.
func RateLimit(l *SlidingWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CurrentUserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !l.Allow(key) {
			httpx.Fail(c, errs.ErrRateLimited.Wrap())
			return
		}
		c.Next()
	}
}
