package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerInitialFetch(t *testing.T) {
	c := New(10)
	fetch := func(context.Context) (map[string][]interface{}, error) {
		return map[string][]interface{}{"feed": {"p1", "p2"}}, nil
	}
	p := NewPoller(c, fetch, time.Hour, 10*time.Millisecond)
	defer p.Stop()

	p.Start(context.Background())
	assert.Equal(t, []interface{}{"p1", "p2"}, c.Get("feed"))
	assert.NotZero(t, c.Version("feed"))
}

func TestPollerTriggerDebounces(t *testing.T) {
	c := New(10)
	var calls atomic.Int32
	fetch := func(context.Context) (map[string][]interface{}, error) {
		calls.Add(1)
		return nil, nil
	}
	p := NewPoller(c, fetch, time.Hour, 30*time.Millisecond)
	defer p.Stop()

	p.Start(context.Background())
	require.Equal(t, int32(1), calls.Load())

	// a burst of triggers collapses into a single fetch
	for i := 0; i < 10; i++ {
		p.Trigger()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPollerInFlightGuard(t *testing.T) {
	c := New(10)
	block := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (map[string][]interface{}, error) {
		calls.Add(1)
		<-block
		return nil, nil
	}
	p := NewPoller(c, fetch, time.Hour, time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.sync(context.Background())
		close(done)
	}()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	// overlapping sync returns immediately without a second fetch
	p.sync(context.Background())
	assert.Equal(t, int32(1), calls.Load())

	close(block)
	<-done
}

func TestPollerFetchErrorKeepsCache(t *testing.T) {
	c := New(10)
	c.Replace("feed", []interface{}{"keep"}, 1)

	fetch := func(context.Context) (map[string][]interface{}, error) {
		return nil, context.DeadlineExceeded
	}
	p := NewPoller(c, fetch, time.Hour, time.Millisecond)
	p.sync(context.Background())

	assert.Equal(t, []interface{}{"keep"}, c.Get("feed"))
}
