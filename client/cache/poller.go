package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"snapcap/logger"
)

// FetchFunc loads fresh datasets from the backend. The returned map is
// installed wholesale; the version is the fetch start time.
type FetchFunc func(ctx context.Context) (map[string][]interface{}, error)

// Poller refreshes the cache on a fixed interval, with a debounce that
// collapses bursts of Trigger calls into one fetch and an in-flight guard
// that discards overlapping syncs.
type Poller struct {
	cache    *Cache
	fetch    FetchFunc
	interval time.Duration
	debounce time.Duration

	inFlight atomic.Bool
	kick     chan struct{}
	stopOnce sync.Once
	stop     chan struct{}
}

func NewPoller(c *Cache, fetch FetchFunc, interval, debounce time.Duration) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Poller{
		cache:    c,
		fetch:    fetch,
		interval: interval,
		debounce: debounce,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Start runs the initial fetch and then the periodic loop until Stop.
func (p *Poller) Start(ctx context.Context) {
	p.sync(ctx)
	go p.loop(ctx)
}

// Trigger requests an out-of-band refresh; bursts collapse into one.
func (p *Poller) Trigger() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.sync(ctx)
		case <-p.kick:
			if debounce == nil {
				debounce = time.NewTimer(p.debounce)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(p.debounce)
			}
		case <-debounceC:
			debounce = nil
			debounceC = nil
			p.sync(ctx)
		}
	}
}

// sync discards overlapping calls via the in-flight guard.
func (p *Poller) sync(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	version := time.Now().UnixMilli()
	data, err := p.fetch(ctx)
	if err != nil {
		logger.Warnf("[cache] sync failed: %v", err)
		return
	}
	for key, items := range data {
		p.cache.Replace(key, items, version)
	}
}
