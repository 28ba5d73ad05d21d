package mgo

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"snapcap/logger"
)

type Config struct {
	URI         string
	Database    string
	Username    string
	Password    string
	MaxPoolSize uint64
}

// Manager owns the Mongo client. It connects asynchronously with exponential
// backoff, closes readyCh once on first success, and keeps a health loop that
// reconnects after repeated ping failures.
type Manager struct {
	mu        sync.RWMutex
	db        *mongo.Database
	readyCh   chan struct{}
	readyOnce sync.Once
	lastErr   atomic.Value // error
}

var globalMgr = Manager{readyCh: make(chan struct{})}

// StartAsync runs until ctx is cancelled.
func StartAsync(ctx context.Context, cfg Config) {
	go func() {
		const (
			baseBackoff = 200 * time.Millisecond
			maxBackoff  = 5 * time.Second
			healthEvery = 10 * time.Second
			failThresh  = 3
		)

		for {
			attempt := 0
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				db, err := connect(ctx, cfg)
				if err == nil {
					globalMgr.mu.Lock()
					globalMgr.db = db
					globalMgr.mu.Unlock()
					globalMgr.readyOnce.Do(func() { close(globalMgr.readyCh) })
					break
				}

				globalMgr.lastErr.Store(err)
				logger.Warnf("mongo connect failed (attempt %d): %v", attempt, err)

				backoff := baseBackoff << attempt
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				jitter := time.Duration(rand.Int63n(int64(backoff/5) + 1))
				timer := time.NewTimer(backoff - jitter/2)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
				if attempt < 6 {
					attempt++
				}
			}

			fail := 0
			ticker := time.NewTicker(healthEvery)
			func() {
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						disconnect()
						return
					case <-ticker.C:
						globalMgr.mu.RLock()
						db := globalMgr.db
						globalMgr.mu.RUnlock()
						if db == nil {
							return
						}
						if err := db.Client().Ping(ctx, nil); err != nil {
							fail++
							globalMgr.lastErr.Store(err)
							if fail >= failThresh {
								disconnect()
								return
							}
						} else {
							fail = 0
						}
					}
				}
			}()

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
}

func connect(ctx context.Context, cfg Config) (*mongo.Database, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cli, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(cctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, err
	}
	return cli.Database(cfg.Database), nil
}

func disconnect() {
	globalMgr.mu.Lock()
	defer globalMgr.mu.Unlock()
	if globalMgr.db != nil {
		_ = globalMgr.db.Client().Disconnect(context.Background())
		globalMgr.db = nil
	}
}

// Ready is closed after the first successful connection.
func Ready() <-chan struct{} { return globalMgr.readyCh }

// WaitReady blocks until connected or ctx is done.
func WaitReady(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-globalMgr.readyCh:
		return nil
	}
}

// Err returns the most recent connection error.
func Err() error {
	if v := globalMgr.lastErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// GetDB panics when Mongo is not ready; use TryGetDB on shutdown paths.
func GetDB() *mongo.Database {
	globalMgr.mu.RLock()
	defer globalMgr.mu.RUnlock()
	if globalMgr.db == nil {
		panic("mongo not ready: wait Ready() or use TryGetDB()")
	}
	return globalMgr.db
}

// TryGetDB reports availability instead of panicking. Disconnect handlers use
// this so a closed database connection never crashes the event loop.
func TryGetDB() (*mongo.Database, bool) {
	globalMgr.mu.RLock()
	defer globalMgr.mu.RUnlock()
	if globalMgr.db == nil {
		return nil, false
	}
	return globalMgr.db, true
}
