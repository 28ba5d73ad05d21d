package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	redisx "snapcap/service/storage/redis"
)

// Presence keys:
//
//	presence:<user>      -> gateway id, TTL bounds staleness when a node dies
//	lastseen:<user>      -> unix seconds of last disconnect
const presenceTTL = 90 * time.Second

func presenceKey(user string) string { return "presence:" + user }
func lastSeenKey(user string) string { return "lastseen:" + user }

// MarkOnline records the user against the gateway that holds the socket.
func MarkOnline(ctx context.Context, user, gatewayID string) error {
	rdb, ok := redisx.TryGetRedis()
	if !ok {
		return errors.New("redis not initialized")
	}
	return rdb.Set(ctx, presenceKey(user), gatewayID, presenceTTL).Err()
}

// RefreshOnline renews the TTL; called from the heartbeat path.
func RefreshOnline(ctx context.Context, user string) error {
	rdb, ok := redisx.TryGetRedis()
	if !ok {
		return errors.New("redis not initialized")
	}
	return rdb.Expire(ctx, presenceKey(user), presenceTTL).Err()
}

// MarkOffline drops the presence key and stamps last-seen.
func MarkOffline(ctx context.Context, user string, lastSeen time.Time) error {
	rdb, ok := redisx.TryGetRedis()
	if !ok {
		return errors.New("redis not initialized")
	}
	pipe := rdb.TxPipeline()
	pipe.Del(ctx, presenceKey(user))
	pipe.Set(ctx, lastSeenKey(user), lastSeen.Unix(), 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Lookup reports whether the user currently holds a live socket anywhere.
func Lookup(ctx context.Context, user string) (gatewayID string, online bool, err error) {
	rdb, ok := redisx.TryGetRedis()
	if !ok {
		return "", false, errors.New("redis not initialized")
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
