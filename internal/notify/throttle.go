package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// sweepThreshold is the map size above which expired records are pruned.
const sweepThreshold = 4096

// MemoryThrottle keeps last-emitted timestamps in process memory.
type MemoryThrottle struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemoryThrottle creates an empty in-process throttle.
func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{last: make(map[string]time.Time)}
}

// Allow implements Throttle.
func (t *MemoryThrottle) Allow(_ context.Context, key string, now time.Time, interval time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.last[key]; ok && now.Sub(last) < interval {
		return false, nil
	}
	t.last[key] = now

	if len(t.last) > sweepThreshold {
		for k, ts := range t.last {
			if now.Sub(ts) >= interval {
				delete(t.last, k)
			}
		}
	}
	return true, nil
}

// RedisThrottle shares the throttle state between instances. A key lives for
// one interval; SET NX only succeeds once the previous emission expired.
type RedisThrottle struct {
	client *redis.Client
	prefix string
}

// NewRedisThrottle creates a throttle on client.
func NewRedisThrottle(client *redis.Client) *RedisThrottle {
	return &RedisThrottle{client: client, prefix: "diet:throttle:"}
}

// Allow implements Throttle. Expiry is measured by the Redis server clock.
func (t *RedisThrottle) Allow(ctx context.Context, key string, now time.Time, interval time.Duration) (bool, error) {
	return t.client.SetNX(ctx, t.prefix+key, now.UnixMilli(), interval).Result()
}
