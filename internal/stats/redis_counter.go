// Package stats keeps per format pair conversion counters in a Redis hash.
package stats

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"convertd/internal/conversion"
	"convertd/internal/pkg/logger"
)

type RedisCounter struct {
	rdb *redis.Client
	key string
	log *logger.Logger
}

func NewRedisCounter(rdb *redis.Client, key string, log *logger.Logger) *RedisCounter {
	return &RedisCounter{rdb: rdb, key: key, log: log.WithComponent("stats")}
}

// Field is the hash field counting outcomes like o: "<from>><to>:<status>".
func Field(o conversion.Outcome) string {
	return o.FromFormat + ">" + o.ToFormat + ":" + string(o.Status)
}

// Observe increments the counter for o. Redis errors are logged and dropped.
func (c *RedisCounter) Observe(ctx context.Context, o conversion.Outcome) {
	if err := c.rdb.HIncrBy(ctx, c.key, Field(o), 1).Err(); err != nil {
		c.log.LogError(ctx, "stats increment failed", err, "field", Field(o))
	}
}

// Snapshot returns every counter in the hash.
func (c *RedisCounter) Snapshot(ctx context.Context) (map[string]int64, error) {
	raw, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, err
	}
	return parseCounters(raw), nil
}

// parseCounters converts HGETALL output, skipping values that are not integers.
func parseCounters(raw map[string]string) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out
}
