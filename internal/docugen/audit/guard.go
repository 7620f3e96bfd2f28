package audit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/models"
)

const guardKeyPrefix = "docugen:audit:"

// RedisGuard marks each document hash in Redis before delegating to the
// wrapped store, so repeated generations skip the database round trip.
type RedisGuard struct {
	client *redis.Client
	next   Store
	ttl    time.Duration
	log    logger.Logger
}

func NewRedisGuard(client *redis.Client, next Store, ttl time.Duration, log logger.Logger) *RedisGuard {
	return &RedisGuard{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    log.WithFields(map[string]interface{}{"component": "audit-guard"}),
	}
}

func GuardKey(documentHash string) string {
	return guardKeyPrefix + documentHash
}

func (g *RedisGuard) Save(ctx context.Context, info *models.TraceabilityInfo) (bool, error) {
	key := GuardKey(info.DocumentHash)

	fresh, err := g.client.SetNX(ctx, key, info.SourceDataHash, g.ttl).Result()
	if err != nil {
		// Redis being down must not lose audit records.
		g.log.Warn("Audit guard unavailable, writing through", map[string]interface{}{
			"error":        err.Error(),
			"documentHash": info.DocumentHash,
		})
		return g.next.Save(ctx, info)
	}
	if !fresh {
		g.log.Debug("Audit record already present", map[string]interface{}{"documentHash": info.DocumentHash})
		return false, nil
	}

	inserted, err := g.next.Save(ctx, info)
	if err != nil {
		if delErr := g.client.Del(ctx, key).Err(); delErr != nil {
			g.log.Warn("Failed to release audit guard", map[string]interface{}{"error": delErr.Error()})
		}
		return false, err
	}
	return inserted, nil
}
