// Package cache keeps generated documents in Redis so a retried job returns
// the document produced by its first successful attempt.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/metrics"
	dtrace "docugen-workers/internal/docugen/trace"
	"docugen-workers/internal/models"
)

const keyPrefix = "docugen:doc:"

// Entry is what the cache stores for one request.
type Entry struct {
	Document  *models.GeneratedDocument `json:"document"`
	Execution *models.PipelineExecution `json:"execution"`
}

type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func New(client *redis.Client, ttl time.Duration, log logger.Logger) *DocumentCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DocumentCache{client: client, ttl: ttl, log: log.Named("document-cache")}
}

// Key identifies a request for a given template version. The version is part
// of the key so a catalog update never serves a stale document.
func Key(req *models.GenerationRequest, templateVersion string) (string, error) {
	h, err := dtrace.SourceHash(req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s:%s", keyPrefix, h, templateVersion), nil
}

// Get returns the cached entry for key. Redis failures are logged and
// reported as a miss.
func (c *DocumentCache) Get(ctx context.Context, key string) (*Entry, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.DocumentCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.DocumentCacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("Document cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil || e.Document == nil {
		metrics.DocumentCacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("Discarding unreadable cache entry", map[string]interface{}{"key": key})
		return nil, false
	}
	metrics.DocumentCacheLookups.WithLabelValues("hit").Inc()
	return &e, true
}

// Put stores e under key. Failures are logged; the caller still has the
// document.
func (c *DocumentCache) Put(ctx context.Context, key string, e *Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		c.log.Warn("Document cache encode failed", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("Document cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
