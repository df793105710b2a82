// internal/common/llm/cache.go
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/common/metrics"
)

// CachedEmbedder is a cache-aside wrapper around an Embedder backed by Redis.
// Cache failures degrade to a direct call.
type CachedEmbedder struct {
	next   Embedder
	redis  *redis.Client
	model  string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedEmbedder(next Embedder, rdb *redis.Client, model string, ttl time.Duration, log logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		next:   next,
		redis:  rdb,
		model:  model,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "embedding-cache"}),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
	}

	vectors := make([][]float32, len(texts))
	var missing []int

	cached, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("embedding cache read failed", map[string]interface{}{"error": err.Error()})
		cached = make([]interface{}, len(texts))
	}

	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			missing = append(missing, i)
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(s), &vec); err != nil {
			missing = append(missing, i)
			continue
		}
		vectors[i] = vec
	}

	metrics.EmbeddingCacheLookups.WithLabelValues("hit").Add(float64(len(texts) - len(missing)))
	metrics.EmbeddingCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))

	if len(missing) == 0 {
		return vectors, nil
	}

	pending := make([]string, len(missing))
	for j, i := range missing {
		pending[j] = texts[i]
	}

	fresh, err := c.next.Embed(ctx, pending)
	if err != nil {
		return nil, err
	}

	pipe := c.redis.Pipeline()
	for j, i := range missing {
		vectors[i] = fresh[j]
		if data, err := json.Marshal(fresh[j]); err == nil {
			pipe.Set(ctx, keys[i], data, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("embedding cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return vectors, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("hr:embedding:%s:%s", c.model, hex.EncodeToString(sum[:]))
}
