package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	redisinfra "knowledge-navigator-api/internal/infrastructure/persistence/redis"
	"knowledge-navigator-api/pkg/metrics"
)

const defaultCacheTTL = 24 * time.Hour

// CachedEmbedder 在真实 Embedder 外包一层 Redis 缓存
// 相同文本的向量可复用；缓存读写失败时直接穿透到底层 Embedder。
type CachedEmbedder struct {
	inner embedding.Embedder
	cache *redisinfra.Cache
	model string
	ttl   time.Duration
}

var _ embedding.Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(inner embedding.Embedder, cache *redisinfra.Cache, model string, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedEmbedder{
		inner: inner,
		cache: cache,
		model: model,
		ttl:   ttl,
	}
}

// EmbedStrings 实现 embedding.Embedder
func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if c.cache == nil {
		return c.embed(ctx, texts, opts...)
	}

	// 单条输入（典型为查询向量）走 singleflight，避免并发相同问题时重复调用
	if len(texts) == 1 {
		return c.embedSingle(ctx, texts[0], opts...)
	}

	out := make([][]float64, len(texts))
	missIdx := make([]int, 0, len(texts))
	for i, text := range texts {
		if v, ok := c.lookup(ctx, text); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	inputs := make([]string, 0, len(missIdx))
	for _, i := range missIdx {
		inputs = append(inputs, texts[i])
	}
	vectors, err := c.embed(ctx, inputs, opts...)
	if err != nil {
		return nil, err
	}
	for n, i := range missIdx {
		out[i] = vectors[n]
		c.store(ctx, texts[i], vectors[n])
	}
	return out, nil
}

func (c *CachedEmbedder) embedSingle(ctx context.Context, text string, opts ...embedding.Option) ([][]float64, error) {
	key := c.key(text)
	raw, err := c.cache.GetOrLoadSafe(ctx, key, c.ttl, func() (interface{}, error) {
		vectors, err := c.embed(ctx, []string{text}, opts...)
		if err != nil {
			return nil, err
		}
		if len(vectors) == 0 {
			return nil, nil
		}
		return vectors[0], nil
	})
	if err != nil {
		// 缓存层故障时穿透
		return c.embed(ctx, []string{text}, opts...)
	}
	var vec []float64
	if err := json.Unmarshal(raw, &vec); err != nil {
		return c.embed(ctx, []string{text}, opts...)
	}
	return [][]float64{vec}, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, text string) ([]float64, bool) {
	raw, err := c.cache.Get(ctx, c.key(text))
	if err != nil {
		metrics.EmbeddingCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	var vec []float64
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
		metrics.EmbeddingCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.EmbeddingCacheHits.WithLabelValues("hit").Inc()
	return vec, true
}

func (c *CachedEmbedder) store(ctx context.Context, text string, vec []float64) {
	// 写失败不影响调用方
	_ = c.cache.Set(ctx, c.key(text), vec, c.ttl)
}

func (c *CachedEmbedder) embed(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	start := time.Now()
	vectors, err := c.inner.EmbedStrings(ctx, texts, opts...)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EmbeddingCallDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return vectors, err
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}
