// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"

	"knowledge-navigator-api/internal/application/chat"
	"knowledge-navigator-api/internal/application/ingest"
	"knowledge-navigator-api/internal/config"
	"knowledge-navigator-api/internal/domain/repository"
	infraembedding "knowledge-navigator-api/internal/infrastructure/embedding"
	"knowledge-navigator-api/internal/infrastructure/llm"
	"knowledge-navigator-api/internal/infrastructure/messaging"
	"knowledge-navigator-api/internal/infrastructure/persistence/jsonfile"
	"knowledge-navigator-api/internal/infrastructure/persistence/milvus"
	"knowledge-navigator-api/internal/infrastructure/persistence/postgres"
	"knowledge-navigator-api/internal/infrastructure/persistence/redis"
	"knowledge-navigator-api/internal/infrastructure/websearch"
	"knowledge-navigator-api/internal/interfaces/http/handler"
	"knowledge-navigator-api/internal/interfaces/http/middleware"
	"knowledge-navigator-api/internal/interfaces/http/router"
	"knowledge-navigator-api/pkg/logger"
)

// HistoryBackend 历史存储后端，Pg 仅在 backend=postgres 时非空
type HistoryBackend struct {
	Repo repository.HistoryRepository
	Pg   *postgres.Client
}

// ProvideHistoryBackend 按配置选择 PostgreSQL 或 NDJSON 文件作为历史存储
func ProvideHistoryBackend(cfg *config.Config) (*HistoryBackend, func(), error) {
	switch cfg.History.Backend {
	case "postgres":
		client, err := postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("history backend postgres: %w", err)
		}
		repo, err := postgres.NewHistoryRepository(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		cleanup := func() {
			_ = client.Close()
		}
		return &HistoryBackend{Repo: repo, Pg: client}, cleanup, nil
	default:
		store, err := jsonfile.NewHistoryStore(cfg.History.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("history backend file: %w", err)
		}
		return &HistoryBackend{Repo: store}, func() {}, nil
	}
}

// ProvideHistoryRepository 从后端容器取出仓储接口
func ProvideHistoryRepository(b *HistoryBackend) repository.HistoryRepository {
	return b.Repo
}

// ProvidePostgresClient 从后端容器取出 PostgreSQL 客户端（可能为 nil）
func ProvidePostgresClient(b *HistoryBackend) *postgres.Client {
	return b.Pg
}

// ProvideRedisClientOptional 提供 Redis 客户端，不可达时降级（无缓存/无限流/无队列）
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and rate limiting disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideCache 提供缓存服务
func ProvideCache(client *redis.Client) *redis.Cache {
	if client == nil {
		return nil
	}
	return redis.NewCache(client)
}

// ProvideRateLimiter 提供限流器
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideProducer 提供消息生产者，仅在启用消息队列时创建
func ProvideProducer(cfg *config.Config, client *redis.Client) *messaging.Producer {
	if !cfg.Messaging.Enabled || client == nil {
		return nil
	}
	return messaging.NewProducer(client.Redis(), cfg.Messaging.StreamMaxLen)
}

// ProvideMilvusClientOptional 提供 Milvus 客户端，不可达时禁用向量检索
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, vector features disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideVectorRepository 提供向量仓储
func ProvideVectorRepository(client *milvus.Client) repository.VectorRepository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

// ProvideEmbedderOptional 提供 Embedder，配置了 Redis 缓存时包一层向量缓存
func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config, cache *redis.Cache) einoembedding.Embedder {
	base, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, vector features disabled", "error", err.Error())
		return nil
	}
	if cache != nil && cfg.Embedding.CacheTTL > 0 {
		return infraembedding.NewCachedEmbedder(base, cache, cfg.Embedding.Model, cfg.Embedding.CacheTTL)
	}
	return base
}

// ProvideChatModel 提供默认 ChatModel，不可用时直接失败
func ProvideChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	factory := llm.NewEinoFactory(cfg)
	chatModel, err := factory.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("default chat model: %w", err)
	}
	return chatModel, nil
}

// ProvideWebSearcherOptional 提供网络搜索客户端，未配置密钥时禁用网络回退
func ProvideWebSearcherOptional(ctx context.Context, cfg *config.Config) chat.WebSearcher {
	if cfg.WebSearch.APIKey == "" || cfg.WebSearch.EngineID == "" {
		logger.Warn(ctx, "web search credentials missing, web fallback disabled")
		return nil
	}
	searcher, err := websearch.NewGoogleSearcher(ctx, &cfg.WebSearch)
	if err != nil {
		logger.Warn(ctx, "web search not available, web fallback disabled", "error", err.Error())
		return nil
	}
	return searcher
}

// ProvideRedundancyDetector 提供重复问题检测器
func ProvideRedundancyDetector(cfg *config.Config, embedder einoembedding.Embedder, history repository.HistoryRepository) *chat.RedundancyDetector {
	return chat.NewRedundancyDetector(embedder, history, cfg.Chat.RedundancyThreshold)
}

// ProvideSessionStore 提供会话注册表
func ProvideSessionStore(cfg *config.Config) *chat.SessionStore {
	return chat.NewSessionStore(cfg.Chat.HistoryMaxTurns)
}

// ProvideChatEngine 提供问答引擎
func ProvideChatEngine(
	cfg *config.Config,
	embedder einoembedding.Embedder,
	chatModel model.BaseChatModel,
	vector repository.VectorRepository,
	web chat.WebSearcher,
	history repository.HistoryRepository,
	redundancy *chat.RedundancyDetector,
	sessions *chat.SessionStore,
) *chat.Engine {
	return chat.NewEngine(embedder, chatModel, vector, web, history, redundancy, sessions, chat.Options{
		TopK:                 cfg.Chat.TopK,
		JudgeEnabled:         cfg.Chat.JudgeEnabled,
		JudgeContextMaxChars: cfg.Chat.JudgeContextMaxChars,
		Temperature:          cfg.Chat.Temperature,
		HistoryMaxTurns:      cfg.Chat.HistoryMaxTurns,
		WebResultCount:       cfg.WebSearch.ResultCount,
	})
}

// ProvideIndexer 提供文档索引器
func ProvideIndexer(cfg *config.Config, embedder einoembedding.Embedder, vector repository.VectorRepository) *ingest.Indexer {
	return ingest.NewIndexer(embedder, vector,
		cfg.Ingest.ChunkSizeRunes,
		cfg.Ingest.ChunkOverlapRunes,
		cfg.Ingest.EmbeddingBatch,
	)
}

// ProvideRouterHandlers 聚合全部 HTTP 处理器
func ProvideRouterHandlers(
	health *handler.HealthHandler,
	chatHandler *handler.ChatHandler,
	document *handler.DocumentHandler,
	history *handler.HistoryHandler,
) router.Handlers {
	return router.Handlers{
		Health:   health,
		Chat:     chatHandler,
		Document: document,
		History:  history,
	}
}
