//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"knowledge-navigator-api/internal/config"
	"knowledge-navigator-api/internal/interfaces/http/handler"
	"knowledge-navigator-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		HistorySet,
		RedisSet,
		VectorSet,
		ChatSet,
		RouterSet,
	)
	return nil, nil, nil
}

// HistorySet 历史存储提供者集合
var HistorySet = wire.NewSet(
	ProvideHistoryBackend,
	ProvideHistoryRepository,
	ProvidePostgresClient,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideCache,
	ProvideRateLimiter,
	ProvideProducer,
)

// VectorSet 向量检索提供者集合（Milvus + Embedder，可降级）
var VectorSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideVectorRepository,
	ProvideEmbedderOptional,
)

// ChatSet 问答引擎提供者集合
var ChatSet = wire.NewSet(
	ProvideChatModel,
	ProvideWebSearcherOptional,
	ProvideRedundancyDetector,
	ProvideSessionStore,
	ProvideChatEngine,
	ProvideIndexer,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewChatHandler,
	handler.NewDocumentHandler,
	handler.NewHistoryHandler,
	ProvideRouterHandlers,
	router.New,
)
