package repository

import (
	"context"

	"knowledge-navigator-api/internal/domain/entity"
)

// VectorRepository 定义应用层对向量存储的最小依赖（port）
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsureDocumentChunksCollection(ctx context.Context) error
	// SearchChunks 按余弦相似度检索 topK 个分块，Score 为相似度（1-distance）
	SearchChunks(ctx context.Context, queryVector []float32, topK int) ([]*entity.ScoredChunk, error)
	// DeleteChunksBySource 按来源文档过滤删除全部分块
	DeleteChunksBySource(ctx context.Context, sourceID string) error
	// InsertChunks 批量写入分块，vectors 与 chunks 一一对应
	InsertChunks(ctx context.Context, chunks []*entity.DocumentChunk, vectors [][]float32) error
	// ListSourceIDs 返回索引中全部去重后的来源文档名
	ListSourceIDs(ctx context.Context) ([]string, error)
}
