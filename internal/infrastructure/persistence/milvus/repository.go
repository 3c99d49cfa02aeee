// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
)

// listSourcesQueryLimit 去重列举来源时一次查询的分块上限
const listSourcesQueryLimit = 16384

// Repository 文档分块向量仓储，实现 repository.VectorRepository
type Repository struct {
	client *Client
}

var _ repository.VectorRepository = (*Repository)(nil)

// NewRepository 创建向量仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// EnsureDocumentChunksCollection 确保 document_chunks 集合与索引可用（不存在则创建）
// 约束：不做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureDocumentChunksCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionDocumentChunks)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.createCollection(ctx); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入
		_ = r.createIndex(ctx)
	}

	return r.client.LoadCollection(ctx, CollectionDocumentChunks)
}

func (r *Repository) createCollection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", CollectionDocumentChunks)))
	defer span.End()

	schema := DocumentChunksSchema()
	schema.CollectionName = r.client.CollectionName(CollectionDocumentChunks)

	if err := r.client.milvus.CreateCollection(ctx, schema, milvusentity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (r *Repository) createIndex(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", CollectionDocumentChunks)))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocumentChunks)

	idx, err := milvusentity.NewIndexHNSW(
		milvusentity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// SearchChunks 按余弦相似度检索 topK 个分块
func (r *Repository) SearchChunks(ctx context.Context, queryVector []float32, topK int) ([]*entity.ScoredChunk, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchChunks",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocumentChunks)

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"id", "source_id", "page", "content_type", "text_content"},
		[]milvusentity.Vector{milvusentity.FloatVector(queryVector)},
		"vector",
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	chunks := scoredChunksFromResults(results)

	span.SetAttributes(attribute.Int("result_count", len(chunks)))
	return chunks, nil
}

// scoredChunksFromResults 将搜索结果还原为带分数的领域分块
// COSINE 度量下 SDK 返回的即相似度，越大越相关，保持原值。
func scoredChunksFromResults(results []client.SearchResult) []*entity.ScoredChunk {
	var chunks []*entity.ScoredChunk
	for _, result := range results {
		idCol, _ := result.Fields.GetColumn("id").(*milvusentity.ColumnVarChar)
		sourceCol, _ := result.Fields.GetColumn("source_id").(*milvusentity.ColumnVarChar)
		pageCol, _ := result.Fields.GetColumn("page").(*milvusentity.ColumnInt64)
		typeCol, _ := result.Fields.GetColumn("content_type").(*milvusentity.ColumnVarChar)
		textCol, _ := result.Fields.GetColumn("text_content").(*milvusentity.ColumnVarChar)

		for i := 0; i < result.ResultCount; i++ {
			c := &entity.ScoredChunk{
				Score: result.Scores[i],
			}
			if idCol != nil {
				c.ID = idCol.Data()[i]
			}
			if sourceCol != nil {
				c.SourceID = sourceCol.Data()[i]
			}
			if pageCol != nil {
				c.Page = pageCol.Data()[i]
			}
			if typeCol != nil {
				c.ContentType = entity.ContentType(typeCol.Data()[i])
			}
			if textCol != nil {
				meta, text := decodeChunkText(textCol.Data()[i])
				c.Section = meta.Section
				c.Content = text
			}
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// InsertChunks 批量写入分块，vectors 与 chunks 一一对应
func (r *Repository) InsertChunks(ctx context.Context, chunks []*entity.DocumentChunk, vectors [][]float32) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertChunks",
		trace.WithAttributes(attribute.Int("count", len(chunks))))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocumentChunks)

	ids := make([]string, len(chunks))
	sourceIDs := make([]string, len(chunks))
	pages := make([]int64, len(chunks))
	contentTypes := make([]string, len(chunks))
	textContents := make([]string, len(chunks))

	for i, c := range chunks {
		ids[i] = c.ID
		sourceIDs[i] = c.SourceID
		pages[i] = c.Page
		contentTypes[i] = string(c.ContentType)
		textContents[i] = encodeChunkText(ChunkMeta{Section: c.Section}, c.Content)
	}

	idCol := milvusentity.NewColumnVarChar("id", ids)
	vectorCol := milvusentity.NewColumnFloatVector("vector", VectorDimension, vectors)
	sourceCol := milvusentity.NewColumnVarChar("source_id", sourceIDs)
	pageCol := milvusentity.NewColumnInt64("page", pages)
	typeCol := milvusentity.NewColumnVarChar("content_type", contentTypes)
	textCol := milvusentity.NewColumnVarChar("text_content", textContents)

	if _, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, sourceCol, pageCol, typeCol, textCol); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// DeleteChunksBySource 按来源文档过滤删除分块
func (r *Repository) DeleteChunksBySource(ctx context.Context, sourceID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteChunksBySource",
		trace.WithAttributes(attribute.String("source_id", sourceID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocumentChunks)
	filter := fmt.Sprintf(`source_id == "%s"`, escapeFilterValue(sourceID))

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// ListSourceIDs 返回去重后的来源文档名
func (r *Repository) ListSourceIDs(ctx context.Context) ([]string, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.ListSourceIDs")
	defer span.End()

	collName := r.client.CollectionName(CollectionDocumentChunks)

	rs, err := r.client.milvus.Query(ctx,
		collName,
		nil,
		`source_id != ""`,
		[]string{"source_id"},
		client.WithLimit(listSourcesQueryLimit),
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}

	seen := make(map[string]struct{})
	var sources []string
	for _, col := range rs {
		varcharCol, ok := col.(*milvusentity.ColumnVarChar)
		if !ok || varcharCol.Name() != "source_id" {
			continue
		}
		for _, v := range varcharCol.Data() {
			if _, dup := seen[v]; dup || v == "" {
				continue
			}
			seen[v] = struct{}{}
			sources = append(sources, v)
		}
	}

	span.SetAttributes(attribute.Int("source_count", len(sources)))
	return sources, nil
}

// escapeFilterValue 防止文件名中的引号破坏过滤表达式
func escapeFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
