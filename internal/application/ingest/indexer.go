package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
	"knowledge-navigator-api/pkg/metrics"
)

const (
	defaultChunkSizeRunes    = 800
	defaultChunkOverlapRunes = 80
	defaultEmbeddingBatch    = 32
)

// ErrVectorDisabled 表示向量索引能力未配置（Milvus 或 Embedder 不可用）
var ErrVectorDisabled = errors.New("vector indexing is disabled")

// Indexer 把抽取好的文档页写入向量索引
// 同一 source_id 重复入库采用先删后写，避免旧分片残留。
type Indexer struct {
	embedder embedding.Embedder
	vector   repository.VectorRepository

	embeddingBatchSize int
	chunkSizeRunes     int
	chunkOverlapRunes  int
}

func NewIndexer(embedder embedding.Embedder, vector repository.VectorRepository, chunkSizeRunes, chunkOverlapRunes, embeddingBatchSize int) *Indexer {
	if chunkSizeRunes <= 0 {
		chunkSizeRunes = defaultChunkSizeRunes
	}
	if chunkOverlapRunes < 0 {
		chunkOverlapRunes = defaultChunkOverlapRunes
	}
	if embeddingBatchSize <= 0 {
		embeddingBatchSize = defaultEmbeddingBatch
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vector,
		embeddingBatchSize: embeddingBatchSize,
		chunkSizeRunes:     chunkSizeRunes,
		chunkOverlapRunes:  chunkOverlapRunes,
	}
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil
}

// IndexDocument 入库一份文档，返回写入的分块数
// 空文档也会先执行删除，保证重复上传不留旧分片。
func (i *Indexer) IndexDocument(ctx context.Context, doc *DocumentInput) (int, error) {
	if doc == nil || strings.TrimSpace(doc.SourceID) == "" {
		return 0, fmt.Errorf("source_id is required")
	}
	if !i.Enabled() {
		return 0, ErrVectorDisabled
	}
	if err := i.vector.EnsureDocumentChunksCollection(ctx); err != nil {
		return 0, err
	}

	sourceID := strings.TrimSpace(doc.SourceID)
	if err := i.vector.DeleteChunksBySource(ctx, sourceID); err != nil {
		return 0, err
	}

	chunks := i.buildChunks(sourceID, doc.Pages)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := i.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}
	if err := i.vector.InsertChunks(ctx, chunks, vectors); err != nil {
		return 0, err
	}
	metrics.IndexedChunksTotal.WithLabelValues(sourceID).Add(float64(len(chunks)))
	return len(chunks), nil
}

// DeleteDocument 按来源删除全部分块
func (i *Indexer) DeleteDocument(ctx context.Context, sourceID string) error {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return fmt.Errorf("source_id is required")
	}
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	if err := i.vector.EnsureDocumentChunksCollection(ctx); err != nil {
		return err
	}
	return i.vector.DeleteChunksBySource(ctx, sourceID)
}

// ListDocuments 返回索引中全部来源文档名
func (i *Indexer) ListDocuments(ctx context.Context) ([]string, error) {
	if !i.Enabled() {
		return nil, ErrVectorDisabled
	}
	if err := i.vector.EnsureDocumentChunksCollection(ctx); err != nil {
		return nil, err
	}
	return i.vector.ListSourceIDs(ctx)
}

func (i *Indexer) buildChunks(sourceID string, pages []PageInput) []*entity.DocumentChunk {
	out := make([]*entity.DocumentChunk, 0, len(pages)*2)
	for _, page := range pages {
		section := strings.Join(page.Sections, " > ")

		if len(page.Sections) > 0 {
			out = append(out, &entity.DocumentChunk{
				ID:          uuid.NewString(),
				SourceID:    sourceID,
				Page:        page.Page,
				Section:     section,
				ContentType: entity.ContentTypeHeading,
				Content:     section,
			})
		}

		if usablePageText(page.Text) {
			for _, chunk := range splitByRunes(page.Text, i.chunkSizeRunes, i.chunkOverlapRunes) {
				out = append(out, &entity.DocumentChunk{
					ID:          uuid.NewString(),
					SourceID:    sourceID,
					Page:        page.Page,
					Section:     section,
					ContentType: entity.ContentTypeText,
					Content:     chunk,
				})
			}
		}

		for _, table := range page.Tables {
			table = strings.TrimSpace(table)
			if table == "" {
				continue
			}
			out = append(out, &entity.DocumentChunk{
				ID:          uuid.NewString(),
				SourceID:    sourceID,
				Page:        page.Page,
				Section:     section,
				ContentType: entity.ContentTypeTable,
				Content:     table,
			})
		}
	}
	return out
}

func (i *Indexer) embedChunks(ctx context.Context, chunks []*entity.DocumentChunk) ([][]float32, error) {
	inputs := make([]string, 0, len(chunks))
	for _, c := range chunks {
		text := c.Content
		if c.Section != "" && c.ContentType != entity.ContentTypeHeading {
			text = "Sección: " + c.Section + "\n" + text
		}
		inputs = append(inputs, text)
	}

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		vectors, err := i.embedder.EmbedStrings(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(vectors), end-start)
		}
		for _, v64 := range vectors {
			v := make([]float32, 0, len(v64))
			for _, x := range v64 {
				v = append(v, float32(x))
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// usablePageText 过滤无检索价值的页面文本：空白、纯数字（页码）、索引页、版权页
func usablePageText(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	if strings.HasPrefix(t, "índice") || strings.HasPrefix(t, "indice") {
		return false
	}
	if strings.Contains(t, "copyright") {
		return false
	}
	for _, r := range t {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
