// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"encoding/json"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionDocumentChunks 文档分块集合
	CollectionDocumentChunks = "document_chunks"

	// VectorDimension 向量维度（mxbai-embed-large）
	VectorDimension = 1024
)

// DocumentChunksSchema 文档分块 Collection Schema
func DocumentChunksSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionDocumentChunks,
		Description:    "Document chunks for retrieval-augmented answering",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1024",
				},
			},
			{
				Name:     "source_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "page",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "content_type",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "16",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

const chunkMetaPrefix = "@@meta:"

// ChunkMeta 编码进 text_content 的结构化元信息
// 约定：仅用于读写自家写入的分块；不存在时安全降级。
type ChunkMeta struct {
	// Section 标题层级路径，如 "Capítulo 2 > Transparencia"
	Section string `json:"section,omitempty"`
}

func encodeChunkText(meta ChunkMeta, text string) string {
	b, _ := json.Marshal(meta)
	var sb strings.Builder
	sb.Grow(len(chunkMetaPrefix) + len(b) + 1 + len(text))
	sb.WriteString(chunkMetaPrefix)
	sb.Write(b)
	sb.WriteByte('\n')
	sb.WriteString(text)
	return sb.String()
}

func decodeChunkText(textContent string) (ChunkMeta, string) {
	raw := strings.TrimSpace(textContent)
	if !strings.HasPrefix(raw, chunkMetaPrefix) {
		return ChunkMeta{}, raw
	}
	rest := strings.TrimPrefix(raw, chunkMetaPrefix)
	line, body, ok := strings.Cut(rest, "\n")
	if !ok {
		return ChunkMeta{}, raw
	}
	var meta ChunkMeta
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &meta); err != nil {
		return ChunkMeta{}, strings.TrimSpace(body)
	}
	return meta, strings.TrimSpace(body)
}
