package milvus

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-navigator-api/internal/domain/entity"
)

func TestScoredChunksFromResults(t *testing.T) {
	fields := client.ResultSet{
		milvusentity.NewColumnVarChar("id", []string{"c1", "c2"}),
		milvusentity.NewColumnVarChar("source_id", []string{"policy.pdf", "policy.pdf"}),
		milvusentity.NewColumnInt64("page", []int64{3, 9}),
		milvusentity.NewColumnVarChar("content_type", []string{"text", "table"}),
		milvusentity.NewColumnVarChar("text_content", []string{
			encodeChunkText(ChunkMeta{Section: "Capítulo 1 > Vacaciones"}, "Los empleados disponen de 22 días."),
			encodeChunkText(ChunkMeta{}, "Tabla de permisos retribuidos."),
		}),
	}
	results := []client.SearchResult{{
		ResultCount: 2,
		Fields:      fields,
		Scores:      []float32{0.97, 0.41},
	}}

	chunks := scoredChunksFromResults(results)
	require.Len(t, chunks, 2)

	// COSINE 相似度原样透传，高分在前
	assert.InDelta(t, 0.97, chunks[0].Score, 1e-6)
	assert.InDelta(t, 0.41, chunks[1].Score, 1e-6)
	assert.Greater(t, chunks[0].Score, chunks[1].Score)

	assert.Equal(t, "c1", chunks[0].ID)
	assert.Equal(t, "policy.pdf", chunks[0].SourceID)
	assert.Equal(t, int64(3), chunks[0].Page)
	assert.Equal(t, entity.ContentTypeText, chunks[0].ContentType)
	assert.Equal(t, "Capítulo 1 > Vacaciones", chunks[0].Section)
	assert.Equal(t, "Los empleados disponen de 22 días.", chunks[0].Content)

	assert.Equal(t, entity.ContentTypeTable, chunks[1].ContentType)
	assert.Empty(t, chunks[1].Section)
}

func TestScoredChunksFromResultsEmpty(t *testing.T) {
	assert.Empty(t, scoredChunksFromResults(nil))
	assert.Empty(t, scoredChunksFromResults([]client.SearchResult{{ResultCount: 0}}))
}
