package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-navigator-api/internal/domain/entity"
)

func TestCollectSourceRefsDeduplicates(t *testing.T) {
	chunks := []*entity.ScoredChunk{
		{DocumentChunk: entity.DocumentChunk{SourceID: "policy.pdf", Page: 3, Content: "a"}},
		{DocumentChunk: entity.DocumentChunk{SourceID: "policy.pdf", Page: 3, Content: "b"}},
		{DocumentChunk: entity.DocumentChunk{SourceID: "policy.pdf", Page: 4, Content: "c"}},
		nil,
		{DocumentChunk: entity.DocumentChunk{SourceID: "", Page: 1, Content: "d"}},
		{DocumentChunk: entity.DocumentChunk{SourceID: "manual.pdf", Page: 3, Content: "e"}},
	}

	refs := collectSourceRefs(chunks)
	require.Len(t, refs, 3)
	assert.Equal(t, entity.SourceRef{Document: "policy.pdf", Page: 3}, refs[0])
	assert.Equal(t, entity.SourceRef{Document: "policy.pdf", Page: 4}, refs[1])
	assert.Equal(t, entity.SourceRef{Document: "manual.pdf", Page: 3}, refs[2])
}

func TestCollectWebRefsSkipsEmpty(t *testing.T) {
	refs := collectWebRefs([]WebResult{
		{Title: "Uno", URL: "https://example.com/1", Snippet: "x"},
		{Title: "", URL: "", Snippet: "y"},
		{Title: "Sin URL", URL: "", Snippet: "z"},
	})
	require.Len(t, refs, 2)
	assert.Equal(t, "https://example.com/1", refs[0].URL)
	assert.Equal(t, "Sin URL", refs[1].Title)
}

func TestBuildContextBlock(t *testing.T) {
	chunks := []*entity.ScoredChunk{
		{DocumentChunk: entity.DocumentChunk{SourceID: "policy.pdf", Page: 3, Content: "Línea uno.\nLínea dos."}, Score: 0.9},
		{DocumentChunk: entity.DocumentChunk{SourceID: "policy.pdf", Page: 0, Section: "Anexo", Content: "Texto del anexo."}},
		{DocumentChunk: entity.DocumentChunk{SourceID: "policy.pdf", Page: 5, Content: "   "}},
	}

	block := buildContextBlock(chunks)
	assert.Contains(t, block, "[1] (policy.pdf p.3) Línea uno. Línea dos.")
	assert.Contains(t, block, "[2] (policy.pdf · Anexo) Texto del anexo.")
	// score 不进入提示词，空白分块被跳过
	assert.NotContains(t, block, "0.9")
	assert.NotContains(t, block, "[3]")

	assert.Empty(t, buildContextBlock(nil))
}

func TestAnswerSourceLabels(t *testing.T) {
	local := &entity.Answer{
		Provenance: entity.ProvenanceLocalDocuments,
		Sources: []entity.SourceRef{
			{Document: "policy.pdf", Page: 3},
			{Document: "notas.txt"},
		},
	}
	assert.Equal(t, []string{"policy.pdf (page 3)", "notas.txt"}, local.SourceLabels())

	web := &entity.Answer{
		Provenance: entity.ProvenanceWebSearch,
		WebSources: []entity.WebSourceRef{{Title: "Fuente", URL: "https://example.com"}},
	}
	assert.Equal(t, []string{"Fuente (https://example.com)"}, web.SourceLabels())

	direct := &entity.Answer{Provenance: entity.ProvenanceModelOnly}
	assert.Nil(t, direct.SourceLabels())
}
